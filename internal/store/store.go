package store

import (
	"context"
	"errors"
	"time"

	"github.com/ibertrade/fmbridge/internal/models"
	"gorm.io/gorm"
)

// Store is the GORM-backed implementation of the host record store the
// sync engine consumes. Lookups return (nil, nil) when no record
// matches; every mutating call carries the write origin in its
// context.
type Store struct {
	db *gorm.DB
}

// New creates a record store on top of an open GORM handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func first[T any](tx *gorm.DB) (*T, error) {
	var rec T
	if err := tx.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// -------------------------------------------------------------------------
// Config parameters (token, watermarks)
// -------------------------------------------------------------------------

// GetParam reads a configuration parameter; ok is false when unset.
func (s *Store) GetParam(key string) (string, bool) {
	var p models.ConfigParam
	if err := s.db.Where("key = ?", key).First(&p).Error; err != nil {
		return "", false
	}
	return p.Value, true
}

// SetParam upserts a configuration parameter.
func (s *Store) SetParam(key, value string) error {
	p := models.ConfigParam{Key: key, Value: value}
	return s.db.Save(&p).Error
}

// -------------------------------------------------------------------------
// Partners (companies and contacts)
// -------------------------------------------------------------------------

func (s *Store) PartnerByRemoteID(ctx context.Context, fmID int64, isCompany bool) (*models.Partner, error) {
	return first[models.Partner](s.conn(ctx).
		Where("forcemanager_id = ? AND is_company = ?", fmID, isCompany))
}

func (s *Store) CompanyByVat(ctx context.Context, vat string) (*models.Partner, error) {
	return first[models.Partner](s.conn(ctx).
		Where("vat = ? AND is_company = ?", vat, true))
}

func (s *Store) ContactByEmail(ctx context.Context, email string) (*models.Partner, error) {
	return first[models.Partner](s.conn(ctx).
		Where("email = ? AND is_company = ?", email, false))
}

func (s *Store) ContactByParentAndName(ctx context.Context, parentID uint, name string) (*models.Partner, error) {
	return first[models.Partner](s.conn(ctx).
		Where("parent_id = ? AND is_company = ? AND name = ?", parentID, false, name))
}

func (s *Store) PartnerByID(ctx context.Context, id uint) (*models.Partner, error) {
	return first[models.Partner](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) CreatePartner(ctx context.Context, p *models.Partner) error {
	return s.conn(ctx).Create(p).Error
}

func (s *Store) UpdatePartner(ctx context.Context, p *models.Partner) error {
	return s.conn(ctx).Save(p).Error
}

// DirtyPartners returns the push-eligible set: modified after the
// watermark, never linked, or explicitly marked out of sync.
func (s *Store) DirtyPartners(ctx context.Context, isCompany bool, since *time.Time) ([]models.Partner, error) {
	tx := s.conn(ctx).Where("is_company = ?", isCompany)
	tx = dirtyScope(tx, since, "forcemanager_id = 0")
	var out []models.Partner
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// dirtyScope builds the OR of the three staleness signals: modified
// after the watermark, unlinked, or flagged out of sync. unlinked is
// the column-typed "no remote link" predicate.
func dirtyScope(tx *gorm.DB, since *time.Time, unlinked string) *gorm.DB {
	if since != nil {
		return tx.Where(
			"updated_at > ? OR "+unlinked+" OR synced_with_forcemanager = ?",
			*since, false,
		)
	}
	return tx.Where(unlinked+" OR synced_with_forcemanager = ?", false)
}

// -------------------------------------------------------------------------
// Users (sales reps)
// -------------------------------------------------------------------------

func (s *Store) UserByRemoteID(ctx context.Context, fmID int64) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("forcemanager_id = ?", fmID))
}

func (s *Store) UserByName(ctx context.Context, name string) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("name = ?", name))
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Create(u).Error
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Save(u).Error
}

// -------------------------------------------------------------------------
// Countries, states, currencies
// -------------------------------------------------------------------------

func (s *Store) CountryByRemoteID(ctx context.Context, fmID int64) (*models.Country, error) {
	return first[models.Country](s.conn(ctx).Where("forcemanager_id = ?", fmID))
}

func (s *Store) CountryByName(ctx context.Context, name string) (*models.Country, error) {
	return first[models.Country](s.conn(ctx).Where("LOWER(name) = LOWER(?)", name))
}

func (s *Store) CountryByCode(ctx context.Context, code string) (*models.Country, error) {
	return first[models.Country](s.conn(ctx).Where("code = ?", code))
}

func (s *Store) CountryByID(ctx context.Context, id uint) (*models.Country, error) {
	return first[models.Country](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) CreateCountry(ctx context.Context, c *models.Country) error {
	return s.conn(ctx).Create(c).Error
}

func (s *Store) UpdateCountry(ctx context.Context, c *models.Country) error {
	return s.conn(ctx).Save(c).Error
}

func (s *Store) StateByNameAndCountry(ctx context.Context, name string, countryID uint) (*models.CountryState, error) {
	return first[models.CountryState](s.conn(ctx).
		Where("LOWER(name) = LOWER(?) AND country_id = ?", name, countryID))
}

func (s *Store) CurrencyByName(ctx context.Context, name string) (*models.Currency, error) {
	return first[models.Currency](s.conn(ctx).Where("name = ?", name))
}

// -------------------------------------------------------------------------
// Leads (opportunities)
// -------------------------------------------------------------------------

func (s *Store) LeadByRemoteID(ctx context.Context, fmID int64) (*models.Lead, error) {
	return first[models.Lead](s.conn(ctx).Where("forcemanager_id = ?", fmID))
}

func (s *Store) LeadByName(ctx context.Context, name string) (*models.Lead, error) {
	return first[models.Lead](s.conn(ctx).Where("name = ?", name))
}

func (s *Store) CreateLead(ctx context.Context, l *models.Lead) error {
	return s.conn(ctx).Create(l).Error
}

func (s *Store) UpdateLead(ctx context.Context, l *models.Lead) error {
	return s.conn(ctx).Save(l).Error
}

func (s *Store) DirtyLeads(ctx context.Context, since *time.Time) ([]models.Lead, error) {
	var out []models.Lead
	if err := dirtyScope(s.conn(ctx).Model(&models.Lead{}), since, "forcemanager_id = 0").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) StageByName(ctx context.Context, name string) (*models.CrmStage, error) {
	return first[models.CrmStage](s.conn(ctx).Where("name = ?", name))
}

func (s *Store) StageByID(ctx context.Context, id uint) (*models.CrmStage, error) {
	return first[models.CrmStage](s.conn(ctx).Where("id = ?", id))
}

// -------------------------------------------------------------------------
// Products and categories
// -------------------------------------------------------------------------

func (s *Store) ProductByRemoteID(ctx context.Context, fmID string) (*models.Product, error) {
	return first[models.Product](s.conn(ctx).Where("forcemanager_id = ?", fmID))
}

func (s *Store) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return first[models.Product](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	return s.conn(ctx).Save(p).Error
}

// LinkedProducts returns every product carrying a remote link, used by
// the push-side orphan reconciliation.
func (s *Store) LinkedProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := s.conn(ctx).Preload("Category").
		Where("forcemanager_id <> ''").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DirtyProducts returns push-eligible products restricted to
// externally visible categories.
func (s *Store) DirtyProducts(ctx context.Context, since *time.Time) ([]models.Product, error) {
	tx := s.conn(ctx).Model(&models.Product{}).
		Joins("JOIN product_category ON product_category.id = product_product.category_id").
		Where("product_category.b2b_available = ?", true).
		Preload("Category")
	var out []models.Product
	if err := dirtyScope(tx, since, "product_product.forcemanager_id = ''").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CategoryByRemoteID(ctx context.Context, fmID string) (*models.ProductCategory, error) {
	return first[models.ProductCategory](s.conn(ctx).Where("forcemanager_id = ?", fmID))
}

func (s *Store) CategoryByID(ctx context.Context, id uint) (*models.ProductCategory, error) {
	return first[models.ProductCategory](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) AllCategories(ctx context.Context) ([]models.ProductCategory, error) {
	var out []models.ProductCategory
	if err := s.conn(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.ProductCategory) error {
	return s.conn(ctx).Save(c).Error
}

// -------------------------------------------------------------------------
// Sale orders and lines
// -------------------------------------------------------------------------

func (s *Store) OrderByRemoteID(ctx context.Context, fmID int64) (*models.SaleOrder, error) {
	return first[models.SaleOrder](s.conn(ctx).Where("forcemanager_id = ?", fmID))
}

func (s *Store) OrderByID(ctx context.Context, id uint) (*models.SaleOrder, error) {
	return first[models.SaleOrder](s.conn(ctx).Preload("Lines").Where("id = ?", id))
}

func (s *Store) CreateOrder(ctx context.Context, o *models.SaleOrder) error {
	return s.conn(ctx).Create(o).Error
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.SaleOrder) error {
	return s.conn(ctx).Omit("Lines").Save(o).Error
}

func (s *Store) OrderLines(ctx context.Context, orderID uint) ([]models.SaleOrderLine, error) {
	var out []models.SaleOrderLine
	if err := s.conn(ctx).Where("order_id = ?", orderID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateOrderLine(ctx context.Context, l *models.SaleOrderLine) error {
	return s.conn(ctx).Create(l).Error
}

func (s *Store) UpdateOrderLine(ctx context.Context, l *models.SaleOrderLine) error {
	return s.conn(ctx).Save(l).Error
}

func (s *Store) DeleteOrderLines(ctx context.Context, orderID uint) error {
	return s.conn(ctx).Where("order_id = ?", orderID).Delete(&models.SaleOrderLine{}).Error
}

// DirtyOrders returns push-eligible orders that have at least one line
// whose product category is externally visible.
func (s *Store) DirtyOrders(ctx context.Context, since *time.Time) ([]models.SaleOrder, error) {
	tx := s.conn(ctx).Model(&models.SaleOrder{}).
		Where("EXISTS (SELECT 1 FROM sale_order_line"+
			" JOIN product_product ON product_product.id = sale_order_line.product_id"+
			" JOIN product_category ON product_category.id = product_product.category_id"+
			" WHERE sale_order_line.order_id = sale_order.id"+
			" AND product_category.b2b_available = ?)", true).
		Preload("Lines")
	var out []models.SaleOrder
	if err := dirtyScope(tx, since, "sale_order.forcemanager_id = 0").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// -------------------------------------------------------------------------
// Fulfillment (warehouses, pickings, moves, invoices)
// -------------------------------------------------------------------------

func (s *Store) WarehouseByName(ctx context.Context, name string) (*models.Warehouse, error) {
	return first[models.Warehouse](s.conn(ctx).Where("name = ?", name))
}

func (s *Store) PickingsForOrder(ctx context.Context, orderID uint) ([]models.StockPicking, error) {
	var out []models.StockPicking
	if err := s.conn(ctx).Preload("Moves").Where("order_id = ?", orderID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreatePicking(ctx context.Context, p *models.StockPicking) error {
	return s.conn(ctx).Omit("Moves").Create(p).Error
}

func (s *Store) UpdatePicking(ctx context.Context, p *models.StockPicking) error {
	return s.conn(ctx).Omit("Moves").Save(p).Error
}

func (s *Store) CreateMove(ctx context.Context, m *models.StockMove) error {
	return s.conn(ctx).Create(m).Error
}

// UpdateMove persists a stock move. Completing a move outside the sync
// engine marks its product dirty, since available stock is pushed to
// the remote side.
func (s *Store) UpdateMove(ctx context.Context, m *models.StockMove) error {
	if err := s.conn(ctx).Save(m).Error; err != nil {
		return err
	}
	if m.State == models.MoveStateDone && OriginFrom(ctx) != OriginSync {
		return s.conn(ctx).Model(&models.Product{}).
			Where("id = ? AND synced_with_forcemanager = ?", m.ProductID, true).
			Update("synced_with_forcemanager", false).Error
	}
	return nil
}

func (s *Store) InvoicesForOrder(ctx context.Context, orderID uint) ([]models.Invoice, error) {
	var out []models.Invoice
	if err := s.conn(ctx).Where("order_id = ?", orderID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.conn(ctx).Create(inv).Error
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	return s.conn(ctx).Save(inv).Error
}
