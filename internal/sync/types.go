package sync

import (
	"context"
	"time"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// Entity names, also used as watermark keys (<entity>_last_sync).
const (
	EntityAccounts      = "accounts"
	EntityContacts      = "contacts"
	EntityOpportunities = "opportunities"
	EntityProducts      = "products"
	EntityOrders        = "orders"
)

// RemoteAPI is the slice of the ForceManager client the sync engine
// consumes; *forcemanager.Client satisfies it.
type RemoteAPI interface {
	Authenticate(ctx context.Context)
	Request(ctx context.Context, endpoint, method string, payload interface{}, extraHeaders map[string]string) (*forcemanager.Response, error)
	HasBulkEndpoint(ctx context.Context, endpoint string) bool
}

// RecordStore is the host record store contract the engine works
// against. The engine never owns record lifecycles beyond create; it
// locates records by identity and reads or writes their fields.
// Lookups return (nil, nil) when nothing matches.
type RecordStore interface {
	// Shared key/value configuration (token, watermarks)
	GetParam(key string) (string, bool)
	SetParam(key, value string) error

	// Partners
	PartnerByRemoteID(ctx context.Context, fmID int64, isCompany bool) (*models.Partner, error)
	CompanyByVat(ctx context.Context, vat string) (*models.Partner, error)
	ContactByEmail(ctx context.Context, email string) (*models.Partner, error)
	ContactByParentAndName(ctx context.Context, parentID uint, name string) (*models.Partner, error)
	PartnerByID(ctx context.Context, id uint) (*models.Partner, error)
	CreatePartner(ctx context.Context, p *models.Partner) error
	UpdatePartner(ctx context.Context, p *models.Partner) error
	DirtyPartners(ctx context.Context, isCompany bool, since *time.Time) ([]models.Partner, error)

	// Users (sales reps)
	UserByRemoteID(ctx context.Context, fmID int64) (*models.User, error)
	UserByName(ctx context.Context, name string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error

	// Countries, states, currencies
	CountryByRemoteID(ctx context.Context, fmID int64) (*models.Country, error)
	CountryByName(ctx context.Context, name string) (*models.Country, error)
	CountryByCode(ctx context.Context, code string) (*models.Country, error)
	CountryByID(ctx context.Context, id uint) (*models.Country, error)
	CreateCountry(ctx context.Context, c *models.Country) error
	UpdateCountry(ctx context.Context, c *models.Country) error
	StateByNameAndCountry(ctx context.Context, name string, countryID uint) (*models.CountryState, error)
	CurrencyByName(ctx context.Context, name string) (*models.Currency, error)

	// Leads
	LeadByRemoteID(ctx context.Context, fmID int64) (*models.Lead, error)
	LeadByName(ctx context.Context, name string) (*models.Lead, error)
	CreateLead(ctx context.Context, l *models.Lead) error
	UpdateLead(ctx context.Context, l *models.Lead) error
	DirtyLeads(ctx context.Context, since *time.Time) ([]models.Lead, error)
	StageByName(ctx context.Context, name string) (*models.CrmStage, error)
	StageByID(ctx context.Context, id uint) (*models.CrmStage, error)

	// Products and categories
	ProductByRemoteID(ctx context.Context, fmID string) (*models.Product, error)
	ProductByID(ctx context.Context, id uint) (*models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DirtyProducts(ctx context.Context, since *time.Time) ([]models.Product, error)
	LinkedProducts(ctx context.Context) ([]models.Product, error)
	CategoryByRemoteID(ctx context.Context, fmID string) (*models.ProductCategory, error)
	CategoryByID(ctx context.Context, id uint) (*models.ProductCategory, error)
	AllCategories(ctx context.Context) ([]models.ProductCategory, error)
	UpdateCategory(ctx context.Context, c *models.ProductCategory) error

	// Orders and lines
	OrderByRemoteID(ctx context.Context, fmID int64) (*models.SaleOrder, error)
	OrderByID(ctx context.Context, id uint) (*models.SaleOrder, error)
	CreateOrder(ctx context.Context, o *models.SaleOrder) error
	UpdateOrder(ctx context.Context, o *models.SaleOrder) error
	OrderLines(ctx context.Context, orderID uint) ([]models.SaleOrderLine, error)
	CreateOrderLine(ctx context.Context, l *models.SaleOrderLine) error
	UpdateOrderLine(ctx context.Context, l *models.SaleOrderLine) error
	DeleteOrderLines(ctx context.Context, orderID uint) error
	DirtyOrders(ctx context.Context, since *time.Time) ([]models.SaleOrder, error)

	// Fulfillment
	WarehouseByName(ctx context.Context, name string) (*models.Warehouse, error)
	PickingsForOrder(ctx context.Context, orderID uint) ([]models.StockPicking, error)
	CreatePicking(ctx context.Context, p *models.StockPicking) error
	UpdatePicking(ctx context.Context, p *models.StockPicking) error
	CreateMove(ctx context.Context, m *models.StockMove) error
	UpdateMove(ctx context.Context, m *models.StockMove) error
	InvoicesForOrder(ctx context.Context, orderID uint) ([]models.Invoice, error)
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
}
