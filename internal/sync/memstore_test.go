package sync

import (
	"context"
	"strings"
	"time"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// memStore is an in-memory RecordStore for the engine tests.
type memStore struct {
	params     map[string]string
	partners   []*models.Partner
	users      []*models.User
	countries  []*models.Country
	states     []*models.CountryState
	currencies []*models.Currency
	leads      []*models.Lead
	stages     []*models.CrmStage
	categories []*models.ProductCategory
	products   []*models.Product
	orders     []*models.SaleOrder
	lines      []*models.SaleOrderLine
	warehouses []*models.Warehouse
	pickings   []*models.StockPicking
	moves      []*models.StockMove
	invoices   []*models.Invoice
	nextID     uint
}

func newMemStore() *memStore {
	return &memStore{params: make(map[string]string), nextID: 1}
}

func (s *memStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) GetParam(key string) (string, bool) {
	v, ok := s.params[key]
	return v, ok
}

func (s *memStore) SetParam(key, value string) error {
	s.params[key] = value
	return nil
}

func (s *memStore) PartnerByRemoteID(ctx context.Context, fmID int64, isCompany bool) (*models.Partner, error) {
	for _, p := range s.partners {
		if p.ForceManagerID == fmID && p.IsCompany == isCompany {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) CompanyByVat(ctx context.Context, vat string) (*models.Partner, error) {
	for _, p := range s.partners {
		if p.IsCompany && p.Vat == vat {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) ContactByEmail(ctx context.Context, email string) (*models.Partner, error) {
	for _, p := range s.partners {
		if !p.IsCompany && p.Email == email {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) ContactByParentAndName(ctx context.Context, parentID uint, name string) (*models.Partner, error) {
	for _, p := range s.partners {
		if !p.IsCompany && p.ParentID != nil && *p.ParentID == parentID && strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) PartnerByID(ctx context.Context, id uint) (*models.Partner, error) {
	for _, p := range s.partners {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreatePartner(ctx context.Context, p *models.Partner) error {
	p.ID = s.id()
	p.UpdatedAt = time.Now()
	s.partners = append(s.partners, p)
	return nil
}

func (s *memStore) UpdatePartner(ctx context.Context, p *models.Partner) error {
	p.UpdatedAt = time.Now()
	for _, existing := range s.partners {
		if existing.ID == p.ID && existing != p {
			*existing = *p
		}
	}
	return nil
}

func (s *memStore) DirtyPartners(ctx context.Context, isCompany bool, since *time.Time) ([]models.Partner, error) {
	var out []models.Partner
	for _, p := range s.partners {
		if p.IsCompany != isCompany {
			continue
		}
		if !p.Synced || p.ForceManagerID == 0 || (since != nil && p.UpdatedAt.After(*since)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) UserByRemoteID(ctx context.Context, fmID int64) (*models.User, error) {
	for _, u := range s.users {
		if u.ForceManagerID == fmID {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) UserByName(ctx context.Context, name string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = s.id()
	s.users = append(s.users, u)
	return nil
}

func (s *memStore) UpdateUser(ctx context.Context, u *models.User) error {
	for _, existing := range s.users {
		if existing.ID == u.ID && existing != u {
			*existing = *u
		}
	}
	return nil
}

func (s *memStore) CountryByRemoteID(ctx context.Context, fmID int64) (*models.Country, error) {
	for _, c := range s.countries {
		if c.ForceManagerID == fmID {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) CountryByName(ctx context.Context, name string) (*models.Country, error) {
	for _, c := range s.countries {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) CountryByCode(ctx context.Context, code string) (*models.Country, error) {
	for _, c := range s.countries {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) CountryByID(ctx context.Context, id uint) (*models.Country, error) {
	for _, c := range s.countries {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateCountry(ctx context.Context, c *models.Country) error {
	c.ID = s.id()
	s.countries = append(s.countries, c)
	return nil
}

func (s *memStore) UpdateCountry(ctx context.Context, c *models.Country) error {
	for _, existing := range s.countries {
		if existing.ID == c.ID && existing != c {
			*existing = *c
		}
	}
	return nil
}

func (s *memStore) StateByNameAndCountry(ctx context.Context, name string, countryID uint) (*models.CountryState, error) {
	for _, st := range s.states {
		if strings.EqualFold(st.Name, name) && st.CountryID == countryID {
			return st, nil
		}
	}
	return nil, nil
}

func (s *memStore) CurrencyByName(ctx context.Context, name string) (*models.Currency, error) {
	for _, c := range s.currencies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) LeadByRemoteID(ctx context.Context, fmID int64) (*models.Lead, error) {
	for _, l := range s.leads {
		if l.ForceManagerID == fmID {
			return l, nil
		}
	}
	return nil, nil
}

func (s *memStore) LeadByName(ctx context.Context, name string) (*models.Lead, error) {
	for _, l := range s.leads {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateLead(ctx context.Context, l *models.Lead) error {
	l.ID = s.id()
	l.UpdatedAt = time.Now()
	s.leads = append(s.leads, l)
	return nil
}

func (s *memStore) UpdateLead(ctx context.Context, l *models.Lead) error {
	l.UpdatedAt = time.Now()
	for _, existing := range s.leads {
		if existing.ID == l.ID && existing != l {
			*existing = *l
		}
	}
	return nil
}

func (s *memStore) DirtyLeads(ctx context.Context, since *time.Time) ([]models.Lead, error) {
	var out []models.Lead
	for _, l := range s.leads {
		if !l.Synced || l.ForceManagerID == 0 || (since != nil && l.UpdatedAt.After(*since)) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *memStore) StageByName(ctx context.Context, name string) (*models.CrmStage, error) {
	for _, st := range s.stages {
		if strings.EqualFold(st.Name, name) {
			return st, nil
		}
	}
	return nil, nil
}

func (s *memStore) StageByID(ctx context.Context, id uint) (*models.CrmStage, error) {
	for _, st := range s.stages {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, nil
}

func (s *memStore) categoryOf(p *models.Product) *models.ProductCategory {
	for _, c := range s.categories {
		if c.ID == p.CategoryID {
			return c
		}
	}
	return nil
}

func (s *memStore) ProductByRemoteID(ctx context.Context, fmID string) (*models.Product, error) {
	if fmID == "" {
		return nil, nil
	}
	for _, p := range s.products {
		if p.ForceManagerID == fmID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) ProductByID(ctx context.Context, id uint) (*models.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	for _, existing := range s.products {
		if existing.ID == p.ID && existing != p {
			cat := existing.Category
			*existing = *p
			existing.Category = cat
		}
	}
	return nil
}

func (s *memStore) DirtyProducts(ctx context.Context, since *time.Time) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		cat := s.categoryOf(p)
		if cat == nil || !cat.B2BAvailable {
			continue
		}
		if !p.Synced || p.ForceManagerID == "" || (since != nil && p.UpdatedAt.After(*since)) {
			cp := *p
			cp.Category = cat
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *memStore) LinkedProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		if p.ForceManagerID != "" {
			cp := *p
			cp.Category = s.categoryOf(p)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *memStore) CategoryByRemoteID(ctx context.Context, fmID string) (*models.ProductCategory, error) {
	for _, c := range s.categories {
		if c.ForceManagerID == fmID {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) CategoryByID(ctx context.Context, id uint) (*models.ProductCategory, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *memStore) AllCategories(ctx context.Context) ([]models.ProductCategory, error) {
	out := make([]models.ProductCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memStore) UpdateCategory(ctx context.Context, c *models.ProductCategory) error {
	for _, existing := range s.categories {
		if existing.ID == c.ID {
			*existing = *c
		}
	}
	return nil
}

func (s *memStore) OrderByRemoteID(ctx context.Context, fmID int64) (*models.SaleOrder, error) {
	for _, o := range s.orders {
		if o.ForceManagerID == fmID {
			return o, nil
		}
	}
	return nil, nil
}

func (s *memStore) OrderByID(ctx context.Context, id uint) (*models.SaleOrder, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateOrder(ctx context.Context, o *models.SaleOrder) error {
	o.ID = s.id()
	o.UpdatedAt = time.Now()
	s.orders = append(s.orders, o)
	return nil
}

func (s *memStore) UpdateOrder(ctx context.Context, o *models.SaleOrder) error {
	o.UpdatedAt = time.Now()
	for _, existing := range s.orders {
		if existing.ID == o.ID && existing != o {
			*existing = *o
		}
	}
	return nil
}

func (s *memStore) OrderLines(ctx context.Context, orderID uint) ([]models.SaleOrderLine, error) {
	var out []models.SaleOrderLine
	for _, l := range s.lines {
		if l.OrderID == orderID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *memStore) CreateOrderLine(ctx context.Context, l *models.SaleOrderLine) error {
	l.ID = s.id()
	s.lines = append(s.lines, l)
	return nil
}

func (s *memStore) UpdateOrderLine(ctx context.Context, l *models.SaleOrderLine) error {
	for _, existing := range s.lines {
		if existing.ID == l.ID && existing != l {
			*existing = *l
		}
	}
	return nil
}

func (s *memStore) DeleteOrderLines(ctx context.Context, orderID uint) error {
	var kept []*models.SaleOrderLine
	for _, l := range s.lines {
		if l.OrderID != orderID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	return nil
}

func (s *memStore) DirtyOrders(ctx context.Context, since *time.Time) ([]models.SaleOrder, error) {
	var out []models.SaleOrder
	for _, o := range s.orders {
		hasB2B := false
		for _, l := range s.lines {
			if l.OrderID != o.ID {
				continue
			}
			if p, _ := s.ProductByID(ctx, l.ProductID); p != nil {
				if cat := s.categoryOf(p); cat != nil && cat.B2BAvailable {
					hasB2B = true
					break
				}
			}
		}
		if !hasB2B {
			continue
		}
		if !o.Synced || o.ForceManagerID == 0 || (since != nil && o.UpdatedAt.After(*since)) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *memStore) WarehouseByName(ctx context.Context, name string) (*models.Warehouse, error) {
	for _, w := range s.warehouses {
		if strings.EqualFold(w.Name, name) {
			return w, nil
		}
	}
	return nil, nil
}

func (s *memStore) PickingsForOrder(ctx context.Context, orderID uint) ([]models.StockPicking, error) {
	var out []models.StockPicking
	for _, p := range s.pickings {
		if p.OrderID != orderID {
			continue
		}
		cp := *p
		cp.Moves = nil
		for _, m := range s.moves {
			if m.PickingID == p.ID {
				cp.Moves = append(cp.Moves, *m)
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *memStore) CreatePicking(ctx context.Context, p *models.StockPicking) error {
	p.ID = s.id()
	s.pickings = append(s.pickings, p)
	return nil
}

func (s *memStore) UpdatePicking(ctx context.Context, p *models.StockPicking) error {
	for _, existing := range s.pickings {
		if existing.ID == p.ID && existing != p {
			existing.State = p.State
		}
	}
	return nil
}

func (s *memStore) CreateMove(ctx context.Context, m *models.StockMove) error {
	m.ID = s.id()
	s.moves = append(s.moves, m)
	return nil
}

func (s *memStore) UpdateMove(ctx context.Context, m *models.StockMove) error {
	for _, existing := range s.moves {
		if existing.ID == m.ID && existing != m {
			*existing = *m
		}
	}
	return nil
}

func (s *memStore) InvoicesForOrder(ctx context.Context, orderID uint) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range s.invoices {
		if inv.OrderID == orderID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *memStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	inv.ID = s.id()
	s.invoices = append(s.invoices, inv)
	return nil
}

func (s *memStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	for _, existing := range s.invoices {
		if existing.ID == inv.ID && existing != inv {
			*existing = *inv
		}
	}
	return nil
}

// apiCall records one request the engine made against the fake API.
type apiCall struct {
	Endpoint string
	Method   string
	Payload  interface{}
	Headers  map[string]string
}

// fakeAPI is an in-memory RemoteAPI. Responses are keyed by
// "METHOD path" with the query string stripped.
type fakeAPI struct {
	responses map[string]*forcemanager.Response
	bulk      map[string]bool
	calls     []apiCall
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: make(map[string]*forcemanager.Response),
		bulk:      make(map[string]bool),
	}
}

func (f *fakeAPI) respond(method, path string, data interface{}) {
	f.responses[method+" "+path] = forcemanager.NewResponse(data)
}

func (f *fakeAPI) respondList(method, path string, records ...map[string]interface{}) {
	items := make([]interface{}, 0, len(records))
	for _, r := range records {
		items = append(items, r)
	}
	f.respond(method, path, items)
}

func (f *fakeAPI) Authenticate(ctx context.Context) {}

func (f *fakeAPI) Request(ctx context.Context, endpoint, method string, payload interface{}, extraHeaders map[string]string) (*forcemanager.Response, error) {
	path := endpoint
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	f.calls = append(f.calls, apiCall{Endpoint: endpoint, Method: method, Payload: payload, Headers: extraHeaders})
	if resp, ok := f.responses[method+" "+path]; ok {
		return resp, nil
	}
	return forcemanager.NewResponse(nil), nil
}

func (f *fakeAPI) HasBulkEndpoint(ctx context.Context, endpoint string) bool {
	return f.bulk[endpoint]
}

// callsTo filters the recorded calls by method and path prefix.
func (f *fakeAPI) callsTo(method, pathPrefix string) []apiCall {
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && strings.HasPrefix(c.Endpoint, pathPrefix) {
			out = append(out, c)
		}
	}
	return out
}
