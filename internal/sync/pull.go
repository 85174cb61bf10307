package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
	"github.com/ibertrade/fmbridge/internal/store"
)

// Remote endpoints per entity.
const (
	endpointAccounts      = "accounts"
	endpointContacts      = "contacts"
	endpointOpportunities = "opportunities"
	endpointProducts      = "products"
	endpointOrders        = "salesorders"
	endpointOrderLines    = "salesordersLines"
	endpointCountries     = "countries"
	endpointCategories    = "productCategories"
)

// Puller drives the remote-to-local direction. One pass per entity:
// fetch the incremental window, resolve identities, map and write.
// Failed fetches degrade to an empty pass; the watermark advances at
// pass end regardless, matching the at-least-once contract of the
// remote's dateUpdated stamps.
type Puller struct {
	api       RemoteAPI
	store     RecordStore
	mapper    *Mapper
	resolver  *Resolver
	marks     *Watermarks
	fulfiller *Fulfiller
}

func NewPuller(api RemoteAPI, rs RecordStore, mapper *Mapper, fulfiller *Fulfiller) *Puller {
	return &Puller{
		api:       api,
		store:     rs,
		mapper:    mapper,
		resolver:  NewResolver(rs),
		marks:     NewWatermarks(rs),
		fulfiller: fulfiller,
	}
}

// windowQuery builds the incremental filter for one entity window.
func windowQuery(field, since string) string {
	return "where=" + url.QueryEscape(fmt.Sprintf("(%s > '%s')", field, since))
}

func combinedWindowQuery(since string) string {
	return "where=" + url.QueryEscape(fmt.Sprintf("(dateUpdated > '%s' OR dateCreated > '%s')", since, since))
}

// fetchWindow pulls one entity window; transport failures come back as
// an empty list.
func (p *Puller) fetchWindow(ctx context.Context, endpoint, query string) []forcemanager.Record {
	resp, err := p.api.Request(ctx, endpoint+"?"+query, http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("❌ FM Sync Error (%s): %v", endpoint, err)
		return nil
	}
	return resp.List()
}

// Run executes every pull pass in the fixed entity order.
func (p *Puller) Run(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	p.PullAccounts(ctx)
	p.PullContacts(ctx)
	p.PullOpportunities(ctx)
	p.PullProducts(ctx)
	p.PullOrders(ctx)
}

// PullAccounts syncs remote accounts into company partners.
func (p *Puller) PullAccounts(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	since := p.marks.WindowStart(EntityAccounts)
	records := p.fetchWindow(ctx, endpointAccounts, combinedWindowQuery(since))
	log.Printf("🔄 pull accounts: %d records since %s", len(records), since)

	for _, rec := range records {
		res, partner, err := p.resolver.ResolveCompany(ctx, rec)
		if err != nil {
			log.Printf("❌ account %d: %v", rec.Int64("id"), err)
			continue
		}
		switch res {
		case ResolutionSkip:
			continue
		case ResolutionCreate:
			partner = &models.Partner{Synced: true}
			p.mapper.ApplyAccount(ctx, rec, partner)
			if err := p.store.CreatePartner(ctx, partner); err != nil {
				log.Printf("❌ account %d: create: %v", rec.Int64("id"), err)
				continue
			}
			p.ensureDefaultContact(ctx, rec, partner)
		default:
			p.mapper.ApplyAccount(ctx, rec, partner)
			partner.Synced = true
			if err := p.store.UpdatePartner(ctx, partner); err != nil {
				log.Printf("❌ account %d: update: %v", rec.Int64("id"), err)
			}
		}
	}

	if err := p.marks.Set(EntityAccounts, time.Time{}); err != nil {
		log.Printf("❌ accounts watermark: %v", err)
	}
}

// ensureDefaultContact creates the contact person embedded in an
// account record when none with that name exists under the company.
func (p *Puller) ensureDefaultContact(ctx context.Context, rec forcemanager.Record, company *models.Partner) {
	name := rec.Str("Z_Nombre_persona_de_contacto")
	if name == "" {
		return
	}
	existing, err := p.store.ContactByParentAndName(ctx, company.ID, name)
	if err != nil || existing != nil {
		return
	}
	contact := &models.Partner{
		IsCompany: false,
		ParentID:  &company.ID,
		Name:      name,
		Phone:     company.Phone,
		Email:     company.Email,
		UserID:    company.UserID,
		Synced:    true,
	}
	if err := p.store.CreatePartner(ctx, contact); err != nil {
		log.Printf("⚠️ account %d: contact person create: %v", rec.Int64("id"), err)
	}
}

// PullContacts syncs remote contacts into person partners.
func (p *Puller) PullContacts(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	since := p.marks.WindowStart(EntityContacts)
	records := p.fetchWindow(ctx, endpointContacts, combinedWindowQuery(since))
	log.Printf("🔄 pull contacts: %d records since %s", len(records), since)

	for _, rec := range records {
		var parent *models.Partner
		if account := rec.Ref("accountId"); account.ID != 0 {
			parent, _ = p.store.PartnerByRemoteID(ctx, account.ID, true)
		}
		var parentID *uint
		if parent != nil {
			parentID = &parent.ID
		}

		res, contact, err := p.resolver.ResolveContact(ctx, rec, parentID)
		if err != nil {
			log.Printf("❌ contact %d: %v", rec.Int64("id"), err)
			continue
		}
		switch res {
		case ResolutionSkip:
			continue
		case ResolutionCreate:
			contact = &models.Partner{Synced: true}
			p.mapper.ApplyContact(ctx, rec, contact, parent)
			if err := p.store.CreatePartner(ctx, contact); err != nil {
				log.Printf("❌ contact %d: create: %v", rec.Int64("id"), err)
			}
		default:
			p.mapper.ApplyContact(ctx, rec, contact, parent)
			contact.Synced = true
			if err := p.store.UpdatePartner(ctx, contact); err != nil {
				log.Printf("❌ contact %d: update: %v", rec.Int64("id"), err)
			}
		}
	}

	if err := p.marks.Set(EntityContacts, time.Time{}); err != nil {
		log.Printf("❌ contacts watermark: %v", err)
	}
}

// PullOpportunities syncs remote opportunities into leads.
func (p *Puller) PullOpportunities(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	since := p.marks.WindowStart(EntityOpportunities)
	records := p.fetchWindow(ctx, endpointOpportunities, combinedWindowQuery(since))
	log.Printf("🔄 pull opportunities: %d records since %s", len(records), since)

	for _, rec := range records {
		res, lead, err := p.resolver.ResolveLead(ctx, rec)
		if err != nil {
			log.Printf("❌ opportunity %d: %v", rec.Int64("id"), err)
			continue
		}
		switch res {
		case ResolutionSkip:
			continue
		case ResolutionCreate:
			lead = &models.Lead{Synced: true}
			p.mapper.ApplyOpportunity(ctx, rec, lead)
			if err := p.store.CreateLead(ctx, lead); err != nil {
				log.Printf("❌ opportunity %d: create: %v", rec.Int64("id"), err)
			}
		default:
			p.mapper.ApplyOpportunity(ctx, rec, lead)
			lead.Synced = true
			if err := p.store.UpdateLead(ctx, lead); err != nil {
				log.Printf("❌ opportunity %d: update: %v", rec.Int64("id"), err)
			}
		}
	}

	if err := p.marks.Set(EntityOpportunities, time.Time{}); err != nil {
		log.Printf("❌ opportunities watermark: %v", err)
	}
}

// PullProducts updates already linked products from the remote
// catalogue. Unknown remote products are ignored; creation flows the
// other way.
func (p *Puller) PullProducts(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	since := p.marks.WindowStart(EntityProducts)
	records := p.fetchWindow(ctx, endpointProducts, combinedWindowQuery(since))
	log.Printf("🔄 pull products: %d records since %s", len(records), since)

	for _, rec := range records {
		fmID := strconv.FormatInt(rec.Int64("id"), 10)
		product, err := p.store.ProductByRemoteID(ctx, fmID)
		if err != nil || product == nil {
			continue
		}
		p.mapper.ApplyProduct(ctx, rec, product)
		product.Synced = true
		if err := p.store.UpdateProduct(ctx, product); err != nil {
			log.Printf("❌ product %s: update: %v", fmID, err)
		}
	}

	if err := p.marks.Set(EntityProducts, time.Time{}); err != nil {
		log.Printf("❌ products watermark: %v", err)
	}
}

// PullOrders syncs remote sales orders. The updated and created
// windows are fetched separately and merged by remote id because the
// remote does not stamp dateUpdated on creation.
func (p *Puller) PullOrders(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	since := p.marks.WindowStart(EntityOrders)

	seen := make(map[int64]bool)
	var records []forcemanager.Record
	for _, field := range []string{"dateUpdated", "dateCreated"} {
		for _, rec := range p.fetchWindow(ctx, endpointOrders, windowQuery(field, since)) {
			id := rec.Int64("id")
			if id == 0 || seen[id] {
				continue
			}
			seen[id] = true
			records = append(records, rec)
		}
	}
	log.Printf("🔄 pull orders: %d records since %s", len(records), since)

	for _, rec := range records {
		p.syncOrder(ctx, rec)
	}

	if err := p.marks.Set(EntityOrders, time.Time{}); err != nil {
		log.Printf("❌ orders watermark: %v", err)
	}
}

func (p *Puller) syncOrder(ctx context.Context, rec forcemanager.Record) {
	fmID := rec.Int64("id")

	res, order, err := p.resolver.ResolveOrder(ctx, rec)
	if err != nil {
		log.Printf("❌ order %d: %v", fmID, err)
		return
	}

	// Deleted remotely: cancel the local order unless it already
	// reached a terminal state. Some responses carry the deletion as a
	// dateDeleted timestamp instead of the boolean flag.
	if rec.Bool("deleted") || rec.Str("dateDeleted") != "" {
		if order != nil && !order.Terminal() {
			order.State = models.OrderStateCancel
			order.Synced = true
			if err := p.store.UpdateOrder(ctx, order); err != nil {
				log.Printf("❌ order %d: cancel: %v", fmID, err)
			} else {
				log.Printf("🛑 order %d cancelled (deleted remotely)", fmID)
			}
		}
		return
	}

	switch res {
	case ResolutionSkip:
		return
	case ResolutionCreate:
		order = &models.SaleOrder{State: models.OrderStateDraft, Synced: true}
		if !p.mapper.ApplyOrder(ctx, rec, order) {
			return
		}
		if err := p.store.CreateOrder(ctx, order); err != nil {
			log.Printf("❌ order %d: create: %v", fmID, err)
			return
		}
	default:
		if !p.mapper.ApplyOrder(ctx, rec, order) {
			return
		}
		order.Synced = true
		if err := p.store.UpdateOrder(ctx, order); err != nil {
			log.Printf("❌ order %d: update: %v", fmID, err)
			return
		}
	}

	p.syncOrderLines(ctx, rec, order)

	if order.SameRepDelivery == "si" && p.fulfiller != nil {
		p.fulfiller.Fulfill(ctx, order)
	}
}

// withFetchedLines fetches the line list for orders whose list reply
// did not embed it, and grafts it onto the record.
func (p *Puller) withFetchedLines(ctx context.Context, rec forcemanager.Record) forcemanager.Record {
	query := "where=" + url.QueryEscape(fmt.Sprintf("(salesOrderId = %d)", rec.Int64("id")))
	lines := p.fetchWindow(ctx, endpointOrderLines, query)
	items := make([]interface{}, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]interface{}(l))
	}
	out := make(forcemanager.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out["lines"] = items
	return out
}

// syncOrderLines replaces the local line set with the remote one.
// Orders past confirmation keep their lines untouched.
func (p *Puller) syncOrderLines(ctx context.Context, rec forcemanager.Record, order *models.SaleOrder) {
	if order.Terminal() {
		return
	}
	if _, ok := rec["lines"]; !ok {
		rec = p.withFetchedLines(ctx, rec)
	}
	lines := p.mapper.MapOrderLines(ctx, rec, order.ID)
	if err := p.store.DeleteOrderLines(ctx, order.ID); err != nil {
		log.Printf("❌ order %d: clear lines: %v", order.ForceManagerID, err)
		return
	}
	for i := range lines {
		if err := p.store.CreateOrderLine(ctx, &lines[i]); err != nil {
			log.Printf("❌ order %d: line create: %v", order.ForceManagerID, err)
		}
	}
}
