package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ibertrade/fmbridge/internal/models"
	"github.com/ibertrade/fmbridge/internal/store"
)

// bulkItem is one entry of a <entity>/bulk PUT body.
type bulkItem struct {
	GUID int64                  `json:"guid"`
	Data map[string]interface{} `json:"data"`
}

// Pusher drives the local-to-remote direction. The dirty set per
// entity is: modified after the watermark, never linked, or explicitly
// flagged unsynced by the write-through invalidation hook. Creates go
// one by one so the returned remote id can be captured; updates go
// through the bulk endpoint when the deployment has one.
type Pusher struct {
	api    RemoteAPI
	store  RecordStore
	mapper *Mapper
	marks  *Watermarks
}

func NewPusher(api RemoteAPI, rs RecordStore, mapper *Mapper) *Pusher {
	return &Pusher{api: api, store: rs, mapper: mapper, marks: NewWatermarks(rs)}
}

func (p *Pusher) since(entity string) *time.Time {
	if t, ok := p.marks.Get(entity); ok {
		return &t
	}
	return nil
}

// advance moves the entity watermark to now. Called only when a pass
// got every dirty record across; a partial pass leaves the watermark
// alone so the failed records are re-selected next cycle.
func (p *Pusher) advance(entity string) {
	if err := p.marks.Set(entity, time.Time{}); err != nil {
		log.Printf("⚠️ push %s: watermark: %v", entity, err)
	}
}

// Run executes every push pass in the fixed entity order.
func (p *Pusher) Run(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	p.PushAccounts(ctx)
	p.PushContacts(ctx)
	p.PushOpportunities(ctx)
	p.PushProducts(ctx)
	p.PushOrders(ctx)
}

// create POSTs one record and returns the remote id it was assigned.
func (p *Pusher) create(ctx context.Context, endpoint string, payload map[string]interface{}) (int64, error) {
	resp, err := p.api.Request(ctx, endpoint, http.MethodPost, payload, nil)
	if err != nil {
		return 0, err
	}
	obj := resp.Object()
	if obj == nil {
		return 0, fmt.Errorf("no record in create response")
	}
	id := obj.Int64("id")
	if id == 0 {
		return 0, fmt.Errorf("no id in create response")
	}
	return id, nil
}

// pushUpdates sends the accumulated updates, bulk when available.
func (p *Pusher) pushUpdates(ctx context.Context, endpoint string, items []bulkItem) map[int64]bool {
	ok := make(map[int64]bool, len(items))
	if len(items) == 0 {
		return ok
	}

	if p.api.HasBulkEndpoint(ctx, endpoint+"/bulk") {
		if _, err := p.api.Request(ctx, endpoint+"/bulk", http.MethodPut, items, nil); err != nil {
			log.Printf("❌ FM Push Error (%s/bulk): %v", endpoint, err)
			return ok
		}
		for _, it := range items {
			ok[it.GUID] = true
		}
		return ok
	}

	for _, it := range items {
		if _, err := p.api.Request(ctx, fmt.Sprintf("%s/%d", endpoint, it.GUID), http.MethodPut, it.Data, nil); err != nil {
			log.Printf("❌ FM Push Error (%s/%d): %v", endpoint, it.GUID, err)
			continue
		}
		ok[it.GUID] = true
	}
	return ok
}

// PushAccounts pushes dirty company partners.
func (p *Pusher) PushAccounts(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	partners, err := p.store.DirtyPartners(ctx, true, p.since(EntityAccounts))
	if err != nil {
		log.Printf("❌ push accounts: %v", err)
		return
	}
	log.Printf("🔄 push accounts: %d dirty", len(partners))

	clean := true
	var updates []bulkItem
	index := make(map[int64]*models.Partner)
	for i := range partners {
		partner := &partners[i]
		payload := p.mapper.AccountPayload(ctx, partner)
		if !partner.RemoteLinked() {
			id, err := p.create(ctx, endpointAccounts, payload)
			if err != nil {
				log.Printf("❌ push account %d: %v", partner.ID, err)
				clean = false
				continue
			}
			partner.ForceManagerID = id
			partner.Synced = true
			if err := p.store.UpdatePartner(ctx, partner); err != nil {
				log.Printf("❌ push account %d: link: %v", partner.ID, err)
			}
			continue
		}
		updates = append(updates, bulkItem{GUID: partner.ForceManagerID, Data: payload})
		index[partner.ForceManagerID] = partner
	}

	done := p.pushUpdates(ctx, endpointAccounts, updates)
	if len(done) != len(updates) {
		clean = false
	}
	for guid := range done {
		partner := index[guid]
		partner.Synced = true
		if err := p.store.UpdatePartner(ctx, partner); err != nil {
			log.Printf("❌ push account %d: mark synced: %v", partner.ID, err)
		}
	}
	if clean {
		p.advance(EntityAccounts)
	}
}

// PushContacts pushes dirty person partners.
func (p *Pusher) PushContacts(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	contacts, err := p.store.DirtyPartners(ctx, false, p.since(EntityContacts))
	if err != nil {
		log.Printf("❌ push contacts: %v", err)
		return
	}
	log.Printf("🔄 push contacts: %d dirty", len(contacts))

	clean := true
	var updates []bulkItem
	index := make(map[int64]*models.Partner)
	for i := range contacts {
		contact := &contacts[i]
		var parent *models.Partner
		if contact.ParentID != nil {
			parent, _ = p.store.PartnerByID(ctx, *contact.ParentID)
		}
		payload := p.mapper.ContactPayload(ctx, contact, parent)
		if !contact.RemoteLinked() {
			id, err := p.create(ctx, endpointContacts, payload)
			if err != nil {
				log.Printf("❌ push contact %d: %v", contact.ID, err)
				clean = false
				continue
			}
			contact.ForceManagerID = id
			contact.Synced = true
			if err := p.store.UpdatePartner(ctx, contact); err != nil {
				log.Printf("❌ push contact %d: link: %v", contact.ID, err)
			}
			continue
		}
		updates = append(updates, bulkItem{GUID: contact.ForceManagerID, Data: payload})
		index[contact.ForceManagerID] = contact
	}

	done := p.pushUpdates(ctx, endpointContacts, updates)
	if len(done) != len(updates) {
		clean = false
	}
	for guid := range done {
		contact := index[guid]
		contact.Synced = true
		if err := p.store.UpdatePartner(ctx, contact); err != nil {
			log.Printf("❌ push contact %d: mark synced: %v", contact.ID, err)
		}
	}
	if clean {
		p.advance(EntityContacts)
	}
}

// PushOpportunities pushes dirty leads.
func (p *Pusher) PushOpportunities(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	leads, err := p.store.DirtyLeads(ctx, p.since(EntityOpportunities))
	if err != nil {
		log.Printf("❌ push opportunities: %v", err)
		return
	}
	log.Printf("🔄 push opportunities: %d dirty", len(leads))

	clean := true
	var updates []bulkItem
	index := make(map[int64]*models.Lead)
	for i := range leads {
		lead := &leads[i]
		payload := p.mapper.OpportunityPayload(ctx, lead)
		if !lead.RemoteLinked() {
			id, err := p.create(ctx, endpointOpportunities, payload)
			if err != nil {
				log.Printf("❌ push opportunity %d: %v", lead.ID, err)
				clean = false
				continue
			}
			lead.ForceManagerID = id
			lead.Synced = true
			if err := p.store.UpdateLead(ctx, lead); err != nil {
				log.Printf("❌ push opportunity %d: link: %v", lead.ID, err)
			}
			continue
		}
		updates = append(updates, bulkItem{GUID: lead.ForceManagerID, Data: payload})
		index[lead.ForceManagerID] = lead
	}

	done := p.pushUpdates(ctx, endpointOpportunities, updates)
	if len(done) != len(updates) {
		clean = false
	}
	for guid := range done {
		lead := index[guid]
		lead.Synced = true
		if err := p.store.UpdateLead(ctx, lead); err != nil {
			log.Printf("❌ push opportunity %d: mark synced: %v", lead.ID, err)
		}
	}
	if clean {
		p.advance(EntityOpportunities)
	}
}

// PushProducts pushes dirty B2B products and reconciles remote
// orphans afterwards.
func (p *Pusher) PushProducts(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	products, err := p.store.DirtyProducts(ctx, p.since(EntityProducts))
	if err != nil {
		log.Printf("❌ push products: %v", err)
		return
	}
	log.Printf("🔄 push products: %d dirty", len(products))

	clean := true
	var updates []bulkItem
	index := make(map[int64]*models.Product)
	for i := range products {
		product := &products[i]
		payload := p.mapper.ProductPayload(ctx, product)
		if !product.RemoteLinked() {
			id, err := p.create(ctx, endpointProducts, payload)
			if err != nil {
				log.Printf("❌ push product %d: %v", product.ID, err)
				clean = false
				continue
			}
			product.ForceManagerID = strconv.FormatInt(id, 10)
			product.Synced = true
			if err := p.store.UpdateProduct(ctx, product); err != nil {
				log.Printf("❌ push product %d: link: %v", product.ID, err)
			}
			continue
		}
		guid, err := strconv.ParseInt(product.ForceManagerID, 10, 64)
		if err != nil {
			log.Printf("⚠️ push product %d: non-numeric remote id %q", product.ID, product.ForceManagerID)
			continue
		}
		updates = append(updates, bulkItem{GUID: guid, Data: payload})
		index[guid] = product
	}

	done := p.pushUpdates(ctx, endpointProducts, updates)
	if len(done) != len(updates) {
		clean = false
	}
	for guid := range done {
		product := index[guid]
		product.Synced = true
		if err := p.store.UpdateProduct(ctx, product); err != nil {
			log.Printf("❌ push product %d: mark synced: %v", product.ID, err)
		}
	}
	if clean {
		p.advance(EntityProducts)
	}

	p.cleanupProducts(ctx)
}

// cleanupProducts reconciles the remote catalogue against the local
// one: remote products that are unknown locally or fell out of a B2B
// category are deleted remotely, and local links pointing at records
// the remote no longer has are cleared.
func (p *Pusher) cleanupProducts(ctx context.Context) {
	resp, err := p.api.Request(ctx, endpointProducts, http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("⚠️ product cleanup skipped: %v", err)
		return
	}
	remote := resp.List()
	if len(remote) == 0 {
		return
	}

	remoteIDs := make(map[string]bool, len(remote))
	for _, rec := range remote {
		fmID := strconv.FormatInt(rec.Int64("id"), 10)
		remoteIDs[fmID] = true

		local, err := p.store.ProductByRemoteID(ctx, fmID)
		if err != nil {
			continue
		}
		b2b := false
		if local != nil {
			cat := local.Category
			if cat == nil && local.CategoryID != 0 {
				cat, _ = p.store.CategoryByID(ctx, local.CategoryID)
			}
			b2b = cat != nil && cat.B2BAvailable
		}
		if local != nil && b2b {
			continue
		}

		if _, err := p.api.Request(ctx, endpointProducts+"/"+fmID, http.MethodDelete, nil, nil); err != nil {
			log.Printf("❌ product cleanup: delete %s: %v", fmID, err)
			continue
		}
		log.Printf("🛑 product cleanup: removed remote product %s", fmID)
		if local != nil {
			local.ForceManagerID = ""
			if err := p.store.UpdateProduct(ctx, local); err != nil {
				log.Printf("❌ product cleanup: unlink %d: %v", local.ID, err)
			}
		}
	}

	linked, err := p.store.LinkedProducts(ctx)
	if err != nil {
		return
	}
	for i := range linked {
		product := &linked[i]
		if remoteIDs[product.ForceManagerID] {
			continue
		}
		product.ForceManagerID = ""
		if err := p.store.UpdateProduct(ctx, product); err != nil {
			log.Printf("❌ product cleanup: unlink %d: %v", product.ID, err)
		}
	}
}

// PushOrders pushes dirty orders that carry at least one B2B line.
func (p *Pusher) PushOrders(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	orders, err := p.store.DirtyOrders(ctx, p.since(EntityOrders))
	if err != nil {
		log.Printf("❌ push orders: %v", err)
		return
	}
	log.Printf("🔄 push orders: %d dirty", len(orders))

	clean := true
	var updates []bulkItem
	index := make(map[int64]*models.SaleOrder)
	for i := range orders {
		order := &orders[i]
		payload := p.mapper.OrderPayload(ctx, order)
		if _, ok := payload["accountId"]; !ok {
			log.Printf("⚠️ push order %d: partner not linked remotely, skipping", order.ID)
			continue
		}
		if !order.RemoteLinked() {
			id, err := p.create(ctx, endpointOrders, payload)
			if err != nil {
				log.Printf("❌ push order %d: %v", order.ID, err)
				clean = false
				continue
			}
			order.ForceManagerID = id
			order.Synced = true
			if err := p.store.UpdateOrder(ctx, order); err != nil {
				log.Printf("❌ push order %d: link: %v", order.ID, err)
			}
			continue
		}
		updates = append(updates, bulkItem{GUID: order.ForceManagerID, Data: payload})
		index[order.ForceManagerID] = order
	}

	done := p.pushUpdates(ctx, endpointOrders, updates)
	if len(done) != len(updates) {
		clean = false
	}
	for guid := range done {
		order := index[guid]
		order.Synced = true
		if err := p.store.UpdateOrder(ctx, order); err != nil {
			log.Printf("❌ push order %d: mark synced: %v", order.ID, err)
		}
	}
	if clean {
		p.advance(EntityOrders)
	}
}
