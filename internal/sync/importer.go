package sync

import (
	"context"
	"log"
	"net/http"

	"github.com/ibertrade/fmbridge/internal/models"
	"github.com/ibertrade/fmbridge/internal/store"
)

// Importer is the one-shot initial load. It differs from continuous
// pull in what it dares to touch: records already linked are left
// alone, and a natural-key adoption only writes the link and ownership
// fields instead of overwriting local data wholesale. Watermarks are
// not advanced; the first continuous run decides its own window.
type Importer struct {
	api      RemoteAPI
	store    RecordStore
	mapper   *Mapper
	resolver *Resolver
}

func NewImporter(api RemoteAPI, rs RecordStore, mapper *Mapper) *Importer {
	return &Importer{api: api, store: rs, mapper: mapper, resolver: NewResolver(rs)}
}

// Run imports accounts, contacts and opportunities.
func (im *Importer) Run(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	im.ImportAccounts(ctx)
	im.ImportContacts(ctx)
	im.ImportOpportunities(ctx)
}

// ImportAccounts loads the full remote account list.
func (im *Importer) ImportAccounts(ctx context.Context) {
	resp, err := im.api.Request(ctx, endpointAccounts, http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("❌ FM Import Error (accounts): %v", err)
		return
	}
	records := resp.List()
	log.Printf("🔄 import accounts: %d records", len(records))

	for _, rec := range records {
		res, partner, err := im.resolver.ResolveCompany(ctx, rec)
		if err != nil {
			log.Printf("❌ import account %d: %v", rec.Int64("id"), err)
			continue
		}
		switch res {
		case ResolutionLinked, ResolutionSkip:
			continue
		case ResolutionAdopt:
			partner.ForceManagerID = rec.Int64("id")
			rep := rec.Ref("salesRepId1")
			partner.ForceManagerSalesRepID = rep.ID
			if userID := im.mapper.resolveSalesRep(ctx, rep); userID != nil {
				partner.UserID = userID
			}
			partner.Synced = true
			if err := im.store.UpdatePartner(ctx, partner); err != nil {
				log.Printf("❌ import account %d: adopt: %v", rec.Int64("id"), err)
			}
		case ResolutionCreate:
			partner = &models.Partner{Synced: true}
			im.mapper.ApplyAccount(ctx, rec, partner)
			if err := im.store.CreatePartner(ctx, partner); err != nil {
				log.Printf("❌ import account %d: create: %v", rec.Int64("id"), err)
			}
		}
	}
}

// ImportContacts loads the full remote contact list.
func (im *Importer) ImportContacts(ctx context.Context) {
	resp, err := im.api.Request(ctx, endpointContacts, http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("❌ FM Import Error (contacts): %v", err)
		return
	}
	records := resp.List()
	log.Printf("🔄 import contacts: %d records", len(records))

	for _, rec := range records {
		var parent *models.Partner
		if account := rec.Ref("accountId"); account.ID != 0 {
			parent, _ = im.store.PartnerByRemoteID(ctx, account.ID, true)
		}
		var parentID *uint
		if parent != nil {
			parentID = &parent.ID
		}

		res, contact, err := im.resolver.ResolveContact(ctx, rec, parentID)
		if err != nil {
			log.Printf("❌ import contact %d: %v", rec.Int64("id"), err)
			continue
		}
		switch res {
		case ResolutionLinked, ResolutionSkip:
			continue
		case ResolutionAdopt:
			contact.ForceManagerID = rec.Int64("id")
			if parentID != nil && contact.ParentID == nil {
				contact.ParentID = parentID
			}
			contact.Synced = true
			if err := im.store.UpdatePartner(ctx, contact); err != nil {
				log.Printf("❌ import contact %d: adopt: %v", rec.Int64("id"), err)
			}
		case ResolutionCreate:
			contact = &models.Partner{Synced: true}
			im.mapper.ApplyContact(ctx, rec, contact, parent)
			if err := im.store.CreatePartner(ctx, contact); err != nil {
				log.Printf("❌ import contact %d: create: %v", rec.Int64("id"), err)
			}
		}
	}
}

// ImportOpportunities loads the full remote opportunity list.
func (im *Importer) ImportOpportunities(ctx context.Context) {
	resp, err := im.api.Request(ctx, endpointOpportunities, http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("❌ FM Import Error (opportunities): %v", err)
		return
	}
	records := resp.List()
	log.Printf("🔄 import opportunities: %d records", len(records))

	for _, rec := range records {
		res, lead, err := im.resolver.ResolveLead(ctx, rec)
		if err != nil {
			log.Printf("❌ import opportunity %d: %v", rec.Int64("id"), err)
			continue
		}
		switch res {
		case ResolutionLinked, ResolutionSkip:
			continue
		case ResolutionAdopt:
			lead.ForceManagerID = rec.Int64("id")
			rep := rec.Ref("salesRepId")
			lead.ForceManagerSalesRepID = rep.ID
			if userID := im.mapper.resolveSalesRep(ctx, rep); userID != nil {
				lead.UserID = userID
			}
			lead.Synced = true
			if err := im.store.UpdateLead(ctx, lead); err != nil {
				log.Printf("❌ import opportunity %d: adopt: %v", rec.Int64("id"), err)
			}
		case ResolutionCreate:
			lead = &models.Lead{Synced: true}
			im.mapper.ApplyOpportunity(ctx, rec, lead)
			if err := im.store.CreateLead(ctx, lead); err != nil {
				log.Printf("❌ import opportunity %d: create: %v", rec.Int64("id"), err)
			}
		}
	}
}
