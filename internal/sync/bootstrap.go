package sync

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/ibertrade/fmbridge/internal/models"
	"github.com/ibertrade/fmbridge/internal/store"
)

// Bootstrapper performs the one-time reference data alignment that
// continuous sync relies on: countries linked by ISO code and product
// categories reconciled remote-side.
type Bootstrapper struct {
	api    RemoteAPI
	store  RecordStore
	mapper *Mapper
}

func NewBootstrapper(api RemoteAPI, rs RecordStore, mapper *Mapper) *Bootstrapper {
	return &Bootstrapper{api: api, store: rs, mapper: mapper}
}

// Run executes both bootstrap steps.
func (b *Bootstrapper) Run(ctx context.Context) {
	ctx = store.WithOrigin(ctx, store.OriginSync)
	b.LinkCountries(ctx)
	b.ReconcileCategories(ctx)
}

// LinkCountries fetches the remote country catalogue and links it to
// the local one by ISO2 code, creating entries the local catalogue is
// missing. The remote pages at 50 by default; the Count header lifts
// it above the catalogue size.
func (b *Bootstrapper) LinkCountries(ctx context.Context) {
	resp, err := b.api.Request(ctx, endpointCountries, http.MethodGet, nil, map[string]string{"Count": "300"})
	if err != nil {
		log.Printf("❌ FM Bootstrap Error (countries): %v", err)
		return
	}
	records := resp.List()
	log.Printf("🔄 bootstrap countries: %d remote entries", len(records))

	linked, created := 0, 0
	for _, rec := range records {
		fmID := rec.Int64("id")
		iso := rec.Str("strISO2")
		if iso == "" {
			iso = rec.Str("iso2")
		}
		if fmID == 0 || iso == "" {
			continue
		}

		country, err := b.store.CountryByCode(ctx, iso)
		if err != nil {
			continue
		}
		if country == nil {
			country = &models.Country{
				Name:           rec.Str("name"),
				Code:           iso,
				ForceManagerID: fmID,
			}
			if err := b.store.CreateCountry(ctx, country); err != nil {
				log.Printf("⚠️ bootstrap country %s: create: %v", iso, err)
				continue
			}
			created++
			continue
		}
		if country.ForceManagerID == fmID {
			continue
		}
		country.ForceManagerID = fmID
		if err := b.store.UpdateCountry(ctx, country); err != nil {
			log.Printf("⚠️ bootstrap country %s: link: %v", iso, err)
			continue
		}
		linked++
	}
	log.Printf("✅ bootstrap countries: %d linked, %d created", linked, created)
}

// ReconcileCategories makes the remote category tree mirror the local
// one: remote categories with no local counterpart are deleted, then
// every local category is created or updated remotely.
func (b *Bootstrapper) ReconcileCategories(ctx context.Context) {
	locals, err := b.store.AllCategories(ctx)
	if err != nil {
		log.Printf("❌ FM Bootstrap Error (categories): %v", err)
		return
	}
	localByRemote := make(map[string]bool, len(locals))
	for _, c := range locals {
		if c.ForceManagerID != "" {
			localByRemote[c.ForceManagerID] = true
		}
	}

	resp, err := b.api.Request(ctx, endpointCategories, http.MethodGet, nil, nil)
	if err != nil {
		log.Printf("❌ FM Bootstrap Error (categories): %v", err)
		return
	}
	for _, rec := range resp.List() {
		fmID := strconv.FormatInt(rec.Int64("id"), 10)
		if localByRemote[fmID] {
			continue
		}
		if _, err := b.api.Request(ctx, endpointCategories+"/"+fmID, http.MethodDelete, nil, nil); err != nil {
			log.Printf("⚠️ bootstrap category %s: delete: %v", fmID, err)
			continue
		}
		log.Printf("🛑 bootstrap: removed remote category %s", fmID)
	}

	for i := range locals {
		category := &locals[i]
		payload := b.mapper.CategoryPayload(category)
		if category.ForceManagerID == "" {
			respC, err := b.api.Request(ctx, endpointCategories, http.MethodPost, payload, nil)
			if err != nil {
				log.Printf("❌ bootstrap category %q: create: %v", category.Name, err)
				continue
			}
			obj := respC.Object()
			if obj == nil || obj.Int64("id") == 0 {
				log.Printf("⚠️ bootstrap category %q: no id in create response", category.Name)
				continue
			}
			category.ForceManagerID = strconv.FormatInt(obj.Int64("id"), 10)
			if err := b.store.UpdateCategory(ctx, category); err != nil {
				log.Printf("❌ bootstrap category %q: link: %v", category.Name, err)
			}
			continue
		}
		if _, err := b.api.Request(ctx, endpointCategories+"/"+category.ForceManagerID, http.MethodPut, payload, nil); err != nil {
			log.Printf("❌ bootstrap category %q: update: %v", category.Name, err)
		}
	}
	log.Printf("✅ bootstrap categories: %d local categories reconciled", len(locals))
}
