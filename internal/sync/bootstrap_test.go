package sync

import (
	"context"
	"testing"

	"github.com/ibertrade/fmbridge/internal/models"
)

func newTestBootstrapper(api *fakeAPI, store *memStore) *Bootstrapper {
	return NewBootstrapper(api, store, NewMapper(store, testConfig()))
}

func TestLinkCountriesByISO2(t *testing.T) {
	store := newMemStore()
	store.countries = append(store.countries,
		&models.Country{ID: 1, Name: "Spain", Code: "ES"},
		&models.Country{ID: 2, Name: "Portugal", Code: "PT", ForceManagerID: 9},
	)
	api := newFakeAPI()
	api.respondList("GET", endpointCountries,
		map[string]interface{}{"id": float64(33), "strISO2": "ES", "name": "España"},
		map[string]interface{}{"id": float64(9), "strISO2": "PT", "name": "Portugal"},
		map[string]interface{}{"id": float64(50), "strISO2": "AD", "name": "Andorra"},
	)

	newTestBootstrapper(api, store).LinkCountries(context.Background())

	if store.countries[0].ForceManagerID != 33 {
		t.Errorf("ES link = %d, want 33", store.countries[0].ForceManagerID)
	}
	if store.countries[1].ForceManagerID != 9 {
		t.Error("already linked country must stay linked")
	}
	if len(store.countries) != 3 || store.countries[2].Code != "AD" {
		t.Errorf("missing country not created: %+v", store.countries)
	}

	// The catalogue exceeds the default page size; the Count header
	// must be set.
	calls := api.callsTo("GET", endpointCountries)
	if len(calls) != 1 || calls[0].Headers["Count"] != "300" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestReconcileCategories(t *testing.T) {
	store := newMemStore()
	store.categories = append(store.categories,
		&models.ProductCategory{ID: 1, Name: "Wholesale", ForceManagerID: "10"},
		&models.ProductCategory{ID: 2, Name: "Retail"},
	)
	api := newFakeAPI()
	api.respondList("GET", endpointCategories,
		map[string]interface{}{"id": float64(10)},
		map[string]interface{}{"id": float64(99)}, // no local counterpart
	)
	api.respond("POST", endpointCategories, map[string]interface{}{"id": float64(11)})

	newTestBootstrapper(api, store).ReconcileCategories(context.Background())

	deletes := api.callsTo("DELETE", endpointCategories+"/")
	if len(deletes) != 1 || deletes[0].Endpoint != endpointCategories+"/99" {
		t.Errorf("deletes = %+v, want only remote orphan 99", deletes)
	}
	if len(api.callsTo("POST", endpointCategories)) != 1 {
		t.Error("unlinked local category must be created remotely")
	}
	if store.categories[1].ForceManagerID != "11" {
		t.Errorf("new category link = %q, want 11", store.categories[1].ForceManagerID)
	}
	updates := api.callsTo("PUT", endpointCategories+"/10")
	if len(updates) != 1 {
		t.Error("linked category must be updated remotely")
	}
	payload := updates[0].Payload.(map[string]interface{})
	if payload["cLevel2"] != true || payload["descriptionES"] != "Wholesale" {
		t.Errorf("payload = %v", payload)
	}
}
