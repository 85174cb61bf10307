package sync

import (
	"context"
	"strings"
	"testing"

	"github.com/ibertrade/fmbridge/internal/models"
)

func newTestPuller(api *fakeAPI, store *memStore) *Puller {
	mapper := NewMapper(store, testConfig())
	return NewPuller(api, store, mapper, NewFulfiller(store))
}

func TestPullAccountsCreatesAndAdvancesWatermark(t *testing.T) {
	api := newFakeAPI()
	api.respondList("GET", endpointAccounts,
		map[string]interface{}{"id": float64(12), "name": "Acme SL", "Z_nif": "B123"},
	)
	store := newMemStore()
	p := newTestPuller(api, store)

	p.PullAccounts(context.Background())

	if len(store.partners) != 1 {
		t.Fatalf("%d partners, want 1", len(store.partners))
	}
	created := store.partners[0]
	if created.ForceManagerID != 12 || !created.Synced || !created.IsCompany {
		t.Errorf("created = %+v", created)
	}
	if _, ok := store.params["accounts_last_sync"]; !ok {
		t.Error("watermark not advanced")
	}

	// The window must be carried in the filter expression.
	calls := api.callsTo("GET", endpointAccounts)
	if len(calls) != 1 || !strings.Contains(calls[0].Endpoint, "where=") {
		t.Errorf("calls = %v", calls)
	}
}

func TestPullAccountsEmptyWindowStillAdvances(t *testing.T) {
	api := newFakeAPI()
	store := newMemStore()
	newTestPuller(api, store).PullAccounts(context.Background())

	if len(store.partners) != 0 {
		t.Error("no partners expected")
	}
	if _, ok := store.params["accounts_last_sync"]; !ok {
		t.Error("watermark must advance even on an empty window")
	}
}

func TestPullAccountCreatesEmbeddedContactPerson(t *testing.T) {
	api := newFakeAPI()
	api.respondList("GET", endpointAccounts,
		map[string]interface{}{
			"id":                           float64(12),
			"name":                         "Acme SL",
			"Z_Nombre_persona_de_contacto": "Marta Gil",
		},
	)
	store := newMemStore()
	newTestPuller(api, store).PullAccounts(context.Background())

	if len(store.partners) != 2 {
		t.Fatalf("%d partners, want company + contact", len(store.partners))
	}
	contact := store.partners[1]
	if contact.IsCompany || contact.Name != "Marta Gil" || contact.ParentID == nil {
		t.Errorf("contact = %+v", contact)
	}
}

func TestPullOrdersMergesWindowsByID(t *testing.T) {
	api := newFakeAPI()
	store := newMemStore()
	store.partners = append(store.partners, &models.Partner{ID: 1, IsCompany: true, ForceManagerID: 40})
	// Same order in both windows.
	rec := map[string]interface{}{
		"id":        float64(5),
		"accountId": map[string]interface{}{"id": float64(40)},
		"lines":     []interface{}{},
	}
	api.respondList("GET", endpointOrders, rec)

	newTestPuller(api, store).PullOrders(context.Background())

	if len(store.orders) != 1 {
		t.Fatalf("%d orders, want 1 (deduplicated)", len(store.orders))
	}
	if calls := api.callsTo("GET", endpointOrders); len(calls) != 2 {
		t.Errorf("%d window fetches, want 2 (updated + created)", len(calls))
	}
}

func TestPullOrderSkippedWithoutLocalAccount(t *testing.T) {
	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id":        float64(5),
		"accountId": map[string]interface{}{"id": float64(40)},
	})
	store := newMemStore()
	newTestPuller(api, store).PullOrders(context.Background())

	if len(store.orders) != 0 {
		t.Error("order with unknown account must be skipped")
	}
}

func TestPullDeletedOrderCancelsNonTerminal(t *testing.T) {
	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id": float64(5), "deleted": true,
	})
	store := newMemStore()
	store.orders = append(store.orders, &models.SaleOrder{ID: 1, ForceManagerID: 5, State: models.OrderStateDraft})

	newTestPuller(api, store).PullOrders(context.Background())

	if store.orders[0].State != models.OrderStateCancel {
		t.Errorf("state = %s, want cancel", store.orders[0].State)
	}
}

func TestPullDateDeletedCancelsOrder(t *testing.T) {
	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id": float64(5), "dateDeleted": "2025-03-01T10:00:00Z",
	})
	store := newMemStore()
	store.orders = append(store.orders, &models.SaleOrder{ID: 1, ForceManagerID: 5, State: models.OrderStateDraft})

	newTestPuller(api, store).PullOrders(context.Background())

	if store.orders[0].State != models.OrderStateCancel {
		t.Errorf("state = %s, dateDeleted must cancel like the deleted flag", store.orders[0].State)
	}
}

func TestPullDeletedOrderLeavesTerminalAlone(t *testing.T) {
	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id": float64(5), "deleted": true,
	})
	store := newMemStore()
	store.orders = append(store.orders, &models.SaleOrder{ID: 1, ForceManagerID: 5, State: models.OrderStateDone})

	newTestPuller(api, store).PullOrders(context.Background())

	if store.orders[0].State != models.OrderStateDone {
		t.Errorf("state = %s, terminal order must stay", store.orders[0].State)
	}
}

func TestPullOrderLinesReplacedUnlessTerminal(t *testing.T) {
	store := newMemStore()
	store.partners = append(store.partners, &models.Partner{ID: 1, IsCompany: true, ForceManagerID: 40})
	store.products = append(store.products, &models.Product{ID: 2, Name: "Oil", ForceManagerID: "101"})
	store.orders = append(store.orders, &models.SaleOrder{ID: 3, ForceManagerID: 5, State: models.OrderStateDraft})
	store.lines = append(store.lines, &models.SaleOrderLine{ID: 4, OrderID: 3, ProductID: 2, Qty: 1})

	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id":        float64(5),
		"accountId": map[string]interface{}{"id": float64(40)},
		"lines": []interface{}{
			map[string]interface{}{"productId": float64(101), "quantity": float64(7), "price": float64(2)},
		},
	})
	newTestPuller(api, store).PullOrders(context.Background())

	lines, _ := store.OrderLines(context.Background(), 3)
	if len(lines) != 1 || lines[0].Qty != 7 {
		t.Errorf("lines = %+v, want replaced with qty 7", lines)
	}
}

func TestPullOrderLinesFrozenOnConfirmedOrder(t *testing.T) {
	store := newMemStore()
	store.partners = append(store.partners, &models.Partner{ID: 1, IsCompany: true, ForceManagerID: 40})
	store.orders = append(store.orders, &models.SaleOrder{ID: 3, ForceManagerID: 5, State: models.OrderStateSale, PartnerID: 1})
	store.lines = append(store.lines, &models.SaleOrderLine{ID: 4, OrderID: 3, ProductID: 2, Qty: 1})

	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id":        float64(5),
		"accountId": map[string]interface{}{"id": float64(40)},
		"lines":     []interface{}{},
	})
	newTestPuller(api, store).PullOrders(context.Background())

	lines, _ := store.OrderLines(context.Background(), 3)
	if len(lines) != 1 || lines[0].Qty != 1 {
		t.Errorf("confirmed order lines mutated: %+v", lines)
	}
}

func TestPullProductsUpdatesOnlyLinked(t *testing.T) {
	store := newMemStore()
	store.products = append(store.products, &models.Product{ID: 1, Name: "Old", ForceManagerID: "101"})

	api := newFakeAPI()
	api.respondList("GET", endpointProducts,
		map[string]interface{}{"id": float64(101), "model": "New Name", "price": float64(12)},
		map[string]interface{}{"id": float64(999), "model": "Stranger"},
	)
	newTestPuller(api, store).PullProducts(context.Background())

	if len(store.products) != 1 {
		t.Fatal("pull must never create products")
	}
	if store.products[0].Name != "New Name" || store.products[0].ListPrice != 12 {
		t.Errorf("product = %+v", store.products[0])
	}
}

func TestPullSameRepDeliveryTriggersFulfillment(t *testing.T) {
	store := newMemStore()
	rep := &models.User{ID: 7, Name: "Joan Bonell", ForceManagerID: 95}
	store.users = append(store.users, rep)
	store.warehouses = append(store.warehouses, &models.Warehouse{ID: 8, Name: "Joan Bonell"})
	store.partners = append(store.partners, &models.Partner{ID: 1, IsCompany: true, ForceManagerID: 40})
	store.products = append(store.products, &models.Product{ID: 2, Name: "Oil", ForceManagerID: "101", InvoicePolicy: "delivery"})

	api := newFakeAPI()
	api.respondList("GET", endpointOrders, map[string]interface{}{
		"id":                       float64(5),
		"accountId":                map[string]interface{}{"id": float64(40)},
		"salesRepId":               map[string]interface{}{"id": float64(95), "value": "Joan Bonell"},
		"Z_Entrega_mismo_comercial": "si",
		"lines": []interface{}{
			map[string]interface{}{"productId": float64(101), "quantity": float64(2), "price": float64(10)},
		},
	})
	newTestPuller(api, store).PullOrders(context.Background())

	if len(store.orders) != 1 {
		t.Fatal("order not created")
	}
	order := store.orders[0]
	if order.State != models.OrderStateSale {
		t.Errorf("state = %s, want confirmed", order.State)
	}
	if order.WarehouseID == nil || *order.WarehouseID != 8 {
		t.Errorf("warehouse = %v, want rep warehouse", order.WarehouseID)
	}
	if len(store.moves) == 0 || store.moves[0].State != models.MoveStateDone || store.moves[0].QtyDone != 2 {
		t.Errorf("moves = %+v, want forced done", store.moves)
	}
	lines, _ := store.OrderLines(context.Background(), order.ID)
	if len(lines) != 1 || lines[0].QtyDelivered != 2 {
		t.Errorf("delivered qty = %+v", lines)
	}
	if len(store.invoices) != 1 || store.invoices[0].State != models.InvoiceStatePosted || store.invoices[0].Amount != 20 {
		t.Errorf("invoices = %+v", store.invoices)
	}
}
