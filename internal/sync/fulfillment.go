package sync

import (
	"context"
	"log"

	"github.com/ibertrade/fmbridge/internal/models"
)

// Fulfiller runs the auto-fulfillment chain for orders delivered by
// the sales rep on the spot: the goods already changed hands, so the
// order is confirmed, its stock moves forced through, delivered
// quantities recorded and the invoice posted in one go. Every step is
// guarded and fault isolated; a failing step logs and lets the
// remaining steps proceed so a partial chain can be completed on the
// next pass.
type Fulfiller struct {
	store RecordStore
}

func NewFulfiller(store RecordStore) *Fulfiller {
	return &Fulfiller{store: store}
}

// Fulfill runs the chain for one order. Cancelled orders have nothing
// to deliver and done orders already went through the whole chain.
func (f *Fulfiller) Fulfill(ctx context.Context, order *models.SaleOrder) {
	if order.State == models.OrderStateCancel || order.State == models.OrderStateDone {
		return
	}
	log.Printf("📦 auto-fulfillment: order %d", order.ID)

	f.assignWarehouse(ctx, order)
	f.confirm(ctx, order)
	f.forceMoves(ctx, order)
	f.recordDelivered(ctx, order)
	f.invoice(ctx, order)
}

// assignWarehouse picks the warehouse named after the order's sales
// rep; reps carry their stock with them.
func (f *Fulfiller) assignWarehouse(ctx context.Context, order *models.SaleOrder) {
	if order.WarehouseID != nil || order.UserID == nil {
		return
	}
	user, err := f.store.UserByID(ctx, *order.UserID)
	if err != nil || user == nil {
		return
	}
	wh, err := f.store.WarehouseByName(ctx, user.Name)
	if err != nil || wh == nil {
		log.Printf("⚠️ fulfillment order %d: no warehouse named %q", order.ID, user.Name)
		return
	}
	order.WarehouseID = &wh.ID
	if err := f.store.UpdateOrder(ctx, order); err != nil {
		log.Printf("❌ fulfillment order %d: warehouse assign: %v", order.ID, err)
	}
}

func (f *Fulfiller) confirm(ctx context.Context, order *models.SaleOrder) {
	if order.State != models.OrderStateDraft {
		return
	}
	order.State = models.OrderStateSale
	if err := f.store.UpdateOrder(ctx, order); err != nil {
		log.Printf("❌ fulfillment order %d: confirm: %v", order.ID, err)
		order.State = models.OrderStateDraft
	}
}

// forceMoves pushes every pending stock move straight to done with the
// planned quantity. Confirmation normally creates the picking; when it
// is absent one is created from the order lines.
func (f *Fulfiller) forceMoves(ctx context.Context, order *models.SaleOrder) {
	if order.State != models.OrderStateSale && order.State != models.OrderStateDone {
		return
	}
	pickings, err := f.store.PickingsForOrder(ctx, order.ID)
	if err != nil {
		log.Printf("❌ fulfillment order %d: pickings: %v", order.ID, err)
		return
	}
	if len(pickings) == 0 {
		picking, err := f.createPickingFromLines(ctx, order)
		if err != nil {
			log.Printf("❌ fulfillment order %d: picking create: %v", order.ID, err)
			return
		}
		pickings = []models.StockPicking{*picking}
	}

	for i := range pickings {
		picking := &pickings[i]
		if picking.State == models.MoveStateDone || picking.State == models.MoveStateCancel {
			continue
		}
		for j := range picking.Moves {
			move := &picking.Moves[j]
			if move.State == models.MoveStateDone || move.State == models.MoveStateCancel {
				continue
			}
			move.QtyDone = move.Qty
			move.State = models.MoveStateDone
			if err := f.store.UpdateMove(ctx, move); err != nil {
				log.Printf("❌ fulfillment order %d: move %d: %v", order.ID, move.ID, err)
			}
		}
		picking.State = models.MoveStateDone
		if err := f.store.UpdatePicking(ctx, picking); err != nil {
			log.Printf("❌ fulfillment order %d: picking %d: %v", order.ID, picking.ID, err)
		}
	}
}

func (f *Fulfiller) createPickingFromLines(ctx context.Context, order *models.SaleOrder) (*models.StockPicking, error) {
	picking := &models.StockPicking{OrderID: order.ID, State: models.MoveStateConfirmed}
	if err := f.store.CreatePicking(ctx, picking); err != nil {
		return nil, err
	}
	lines, err := f.store.OrderLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		move := models.StockMove{
			PickingID: picking.ID,
			ProductID: l.ProductID,
			Qty:       l.Qty,
			State:     models.MoveStateConfirmed,
		}
		if err := f.store.CreateMove(ctx, &move); err != nil {
			return nil, err
		}
		picking.Moves = append(picking.Moves, move)
	}
	return picking, nil
}

// recordDelivered sets delivered quantities on lines of
// deliver-to-invoice products so invoicing sees them.
func (f *Fulfiller) recordDelivered(ctx context.Context, order *models.SaleOrder) {
	lines, err := f.store.OrderLines(ctx, order.ID)
	if err != nil {
		log.Printf("❌ fulfillment order %d: lines: %v", order.ID, err)
		return
	}
	for i := range lines {
		line := &lines[i]
		product, err := f.store.ProductByID(ctx, line.ProductID)
		if err != nil || product == nil || product.InvoicePolicy != "delivery" {
			continue
		}
		if line.QtyDelivered == line.Qty {
			continue
		}
		line.QtyDelivered = line.Qty
		if err := f.store.UpdateOrderLine(ctx, line); err != nil {
			log.Printf("❌ fulfillment order %d: line %d: %v", order.ID, line.ID, err)
		}
	}
}

// invoice creates and posts the customer invoice once.
func (f *Fulfiller) invoice(ctx context.Context, order *models.SaleOrder) {
	if order.State != models.OrderStateSale && order.State != models.OrderStateDone {
		return
	}
	existing, err := f.store.InvoicesForOrder(ctx, order.ID)
	if err != nil {
		log.Printf("❌ fulfillment order %d: invoices: %v", order.ID, err)
		return
	}
	for i := range existing {
		if existing[i].State == models.InvoiceStateDraft {
			existing[i].State = models.InvoiceStatePosted
			if err := f.store.UpdateInvoice(ctx, &existing[i]); err != nil {
				log.Printf("❌ fulfillment order %d: invoice post: %v", order.ID, err)
			}
		}
	}
	if len(existing) > 0 {
		return
	}

	lines, err := f.store.OrderLines(ctx, order.ID)
	if err != nil {
		log.Printf("❌ fulfillment order %d: lines: %v", order.ID, err)
		return
	}
	var amount float64
	for _, l := range lines {
		amount += l.Qty * l.PriceUnit
	}
	inv := &models.Invoice{
		OrderID: order.ID,
		State:   models.InvoiceStatePosted,
		Amount:  amount,
	}
	if err := f.store.CreateInvoice(ctx, inv); err != nil {
		log.Printf("❌ fulfillment order %d: invoice create: %v", order.ID, err)
		return
	}
	log.Printf("✅ fulfillment order %d: invoiced %.2f", order.ID, amount)
}
