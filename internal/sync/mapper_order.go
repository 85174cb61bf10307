package sync

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"gorm.io/datatypes"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// ApplyOrder copies an inbound sales order onto a local one. It
// returns false when the owning account cannot be resolved locally;
// such orders are skipped entirely rather than created partnerless.
func (m *Mapper) ApplyOrder(ctx context.Context, rec forcemanager.Record, o *models.SaleOrder) bool {
	fmID := rec.Int64("id")
	o.ForceManagerID = fmID

	account := rec.Ref("accountId")
	if account.ID == 0 {
		log.Printf("⚠️ order %d: no account reference, skipping", fmID)
		return false
	}
	partner, err := m.store.PartnerByRemoteID(ctx, account.ID, true)
	if err != nil || partner == nil {
		log.Printf("⚠️ order %d: account %d not found locally, skipping", fmID, account.ID)
		return false
	}
	o.PartnerID = partner.ID

	o.ClientOrderRef = rec.Str("reference")
	if raw, err := json.Marshal(rec); err == nil {
		o.Metadata = datatypes.JSON(raw)
	}
	o.ForceManagerStatus = rec.Ref("status").Label
	if o.ForceManagerStatus == "" {
		o.ForceManagerStatus = rec.Str("status")
	}
	if t := parseFMTime(rec.Str("dateCreated")); t != nil && o.DateOrder == nil {
		o.DateOrder = t
	}

	if cur := rec.Ref("currencyId"); cur.Label != "" {
		if c, err := m.store.CurrencyByName(ctx, cur.Label); err == nil && c != nil {
			o.CurrencyID = &c.ID
		}
	}

	rep := rec.Ref("salesRepId")
	if userID := m.resolveSalesRep(ctx, rep); userID != nil {
		o.UserID = userID
	}

	switch rec.Str("Z_Entrega_mismo_comercial") {
	case "si", "Si", "SI":
		o.SameRepDelivery = "si"
	case "no", "No", "NO":
		o.SameRepDelivery = "no"
	}
	return true
}

// MapOrderLines translates the embedded line list of an inbound order.
// Lines whose product is unknown locally are skipped with a warning;
// the rest of the order still syncs.
func (m *Mapper) MapOrderLines(ctx context.Context, rec forcemanager.Record, orderID uint) []models.SaleOrderLine {
	raw, _ := rec["lines"].([]interface{})
	out := make([]models.SaleOrderLine, 0, len(raw))
	for _, it := range raw {
		lrec, ok := it.(forcemanager.Record)
		if !ok {
			if mp, isMap := it.(map[string]interface{}); isMap {
				lrec = forcemanager.Record(mp)
			} else {
				continue
			}
		}

		productRef := lrec.Str("productId")
		if productRef == "" {
			if id := lrec.Int64("productId"); id != 0 {
				productRef = strconv.FormatInt(id, 10)
			}
		}
		product, err := m.store.ProductByRemoteID(ctx, productRef)
		if err != nil || product == nil {
			log.Printf("⚠️ order %d line: product %q not found locally, line skipped", rec.Int64("id"), productRef)
			continue
		}

		name := lrec.Str("productName")
		if name == "" {
			name = product.Name
		}
		out = append(out, models.SaleOrderLine{
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      name,
			Qty:       lrec.Float("quantity"),
			PriceUnit: lrec.Float("price"),
		})
	}
	return out
}

// OrderPayload builds the outbound shape for a sale order, lines
// included. Cancelled orders push as deleted.
func (m *Mapper) OrderPayload(ctx context.Context, o *models.SaleOrder) map[string]interface{} {
	payload := map[string]interface{}{
		"salesRepId": m.salesRepPayload(ctx, o.UserID),
		"deleted":    o.State == models.OrderStateCancel,
	}
	putNonEmpty(payload, "reference", o.ClientOrderRef)
	if o.DateOrder != nil {
		payload["dateCreated"] = o.DateOrder.UTC().Format("2006-01-02T15:04:05Z")
	}

	if p, err := m.store.PartnerByID(ctx, o.PartnerID); err == nil && p != nil && p.ForceManagerID != 0 {
		payload["accountId"] = p.ForceManagerID
	}

	lines, err := m.store.OrderLines(ctx, o.ID)
	if err == nil {
		wire := make([]map[string]interface{}, 0, len(lines))
		for _, l := range lines {
			product, err := m.store.ProductByID(ctx, l.ProductID)
			if err != nil || product == nil || !product.RemoteLinked() {
				continue
			}
			name := l.Name
			if name == "" {
				name = product.Name
			}
			wire = append(wire, map[string]interface{}{
				"productId":   product.ForceManagerID,
				"productName": name,
				"quantity":    l.Qty,
				"unitPrice":   l.PriceUnit,
			})
		}
		payload["lines"] = wire
	}
	return payload
}
