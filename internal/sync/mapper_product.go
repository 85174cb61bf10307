package sync

import (
	"context"
	"strconv"

	"github.com/ibertrade/fmbridge/internal/forcemanager"
	"github.com/ibertrade/fmbridge/internal/models"
)

// ApplyProduct copies an inbound product onto an already linked local
// product. Pull never creates products; the catalogue is owned
// locally. An unresolvable remote category keeps the current one.
func (m *Mapper) ApplyProduct(ctx context.Context, rec forcemanager.Record, p *models.Product) {
	if name := rec.Str("model"); name != "" {
		p.Name = name
	}
	if desc := rec.Str("description"); desc != "" {
		p.DescriptionSale = desc
	}
	if price := rec.Float("price"); price != 0 {
		p.ListPrice = price
	}
	if cost := rec.Float("cost"); cost != 0 {
		p.StandardPrice = cost
	}

	if catRef := rec.Ref("categoryId"); catRef.Valid {
		remoteID := catRef.Label
		if remoteID == "" && catRef.ID != 0 {
			remoteID = strconv.FormatInt(catRef.ID, 10)
		}
		if remoteID != "" {
			if cat, err := m.store.CategoryByRemoteID(ctx, remoteID); err == nil && cat != nil {
				p.CategoryID = cat.ID
			}
		}
	}
}

// ProductPayload builds the outbound shape for a product. The extId
// carries the local id so remote records stay traceable.
func (m *Mapper) ProductPayload(ctx context.Context, p *models.Product) map[string]interface{} {
	payload := map[string]interface{}{
		"model":           p.Name,
		"price":           p.ListPrice,
		"cost":            p.StandardPrice,
		"stock":           p.QtyAvailable,
		"extId":           strconv.FormatUint(uint64(p.ID), 10),
		"maxDiscount":     0,
		"notAvailable":    false,
		"permissionLevel": 2,
	}
	putNonEmpty(payload, "description", p.DescriptionSale)

	cat := p.Category
	if cat == nil && p.CategoryID != 0 {
		cat, _ = m.store.CategoryByID(ctx, p.CategoryID)
	}
	if cat != nil && cat.ForceManagerID != "" {
		if id, err := strconv.ParseInt(cat.ForceManagerID, 10, 64); err == nil {
			payload["categoryId"] = id
		} else {
			payload["categoryId"] = cat.ForceManagerID
		}
	}
	return payload
}

// CategoryPayload builds the outbound shape for a product category.
// The description is replicated across the remote's language slots.
func (m *Mapper) CategoryPayload(c *models.ProductCategory) map[string]interface{} {
	return map[string]interface{}{
		"cLevel2":       true,
		"descriptionES": c.Name,
		"descriptionEN": c.Name,
		"description":   c.Name,
	}
}
