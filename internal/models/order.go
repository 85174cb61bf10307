package models

import (
	"time"

	"gorm.io/datatypes"
)

// Sale order states. Once an order reaches sale/done/cancel its lines
// are immutable to the sync engine.
const (
	OrderStateDraft  = "draft"
	OrderStateSale   = "sale"
	OrderStateDone   = "done"
	OrderStateCancel = "cancel"
)

// SaleOrder is a customer order. SameRepDelivery mirrors the remote
// "delivered by the sales rep" flag ("si"/"no"/empty) that drives the
// auto-fulfillment workflow.
type SaleOrder struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PartnerID      uint           `gorm:"index" json:"partner_id"`
	UserID         *uint          `json:"user_id,omitempty"`
	CurrencyID     *uint          `json:"currency_id,omitempty"`
	WarehouseID    *uint          `json:"warehouse_id,omitempty"`
	State          string         `gorm:"default:draft;index" json:"state"`
	DateOrder      *time.Time     `json:"date_order,omitempty"`
	ClientOrderRef string         `json:"client_order_ref"`
	SameRepDelivery string        `gorm:"column:same_rep_delivery" json:"same_rep_delivery"` // si | no | ""
	Metadata       datatypes.JSON `json:"metadata"`

	ForceManagerID     int64  `gorm:"index" json:"forcemanager_id"`
	ForceManagerStatus string `json:"forcemanager_status"`
	Synced             bool   `gorm:"column:synced_with_forcemanager" json:"synced_with_forcemanager"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lines []SaleOrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

func (SaleOrder) TableName() string { return "sale_order" }

func (o *SaleOrder) RemoteLinked() bool { return o.ForceManagerID != 0 }

// Terminal reports whether the order reached a state that forbids any
// further line mutation by the sync engine.
func (o *SaleOrder) Terminal() bool {
	return o.State == OrderStateSale || o.State == OrderStateDone || o.State == OrderStateCancel
}

// SaleOrderLine is one order position. Lines exist only while the
// parent order is pre-confirmation; afterwards they are frozen.
type SaleOrderLine struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderID      uint    `gorm:"index" json:"order_id"`
	ProductID    uint    `gorm:"index" json:"product_id"`
	Name         string  `json:"name"`
	Qty          float64 `gorm:"column:product_uom_qty" json:"product_uom_qty"`
	PriceUnit    float64 `json:"price_unit"`
	QtyDelivered float64 `json:"qty_delivered"`
}

func (SaleOrderLine) TableName() string { return "sale_order_line" }
