package models

// Warehouse is a fulfillment location. Same-rep deliveries pick the
// warehouse whose name matches the salesperson.
type Warehouse struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index" json:"name"`
}

func (Warehouse) TableName() string { return "stock_warehouse" }

// Stock picking / move states.
const (
	MoveStateConfirmed = "confirmed"
	MoveStateWaiting   = "waiting"
	MoveStateAssigned  = "assigned"
	MoveStateDone      = "done"
	MoveStateCancel    = "cancel"
)

// StockPicking is the delivery operation generated when an order is
// confirmed.
type StockPicking struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"index" json:"order_id"`
	State   string `gorm:"default:confirmed;index" json:"state"`

	Moves []StockMove `gorm:"foreignKey:PickingID" json:"moves,omitempty"`
}

func (StockPicking) TableName() string { return "stock_picking" }

// StockMove is one product movement inside a picking. Qty is the
// planned quantity, QtyDone what was actually moved.
type StockMove struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	PickingID uint    `gorm:"index" json:"picking_id"`
	ProductID uint    `gorm:"index" json:"product_id"`
	Qty       float64 `gorm:"column:product_uom_qty" json:"product_uom_qty"`
	QtyDone   float64 `json:"qty_done"`
	State     string  `gorm:"default:confirmed" json:"state"`
}

func (StockMove) TableName() string { return "stock_move" }

// Invoice states.
const (
	InvoiceStateDraft  = "draft"
	InvoiceStatePosted = "posted"
)

// Invoice is the customer invoice generated by the auto-fulfillment
// workflow.
type Invoice struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	OrderID uint    `gorm:"index" json:"order_id"`
	State   string  `gorm:"default:draft" json:"state"`
	Amount  float64 `json:"amount"`
}

func (Invoice) TableName() string { return "account_move" }
