package models

import "time"

// ProductCategory groups products; only categories flagged
// B2BAvailable are exposed to ForceManager.
type ProductCategory struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"index" json:"name"`
	B2BAvailable   bool   `gorm:"column:b2b_available" json:"b2b_available"`
	ForceManagerID string `gorm:"index" json:"forcemanager_id"`
}

func (ProductCategory) TableName() string { return "product_category" }

// Product is a sellable product. InvoicePolicy decides whether
// invoicing follows ordered or delivered quantities.
type Product struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Name            string  `gorm:"index" json:"name"`
	DescriptionSale string  `gorm:"type:text" json:"description_sale"`
	ListPrice       float64 `json:"list_price"`
	StandardPrice   float64 `json:"standard_price"`
	QtyAvailable    float64 `json:"qty_available"`
	InvoicePolicy   string  `gorm:"default:order" json:"invoice_policy"` // order | delivery
	CategoryID      uint    `gorm:"index" json:"category_id"`

	ForceManagerID string `gorm:"index" json:"forcemanager_id"`
	Synced         bool   `gorm:"column:synced_with_forcemanager" json:"synced_with_forcemanager"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string { return "product_product" }

func (p *Product) RemoteLinked() bool { return p.ForceManagerID != "" }
