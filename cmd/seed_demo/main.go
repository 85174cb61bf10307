package main

import (
	"fmt"
	"log"
	"time"

	"github.com/ibertrade/fmbridge/internal/config"
	"github.com/ibertrade/fmbridge/internal/database"
	"github.com/ibertrade/fmbridge/internal/models"
)

func main() {
	fmt.Println("🌱 fmbridge Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.ConfigParam{},
		&models.User{},
		&models.Country{},
		&models.CountryState{},
		&models.Currency{},
		&models.Partner{},
		&models.CrmStage{},
		&models.Lead{},
		&models.ProductCategory{},
		&models.Product{},
		&models.SaleOrder{},
		&models.SaleOrderLine{},
		&models.Warehouse{},
		&models.StockPicking{},
		&models.StockMove{},
		&models.Invoice{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	var partnerCount int64
	db.Model(&models.Partner{}).Count(&partnerCount)
	if partnerCount > 0 {
		fmt.Printf("⚠️  Database already has %d partners. Clear it first? (y/N): ", partnerCount)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("❌ Aborted. Database not modified.")
			return
		}

		fmt.Println("🗑️  Clearing existing data...")
		db.Exec("TRUNCATE TABLE account_move CASCADE")
		db.Exec("TRUNCATE TABLE stock_move CASCADE")
		db.Exec("TRUNCATE TABLE stock_picking CASCADE")
		db.Exec("TRUNCATE TABLE sale_order_line CASCADE")
		db.Exec("TRUNCATE TABLE sale_order CASCADE")
		db.Exec("TRUNCATE TABLE crm_lead CASCADE")
		db.Exec("TRUNCATE TABLE res_partner CASCADE")
		db.Exec("TRUNCATE TABLE product_product CASCADE")
		db.Exec("TRUNCATE TABLE product_category CASCADE")
		fmt.Println("✅ Data cleared")
	}

	fmt.Println("📦 Creating demo data...")

	// Reference data
	spain := models.Country{Name: "Spain", Code: "ES"}
	db.FirstOrCreate(&spain, models.Country{Code: "ES"})

	eur := models.Currency{Name: "EUR"}
	db.FirstOrCreate(&eur, models.Currency{Name: "EUR"})

	stages := []string{"New", "Qualified", "Proposition", "Won"}
	for _, name := range stages {
		db.FirstOrCreate(&models.CrmStage{Name: name}, models.CrmStage{Name: name})
	}

	// Sales rep with a matching warehouse for same-rep deliveries
	rep := models.User{Name: "Joan Bonell", Login: "joan@example.com", ForceManagerID: 95}
	db.FirstOrCreate(&rep, models.User{Login: "joan@example.com"})
	db.FirstOrCreate(&models.Warehouse{Name: rep.Name}, models.Warehouse{Name: rep.Name})

	// Catalogue: one exported category, one internal
	b2b := models.ProductCategory{Name: "Wholesale", B2BAvailable: true}
	db.FirstOrCreate(&b2b, models.ProductCategory{Name: "Wholesale"})
	internal := models.ProductCategory{Name: "Internal"}
	db.FirstOrCreate(&internal, models.ProductCategory{Name: "Internal"})

	products := []models.Product{
		{Name: "Olive Oil 5L", ListPrice: 42.5, StandardPrice: 28, QtyAvailable: 120, CategoryID: b2b.ID, InvoicePolicy: "delivery"},
		{Name: "Rioja Crianza", ListPrice: 9.9, StandardPrice: 5.4, QtyAvailable: 600, CategoryID: b2b.ID, InvoicePolicy: "order"},
		{Name: "Office Chair", ListPrice: 120, StandardPrice: 80, QtyAvailable: 4, CategoryID: internal.ID, InvoicePolicy: "order"},
	}
	for i := range products {
		db.Create(&products[i])
	}
	fmt.Printf("✅ %d products created\n", len(products))

	// One customer with a contact and an open order
	company := models.Partner{
		IsCompany: true,
		Name:      "Distribuciones Ebro SL",
		Vat:       "B12345678",
		City:      "Zaragoza",
		CountryID: &spain.ID,
		UserID:    &rep.ID,
	}
	db.Create(&company)
	db.Create(&models.Partner{
		Name:     "Marta Gil",
		ParentID: &company.ID,
		Email:    "marta@ebro.example.com",
		UserID:   &rep.ID,
	})

	now := time.Now().UTC()
	order := models.SaleOrder{
		PartnerID:       company.ID,
		UserID:          &rep.ID,
		CurrencyID:      &eur.ID,
		State:           models.OrderStateDraft,
		DateOrder:       &now,
		SameRepDelivery: "si",
	}
	db.Create(&order)
	db.Create(&models.SaleOrderLine{
		OrderID:   order.ID,
		ProductID: products[0].ID,
		Name:      products[0].Name,
		Qty:       10,
		PriceUnit: products[0].ListPrice,
	})

	fmt.Println("✅ Demo data ready")
}
