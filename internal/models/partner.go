package models

import "time"

// Partner represents a customer company or an individual contact.
// Companies carry IsCompany=true; contacts may reference their company
// through ParentID.
type Partner struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	IsCompany bool   `gorm:"index" json:"is_company"`
	ParentID  *uint  `gorm:"index" json:"parent_id,omitempty"`
	Name      string `gorm:"index" json:"name"`
	TradeName string `json:"trade_name"`

	Street    string `json:"street"`
	Street2   string `json:"street2"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	CountryID *uint  `json:"country_id,omitempty"`
	StateID   *uint  `json:"state_id,omitempty"`

	Phone       string `json:"phone"`
	Mobile      string `json:"mobile"`
	Email       string `gorm:"index" json:"email"`
	Website     string `json:"website"`
	Vat         string `gorm:"index" json:"vat"` // Tax ID, natural key for companies
	JobPosition string `json:"job_position"`
	Comment     string `gorm:"type:text" json:"comment"`

	// Spanish equivalence surcharge fiscal regime
	EquivalenceSurcharge bool `json:"equivalence_surcharge"`

	// Assigned salesperson
	UserID *uint `gorm:"index" json:"user_id,omitempty"`

	ForceManagerID         int64  `gorm:"index" json:"forcemanager_id"`
	ForceManagerSalesRepID int64  `json:"forcemanager_salesrep_id"`
	ForceManagerCountryID  int64  `json:"forcemanager_country_id"`
	ForceManagerCountry    string `json:"forcemanager_country"`
	Synced                 bool   `gorm:"column:synced_with_forcemanager" json:"synced_with_forcemanager"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Partner) TableName() string { return "res_partner" }

// RemoteLinked reports whether the partner is already linked to a
// ForceManager record.
func (p *Partner) RemoteLinked() bool { return p.ForceManagerID != 0 }
