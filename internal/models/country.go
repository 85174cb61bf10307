package models

// Country mirrors the country catalogue; Code holds the ISO2 code used
// to link remote countries during bootstrap.
type Country struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"index" json:"name"`
	Code           string `gorm:"uniqueIndex;size:2" json:"code"`
	ForceManagerID int64  `gorm:"index" json:"forcemanager_id"`
}

func (Country) TableName() string { return "res_country" }

// CountryState is a federal state / province belonging to a country.
type CountryState struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"index" json:"name"`
	CountryID uint   `gorm:"index" json:"country_id"`
}

func (CountryState) TableName() string { return "res_country_state" }

// Currency is the minimal currency catalogue entry needed to resolve
// remote currency references by display name.
type Currency struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

func (Currency) TableName() string { return "res_currency" }
