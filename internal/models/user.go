package models

import "time"

// User is a salesperson account. Users referenced by remote records
// that cannot be resolved locally are auto-created as stubs so that
// ownership information is never dropped.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"index" json:"name"`
	Login          string `gorm:"uniqueIndex" json:"login"`
	ForceManagerID int64  `gorm:"index" json:"forcemanager_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "res_users" }
