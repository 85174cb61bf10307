package models

import "time"

// ConfigParam is a process-wide key/value configuration entry. The
// ForceManager access token and the per-entity sync watermarks live
// here.
type ConfigParam struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConfigParam) TableName() string { return "config_param" }
