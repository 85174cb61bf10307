package models

import "time"

// CrmStage is a pipeline stage; remote opportunity statuses are
// matched against stage names.
type CrmStage struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index" json:"name"`
}

func (CrmStage) TableName() string { return "crm_stage" }

// Lead is a sales opportunity. Probability is a percentage in [0,100];
// the remote side uses a [0,10] scale on pull and [0,1] on push.
type Lead struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"index" json:"name"`
	Description     string     `gorm:"type:text" json:"description"`
	Probability     float64    `json:"probability"`
	ExpectedRevenue float64    `json:"expected_revenue"`
	DateDeadline    *time.Time `json:"date_deadline,omitempty"`
	PartnerID       *uint      `gorm:"index" json:"partner_id,omitempty"`
	UserID          *uint      `json:"user_id,omitempty"`
	StageID         *uint      `json:"stage_id,omitempty"`

	ForceManagerID         int64 `gorm:"index" json:"forcemanager_id"`
	ForceManagerSalesRepID int64 `json:"forcemanager_salesrep_id"`
	Synced                 bool  `gorm:"column:synced_with_forcemanager" json:"synced_with_forcemanager"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lead) TableName() string { return "crm_lead" }

func (l *Lead) RemoteLinked() bool { return l.ForceManagerID != 0 }
