package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionStatus is the payout state of a commission
type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "Pending"
	CommissionStatusPaid    CommissionStatus = "Paid"
)

// Commission records the payout split created when a lead is accepted.
// When a referrer is present, referrer + agent commission always equal
// the max commission; otherwise the agent takes the whole pool.
type Commission struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	LeadID             uuid.UUID        `gorm:"type:uuid;not null;index" json:"lead_id"`
	Lead               *Lead            `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"lead,omitempty"`
	AgentID            uuid.UUID        `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent              *Agent           `gorm:"foreignKey:AgentID" json:"-"`
	ReferrerID         *uuid.UUID       `gorm:"type:uuid;index" json:"referrer_id"`
	Referrer           *Agent           `gorm:"foreignKey:ReferrerID" json:"-"`
	LoanAmount         decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"loan_amount"`
	MaxCommission      decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"max_commission"`
	ReferrerCommission decimal.Decimal  `gorm:"type:decimal(15,2);default:0" json:"referrer_commission"`
	AgentCommission    decimal.Decimal  `gorm:"type:decimal(15,2);default:0" json:"agent_commission"`
	Status             CommissionStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt          time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}
