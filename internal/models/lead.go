package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeadStatus is a stage in the lead workflow
type LeadStatus string

const (
	LeadStatusNew                LeadStatus = "New"
	LeadStatusContacted          LeadStatus = "Contacted"
	LeadStatusPreparingDocuments LeadStatus = "Preparing Documents"
	LeadStatusSubmitted          LeadStatus = "Submitted"
	LeadStatusApproved           LeadStatus = "Approved"
	LeadStatusKIV                LeadStatus = "KIV"
	LeadStatusRejected           LeadStatus = "Rejected"
	LeadStatusAccepted           LeadStatus = "Accepted"
)

// AllLeadStatuses lists every valid lead status
var AllLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusPreparingDocuments,
	LeadStatusSubmitted,
	LeadStatusApproved,
	LeadStatusKIV,
	LeadStatusRejected,
	LeadStatusAccepted,
}

// ValidLeadStatus reports whether s is one of the canonical status labels
func ValidLeadStatus(s LeadStatus) bool {
	for _, known := range AllLeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lead represents an inbound prospective-customer record
type Lead struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UniqueID            string          `gorm:"type:varchar(30);uniqueIndex" json:"unique_id"`
	Name                string          `gorm:"type:varchar(100);not null" json:"name"`
	Phone               string          `gorm:"type:varchar(20);not null" json:"phone"`
	LoanAmount          decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"loan_amount"`
	EstimatedSavings    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"estimated_savings"`
	MonthlySavings      decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"monthly_savings"`
	YearlySavings       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"yearly_savings"`
	NewMonthlyRepayment decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"new_monthly_repayment"`
	BankName            string          `gorm:"type:varchar(100)" json:"bank_name"`
	Status              LeadStatus      `gorm:"type:varchar(30);not null;default:'New';index" json:"status"`
	AssignedAgentID     *uuid.UUID      `gorm:"type:uuid;index" json:"assigned_agent_id"`
	AssignedAgent       *Agent          `gorm:"foreignKey:AssignedAgentID" json:"agent,omitempty"`
	ReferrerID          *uuid.UUID      `gorm:"type:uuid" json:"referrer_id"`
	Referrer            *Agent          `gorm:"foreignKey:ReferrerID" json:"-"`
	ReferrerCode        string          `gorm:"type:varchar(50)" json:"referrer_code"`
	Source              string          `gorm:"type:varchar(30);default:'Direct'" json:"source"`
	CreatedAt           time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt           gorm.DeletedAt  `gorm:"index" json:"-"`
}

// LeadSequence is the single-row counter backing unique display IDs.
// Advancing it inside the lead-creation transaction serializes allocation
// so concurrent creates cannot collide.
type LeadSequence struct {
	ID        int       `gorm:"primary_key" json:"id"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}
