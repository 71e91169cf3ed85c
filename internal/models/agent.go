package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentRole identifies what an agent record represents
type AgentRole string

const (
	RoleAdmin    AgentRole = "Admin"
	RoleAgent    AgentRole = "Agent"
	RoleReferrer AgentRole = "Referrer"
)

// AgentStatus is the lifecycle state of an agent account
type AgentStatus string

const (
	AgentStatusPending  AgentStatus = "Pending"
	AgentStatusActive   AgentStatus = "Active"
	AgentStatusInactive AgentStatus = "Inactive"
	AgentStatusRejected AgentStatus = "Rejected"
)

// Agent represents an admin, working agent or referrer in the directory
type Agent struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name                 string         `gorm:"type:varchar(100);not null" json:"name"`
	Phone                string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Email                *string        `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Location             string         `gorm:"type:varchar(100);default:'Unknown'" json:"location"`
	PasswordHash         string         `gorm:"type:varchar(255);not null" json:"-"`
	Role                 AgentRole      `gorm:"type:varchar(20);not null;default:'Agent';index" json:"role"`
	Status               AgentStatus    `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	ReferralCode         string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"referral_code"`
	ParentReferrerID     *uuid.UUID     `gorm:"type:uuid" json:"parent_referrer_id"`
	ParentReferrer       *Agent         `gorm:"foreignKey:ParentReferrerID" json:"-"`
	BankName             *string        `gorm:"type:varchar(100)" json:"bank_name"`
	AccountNumber        *string        `gorm:"type:varchar(30)" json:"account_number"`
	ResetPasswordToken   *string        `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	ResetPasswordExpires *time.Time     `json:"-"`
	CreatedAt            time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether the agent may log in or be assigned leads
func (a *Agent) IsActive() bool {
	return a.Status == AgentStatusActive
}
