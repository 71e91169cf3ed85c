// Package lead implements lead intake, listing and workflow updates.
package lead

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gorillago3318/portal/internal/jobs"
	"github.com/gorillago3318/portal/internal/models"
	"github.com/gorillago3318/portal/internal/queue"
	"github.com/gorillago3318/portal/internal/referral"
	"github.com/gorillago3318/portal/internal/workflow"
)

var (
	// ErrLeadNotFound is returned when the lead does not exist
	ErrLeadNotFound = errors.New("lead not found")

	// ErrAgentNotFound is returned when a reassignment target does not exist
	ErrAgentNotFound = errors.New("agent not found")

	// ErrMissingContact is returned when intake lacks a name or phone
	ErrMissingContact = errors.New("name and phone are required")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service handles lead intake and lifecycle operations
type Service struct {
	db       *gorm.DB
	resolver *referral.Resolver
	queue    queue.QueueInterface
}

// NewService creates a lead service
func NewService(db *gorm.DB, resolver *referral.Resolver, q queue.QueueInterface) *Service {
	return &Service{db: db, resolver: resolver, queue: q}
}

// CreateLeadInput is the payload accepted from the intake endpoint
type CreateLeadInput struct {
	Name                string          `json:"name" binding:"required"`
	Phone               string          `json:"phone" binding:"required"`
	LoanAmount          decimal.Decimal `json:"loan_amount"`
	EstimatedSavings    decimal.Decimal `json:"estimated_savings"`
	MonthlySavings      decimal.Decimal `json:"monthly_savings"`
	YearlySavings       decimal.Decimal `json:"yearly_savings"`
	NewMonthlyRepayment decimal.Decimal `json:"new_monthly_repayment"`
	BankName            string          `json:"bank_name"`
	ReferralCode        string          `json:"referral_code"`
	Source              string          `json:"source"`
}

// Create resolves the referral attribution, allocates a unique display ID and
// persists the lead. The agent notification is enqueued after the transaction
// commits so a queue hiccup never rolls back an accepted lead.
func (s *Service) Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	if input.Name == "" || input.Phone == "" {
		return nil, ErrMissingContact
	}

	assignment, err := s.resolver.Resolve(ctx, input.ReferralCode)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = "Direct"
	}

	lead := models.Lead{
		ID:                  uuid.New(),
		Name:                input.Name,
		Phone:               input.Phone,
		LoanAmount:          input.LoanAmount,
		EstimatedSavings:    input.EstimatedSavings,
		MonthlySavings:      input.MonthlySavings,
		YearlySavings:       input.YearlySavings,
		NewMonthlyRepayment: input.NewMonthlyRepayment,
		BankName:            input.BankName,
		Status:              models.LeadStatusNew,
		AssignedAgentID:     assignment.AssignedAgentID,
		ReferrerID:          assignment.ReferrerID,
		ReferrerCode:        input.ReferralCode,
		Source:              source,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequenceValue(tx)
		if err != nil {
			return err
		}
		lead.UniqueID = fmt.Sprintf("%d.0.0.0", seq)
		return tx.Create(&lead).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	if lead.AssignedAgentID != nil {
		if err := jobs.EnqueueLeadNotification(s.queue, lead.ID); err != nil {
			log.Printf("Failed to enqueue notification for lead %s: %v", lead.UniqueID, err)
		}
	}

	return &lead, nil
}

// nextSequenceValue advances the single-row counter and returns the new
// value. The upsert takes a row lock, so concurrent creates serialize here
// and every lead gets a distinct number.
func nextSequenceValue(tx *gorm.DB) (int64, error) {
	var value int64
	err := tx.Raw(`
		INSERT INTO lead_sequences (id, last_value, updated_at)
		VALUES (1, 1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_value = lead_sequences.last_value + 1, updated_at = NOW()
		RETURNING last_value
	`).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance lead sequence: %w", err)
	}
	return value, nil
}

// ListOptions filters and paginates lead listings
type ListOptions struct {
	Status   models.LeadStatus
	AgentID  *uuid.UUID
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// List returns leads visible to the requester. Admins see everything; agents
// only see leads assigned to them regardless of the agent filter.
func (s *Service) List(ctx context.Context, role models.AgentRole, requesterID uuid.UUID, opts ListOptions) ([]models.Lead, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Lead{})

	if role == models.RoleAdmin {
		if opts.AgentID != nil {
			query = query.Where("assigned_agent_id = ?", *opts.AgentID)
		}
	} else {
		query = query.Where("assigned_agent_id = ?", requesterID)
	}

	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.From != nil {
		query = query.Where("created_at >= ?", *opts.From)
	}
	if opts.To != nil {
		query = query.Where("created_at <= ?", *opts.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var leads []models.Lead
	err := query.Preload("AssignedAgent").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leads).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	return leads, total, nil
}

// Get returns a lead by ID, scoped to the requester's visibility
func (s *Service) Get(ctx context.Context, role models.AgentRole, requesterID uuid.UUID, leadID uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.WithContext(ctx).Preload("AssignedAgent").First(&lead, "id = ?", leadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if role != models.RoleAdmin {
		if lead.AssignedAgentID == nil || *lead.AssignedAgentID != requesterID {
			return nil, workflow.ErrForbidden
		}
	}

	return &lead, nil
}

// UpdateStatusInput carries a requested status change
type UpdateStatusInput struct {
	NewStatus   models.LeadStatus
	LoanAmount  *decimal.Decimal
	Role        models.AgentRole
	RequesterID uuid.UUID
}

// UpdateStatus applies a workflow transition. The lead row is locked for the
// duration so the status change and any commission it produces land in one
// transaction. Accepting a lead that already has a commission does not create
// a second one.
func (s *Service) UpdateStatus(ctx context.Context, leadID uuid.UUID, input UpdateStatusInput) (*models.Lead, error) {
	var lead models.Lead

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lead, "id = ?", leadID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeadNotFound
			}
			return fmt.Errorf("failed to get lead: %w", err)
		}

		comm, err := workflow.Apply(&lead, workflow.TransitionRequest{
			NewStatus:   input.NewStatus,
			Role:        input.Role,
			RequesterID: input.RequesterID,
			LoanAmount:  input.LoanAmount,
		})
		if err != nil {
			return err
		}

		if err := tx.Save(&lead).Error; err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}

		if comm != nil {
			var existing models.Commission
			result := tx.Where("lead_id = ?", lead.ID).First(&existing)
			if result.Error == nil {
				log.Printf("Commission already exists for lead %s, skipping", lead.UniqueID)
				return nil
			}
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check existing commission: %w", result.Error)
			}
			comm.ID = uuid.New()
			if err := tx.Create(comm).Error; err != nil {
				return fmt.Errorf("failed to create commission: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &lead, nil
}

// Reassign moves a lead to a different agent. Callers enforce that only
// admins reach this.
func (s *Service) Reassign(ctx context.Context, leadID, agentID uuid.UUID) (*models.Lead, error) {
	var agent models.Agent
	if err := s.db.WithContext(ctx).First(&agent, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, "id = ?", leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	lead.AssignedAgentID = &agent.ID
	if err := s.db.WithContext(ctx).Save(&lead).Error; err != nil {
		return nil, fmt.Errorf("failed to reassign lead: %w", err)
	}

	if err := jobs.EnqueueLeadNotification(s.queue, lead.ID); err != nil {
		log.Printf("Failed to enqueue notification for lead %s: %v", lead.UniqueID, err)
	}

	return &lead, nil
}
