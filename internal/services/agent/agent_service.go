// Package agent manages the agent and referrer directory.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gorillago3318/portal/internal/models"
	"github.com/gorillago3318/portal/internal/utils"
)

var (
	// ErrAgentNotFound is returned when the agent does not exist
	ErrAgentNotFound = errors.New("agent not found")

	// ErrPhoneTaken is returned when the phone number is already registered,
	// including by a soft-deleted account
	ErrPhoneTaken = errors.New("phone number is already registered")

	// ErrReferralCodeTaken is returned when a requested referral code is in use
	ErrReferralCodeTaken = errors.New("referral code is already in use")

	// ErrCodeGenerationFailed means no unique referral code could be generated
	ErrCodeGenerationFailed = errors.New("could not generate a unique referral code")

	// ErrNotPending is returned when approving an agent that is not pending
	ErrNotPending = errors.New("agent is not pending approval")

	// ErrReferralCodeImmutable is returned when an update tries to change a
	// referral code
	ErrReferralCodeImmutable = errors.New("referral code cannot be changed")

	// ErrParentNotFound is returned when the sponsoring agent does not exist
	ErrParentNotFound = errors.New("parent referrer not found")
)

const codeGenerationAttempts = 5

// Service manages agent records
type Service struct {
	db *gorm.DB
}

// NewService creates an agent service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RegisterInput is the payload for agent self-registration and admin creation
type RegisterInput struct {
	Name             string  `json:"name" binding:"required"`
	Phone            string  `json:"phone" binding:"required"`
	Email            *string `json:"email"`
	Location         string  `json:"location"`
	Password         string  `json:"password" binding:"required,min=8"`
	Role             string  `json:"role"`
	ReferralCode     string  `json:"referral_code"`
	ParentReferrerID *string `json:"parent_referrer_id"`
	BankName         *string `json:"bank_name"`
	AccountNumber    *string `json:"account_number"`
}

// Register creates a new agent. Self-registered accounts start Pending and
// must be approved; accounts created by an admin start Active.
func (s *Service) Register(ctx context.Context, input RegisterInput, createdByAdmin bool) (*models.Agent, error) {
	// Soft-deleted rows keep their phone and referral code reserved, so
	// uniqueness checks must bypass the delete scope.
	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.Agent{}).
		Where("phone = ?", input.Phone).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if count > 0 {
		return nil, ErrPhoneTaken
	}

	role := models.AgentRole(input.Role)
	switch role {
	case models.RoleAdmin, models.RoleAgent, models.RoleReferrer:
	default:
		role = models.RoleAgent
	}

	var parentID *uuid.UUID
	if input.ParentReferrerID != nil && *input.ParentReferrerID != "" {
		id, err := uuid.Parse(*input.ParentReferrerID)
		if err != nil {
			return nil, ErrParentNotFound
		}
		var parent models.Agent
		if err := s.db.WithContext(ctx).First(&parent, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to get parent referrer: %w", err)
		}
		parentID = &parent.ID
	}

	code, err := s.resolveReferralCode(ctx, input.ReferralCode)
	if err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	status := models.AgentStatusPending
	if createdByAdmin {
		status = models.AgentStatusActive
	}

	location := input.Location
	if location == "" {
		location = "Unknown"
	}

	agent := models.Agent{
		ID:               uuid.New(),
		Name:             input.Name,
		Phone:            input.Phone,
		Email:            input.Email,
		Location:         location,
		PasswordHash:     hash,
		Role:             role,
		Status:           status,
		ReferralCode:     code,
		ParentReferrerID: parentID,
		BankName:         input.BankName,
		AccountNumber:    input.AccountNumber,
	}

	if err := s.db.WithContext(ctx).Create(&agent).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &agent, nil
}

// resolveReferralCode validates a requested code or generates a fresh one.
// Generation is bounded; with 4 random bytes per attempt a collision streak
// means something is wrong with the directory, not bad luck.
func (s *Service) resolveReferralCode(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		taken, err := s.codeTaken(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrReferralCodeTaken
		}
		return requested, nil
	}

	for i := 0; i < codeGenerationAttempts; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		taken, err := s.codeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func (s *Service) codeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.Agent{}).
		Where("referral_code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check referral code: %w", err)
	}
	return count > 0, nil
}

// Get returns an agent by ID
func (s *Service) Get(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := s.db.WithContext(ctx).First(&agent, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}

// ListOptions filters agent listings
type ListOptions struct {
	Role   models.AgentRole
	Status models.AgentStatus
}

// List returns agents matching the filters
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.Agent, error) {
	query := s.db.WithContext(ctx).Model(&models.Agent{})
	if opts.Role != "" {
		query = query.Where("role = ?", opts.Role)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var agents []models.Agent
	if err := query.Order("created_at DESC").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// UpdateInput carries the updatable agent fields. The referral code is bound
// only to reject change attempts; codes printed on flyers and shared in chats
// must keep working.
type UpdateInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Location      *string `json:"location"`
	BankName      *string `json:"bank_name"`
	AccountNumber *string `json:"account_number"`
	Status        *string `json:"status"`
	ReferralCode  *string `json:"referral_code"`
}

// applyUpdate copies the requested changes onto the agent, refusing any
// attempt to change the referral code
func applyUpdate(agent *models.Agent, input UpdateInput) error {
	if input.ReferralCode != nil && *input.ReferralCode != agent.ReferralCode {
		return ErrReferralCodeImmutable
	}

	if input.Name != nil {
		agent.Name = *input.Name
	}
	if input.Email != nil {
		agent.Email = input.Email
	}
	if input.Location != nil {
		agent.Location = *input.Location
	}
	if input.BankName != nil {
		agent.BankName = input.BankName
	}
	if input.AccountNumber != nil {
		agent.AccountNumber = input.AccountNumber
	}
	if input.Status != nil {
		status := models.AgentStatus(*input.Status)
		switch status {
		case models.AgentStatusPending, models.AgentStatusActive,
			models.AgentStatusInactive, models.AgentStatusRejected:
			agent.Status = status
		default:
			return fmt.Errorf("invalid agent status %q", *input.Status)
		}
	}
	return nil
}

// Update modifies an agent's profile fields
func (s *Service) Update(ctx context.Context, agentID uuid.UUID, input UpdateInput) (*models.Agent, error) {
	agent, err := s.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(agent, input); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	return agent, nil
}

// Approve moves a pending agent to Active or Rejected
func (s *Service) Approve(ctx context.Context, agentID uuid.UUID, approve bool) (*models.Agent, error) {
	agent, err := s.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Status != models.AgentStatusPending {
		return nil, ErrNotPending
	}

	if approve {
		agent.Status = models.AgentStatusActive
	} else {
		agent.Status = models.AgentStatusRejected
	}

	if err := s.db.WithContext(ctx).Save(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to update agent status: %w", err)
	}
	return agent, nil
}

// Delete soft-deletes an agent. Their leads and commissions are retained.
func (s *Service) Delete(ctx context.Context, agentID uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Agent{}, "id = ?", agentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete agent: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAgentNotFound
	}
	return nil
}
