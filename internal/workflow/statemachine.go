// Package workflow governs lead status transitions: which moves are legal,
// who may request them, and what side effects an accepted lead produces.
package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gorillago3318/portal/internal/commission"
	"github.com/gorillago3318/portal/internal/models"
)

var (
	// ErrForbidden means the requester is not allowed to act on this lead at
	// all, as opposed to the transition itself being illegal.
	ErrForbidden = errors.New("requester may not modify this lead")

	// ErrMissingLoanAmount is returned when a lead is accepted without a
	// loan amount to compute commissions from.
	ErrMissingLoanAmount = errors.New("loan amount is required to accept a lead")

	// ErrUnknownStatus is returned for a status outside the canonical set.
	ErrUnknownStatus = errors.New("unknown lead status")

	// ErrUnassignedLead is returned when an acceptance has no assigned agent
	// to credit the commission to.
	ErrUnassignedLead = errors.New("lead has no assigned agent to receive the commission")
)

// InvalidTransitionError names the rejected (from, to) pair so callers can
// report exactly which move was refused.
type InvalidTransitionError struct {
	From models.LeadStatus
	To   models.LeadStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// allowedNext is the transition graph agents are held to. Accepted and
// Rejected are terminal; KIV leads can be pulled back into the pipeline.
var allowedNext = map[models.LeadStatus][]models.LeadStatus{
	models.LeadStatusNew: {
		models.LeadStatusContacted,
		models.LeadStatusPreparingDocuments,
		models.LeadStatusSubmitted,
	},
	models.LeadStatusContacted: {
		models.LeadStatusPreparingDocuments,
		models.LeadStatusSubmitted,
	},
	models.LeadStatusPreparingDocuments: {
		models.LeadStatusSubmitted,
	},
	models.LeadStatusSubmitted: {
		models.LeadStatusApproved,
		models.LeadStatusKIV,
		models.LeadStatusRejected,
	},
	models.LeadStatusApproved: {
		models.LeadStatusAccepted,
		models.LeadStatusRejected,
	},
	models.LeadStatusKIV: {
		models.LeadStatusPreparingDocuments,
		models.LeadStatusSubmitted,
	},
	models.LeadStatusAccepted: {},
	models.LeadStatusRejected: {},
}

// AllowedNext returns the transitions an agent may make from the given status.
func AllowedNext(from models.LeadStatus) []models.LeadStatus {
	return allowedNext[from]
}

// Authorize decides whether the requester may move a lead from current to
// next. Admins may make any transition, including repairing misrouted leads
// out of terminal states. Agents may only work their own leads and must
// follow the transition graph.
func Authorize(current, next models.LeadStatus, role models.AgentRole, assignedAgentID *uuid.UUID, requesterID uuid.UUID) error {
	if !models.ValidLeadStatus(next) {
		return ErrUnknownStatus
	}

	switch role {
	case models.RoleAdmin:
		return nil
	case models.RoleAgent:
		if assignedAgentID == nil || *assignedAgentID != requesterID {
			return ErrForbidden
		}
		for _, s := range allowedNext[current] {
			if s == next {
				return nil
			}
		}
		return &InvalidTransitionError{From: current, To: next}
	default:
		return ErrForbidden
	}
}

// CanTransition is the boolean form of Authorize.
func CanTransition(current, next models.LeadStatus, role models.AgentRole, assignedAgentID *uuid.UUID, requesterID uuid.UUID) bool {
	return Authorize(current, next, role, assignedAgentID, requesterID) == nil
}

// TransitionRequest carries one requested status change.
type TransitionRequest struct {
	NewStatus   models.LeadStatus
	Role        models.AgentRole
	RequesterID uuid.UUID
	LoanAmount  *decimal.Decimal
}

// Apply validates the transition and mutates the lead's status. When the lead
// moves into Accepted it computes the commission split and returns the
// Commission record the caller must persist in the same transaction as the
// status change. A nil commission means no side effect is required.
func Apply(lead *models.Lead, req TransitionRequest) (*models.Commission, error) {
	if err := Authorize(lead.Status, req.NewStatus, req.Role, lead.AssignedAgentID, req.RequesterID); err != nil {
		return nil, err
	}

	if req.NewStatus != models.LeadStatusAccepted {
		lead.Status = req.NewStatus
		return nil, nil
	}

	if req.LoanAmount == nil || req.LoanAmount.IsZero() {
		return nil, ErrMissingLoanAmount
	}
	if lead.AssignedAgentID == nil {
		return nil, ErrUnassignedLead
	}
	split, err := commission.Calculate(*req.LoanAmount, lead.ReferrerID != nil)
	if err != nil {
		return nil, err
	}

	lead.Status = req.NewStatus
	lead.LoanAmount = *req.LoanAmount
	return &models.Commission{
		LeadID:             lead.ID,
		AgentID:            *lead.AssignedAgentID,
		ReferrerID:         lead.ReferrerID,
		LoanAmount:         *req.LoanAmount,
		MaxCommission:      split.MaxCommission,
		ReferrerCommission: split.ReferrerCommission,
		AgentCommission:    split.AgentCommission,
		Status:             models.CommissionStatusPending,
	}, nil
}
