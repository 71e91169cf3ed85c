// Package referral resolves an inbound referral code to the agent who will
// work the lead and the referrer credited with originating it.
package referral

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/gorillago3318/portal/internal/models"
)

// ErrDirectoryUnavailable wraps store faults during resolution. Lead creation
// must fail (retryable) rather than silently create an unassigned lead.
var ErrDirectoryUnavailable = errors.New("agent directory unavailable")

// Directory looks up agents by referral code. Soft-deleted agents are
// excluded. A missing code returns (nil, nil), not an error.
type Directory interface {
	FindByReferralCode(ctx context.Context, code string) (*models.Agent, error)
}

// Assignment is the outcome of resolution. Both IDs are nil when no agent
// could be attributed; leads may exist unassigned.
type Assignment struct {
	AssignedAgentID *uuid.UUID
	ReferrerID      *uuid.UUID
}

// Resolver maps referral codes to lead assignments using a configured
// default ("house") referral code as the fallback attribution.
type Resolver struct {
	dir         Directory
	defaultCode string
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(dir Directory, defaultCode string) *Resolver {
	return &Resolver{dir: dir, defaultCode: defaultCode}
}

// Resolve determines the assigned agent and referrer for a new lead.
//
// No code, or the default code, attributes the lead to the house agent.
// A referrer's code assigns the lead to the referrer's sponsoring agent,
// falling back to the referrer itself when no sponsor is set. An agent's or
// admin's own code makes them both worker and credited referrer. An unknown
// code degrades to unassigned so the lead is never lost.
func (r *Resolver) Resolve(ctx context.Context, code string) (Assignment, error) {
	if code == "" || code == r.defaultCode {
		return r.resolveDefault(ctx)
	}

	agent, err := r.dir.FindByReferralCode(ctx, code)
	if err != nil {
		return Assignment{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if agent == nil {
		log.Printf("[WARN] no agent found for referral code %q, creating lead unassigned", code)
		return Assignment{}, nil
	}
	if agent.ReferralCode == r.defaultCode {
		return r.resolveDefault(ctx)
	}

	if agent.Role == models.RoleReferrer {
		assigned := agent.ID
		if agent.ParentReferrerID != nil {
			assigned = *agent.ParentReferrerID
		}
		referrer := agent.ID
		return Assignment{AssignedAgentID: &assigned, ReferrerID: &referrer}, nil
	}

	// Agent or Admin: the matched party both works and gets credit.
	id := agent.ID
	return Assignment{AssignedAgentID: &id, ReferrerID: &id}, nil
}

// resolveDefault attributes the lead to the house agent behind the default
// referral code, or leaves it unassigned when none is configured.
func (r *Resolver) resolveDefault(ctx context.Context) (Assignment, error) {
	if r.defaultCode == "" {
		return Assignment{}, nil
	}
	house, err := r.dir.FindByReferralCode(ctx, r.defaultCode)
	if err != nil {
		return Assignment{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if house == nil {
		return Assignment{}, nil
	}
	id := house.ID
	return Assignment{AssignedAgentID: &id, ReferrerID: &id}, nil
}
