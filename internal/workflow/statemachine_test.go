package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorillago3318/portal/internal/commission"
	"github.com/gorillago3318/portal/internal/models"
)

func newAssignedLead(agentID uuid.UUID, status models.LeadStatus) *models.Lead {
	return &models.Lead{
		ID:              uuid.New(),
		UniqueID:        "7.0.0.0",
		Name:            "Tan Wei Ming",
		Phone:           "60123456789",
		Status:          status,
		AssignedAgentID: &agentID,
	}
}

func TestAgentFollowsTransitionGraph(t *testing.T) {
	agentID := uuid.New()

	legal := []struct {
		from, to models.LeadStatus
	}{
		{models.LeadStatusNew, models.LeadStatusContacted},
		{models.LeadStatusNew, models.LeadStatusSubmitted},
		{models.LeadStatusContacted, models.LeadStatusPreparingDocuments},
		{models.LeadStatusPreparingDocuments, models.LeadStatusSubmitted},
		{models.LeadStatusSubmitted, models.LeadStatusApproved},
		{models.LeadStatusSubmitted, models.LeadStatusKIV},
		{models.LeadStatusSubmitted, models.LeadStatusRejected},
		{models.LeadStatusKIV, models.LeadStatusSubmitted},
		{models.LeadStatusApproved, models.LeadStatusRejected},
	}
	for _, tc := range legal {
		err := Authorize(tc.from, tc.to, models.RoleAgent, &agentID, agentID)
		assert.NoError(t, err, "%s -> %s should be allowed", tc.from, tc.to)
	}
}

func TestAgentCannotSkipOrReverse(t *testing.T) {
	agentID := uuid.New()

	illegal := []struct {
		from, to models.LeadStatus
	}{
		{models.LeadStatusNew, models.LeadStatusApproved},
		{models.LeadStatusNew, models.LeadStatusAccepted},
		{models.LeadStatusContacted, models.LeadStatusNew},
		{models.LeadStatusSubmitted, models.LeadStatusAccepted},
		{models.LeadStatusAccepted, models.LeadStatusRejected},
		{models.LeadStatusRejected, models.LeadStatusSubmitted},
		{models.LeadStatusKIV, models.LeadStatusApproved},
	}
	for _, tc := range illegal {
		err := Authorize(tc.from, tc.to, models.RoleAgent, &agentID, agentID)
		var invalid *InvalidTransitionError
		assert.ErrorAs(t, err, &invalid, "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoAgentMoves(t *testing.T) {
	assert.Empty(t, AllowedNext(models.LeadStatusAccepted))
	assert.Empty(t, AllowedNext(models.LeadStatusRejected))
}

func TestAdminMayMakeAnyTransition(t *testing.T) {
	adminID := uuid.New()

	// Including repairs out of terminal states.
	pairs := []struct {
		from, to models.LeadStatus
	}{
		{models.LeadStatusRejected, models.LeadStatusApproved},
		{models.LeadStatusAccepted, models.LeadStatusSubmitted},
		{models.LeadStatusNew, models.LeadStatusApproved},
	}
	for _, tc := range pairs {
		err := Authorize(tc.from, tc.to, models.RoleAdmin, nil, adminID)
		assert.NoError(t, err, "admin %s -> %s", tc.from, tc.to)
	}
}

func TestUnknownStatusRejectedForEveryone(t *testing.T) {
	adminID := uuid.New()
	err := Authorize(models.LeadStatusNew, "Archived", models.RoleAdmin, nil, adminID)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestAgentCannotTouchAnotherAgentsLead(t *testing.T) {
	owner := uuid.New()
	intruder := uuid.New()

	err := Authorize(models.LeadStatusNew, models.LeadStatusContacted, models.RoleAgent, &owner, intruder)
	assert.ErrorIs(t, err, ErrForbidden)

	err = Authorize(models.LeadStatusNew, models.LeadStatusContacted, models.RoleAgent, nil, intruder)
	assert.ErrorIs(t, err, ErrForbidden, "unassigned leads are not workable by agents")
}

func TestReferrerCannotTransitionLeads(t *testing.T) {
	referrerID := uuid.New()
	err := Authorize(models.LeadStatusNew, models.LeadStatusContacted, models.RoleReferrer, &referrerID, referrerID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApplySetsStatusWithoutCommission(t *testing.T) {
	agentID := uuid.New()
	lead := newAssignedLead(agentID, models.LeadStatusNew)

	comm, err := Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusContacted,
		Role:        models.RoleAgent,
		RequesterID: agentID,
	})
	require.NoError(t, err)
	assert.Nil(t, comm)
	assert.Equal(t, models.LeadStatusContacted, lead.Status)
}

func TestApplyAcceptedCreatesCommission(t *testing.T) {
	agentID := uuid.New()
	referrerID := uuid.New()
	lead := newAssignedLead(agentID, models.LeadStatusApproved)
	lead.ReferrerID = &referrerID

	loan := decimal.RequireFromString("500000")
	comm, err := Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusAccepted,
		Role:        models.RoleAgent,
		RequesterID: agentID,
		LoanAmount:  &loan,
	})
	require.NoError(t, err)
	require.NotNil(t, comm)

	assert.Equal(t, models.LeadStatusAccepted, lead.Status)
	assert.True(t, lead.LoanAmount.Equal(loan))
	assert.Equal(t, lead.ID, comm.LeadID)
	assert.Equal(t, agentID, comm.AgentID)
	require.NotNil(t, comm.ReferrerID)
	assert.Equal(t, referrerID, *comm.ReferrerID)
	assert.Equal(t, models.CommissionStatusPending, comm.Status)
	assert.True(t, comm.MaxCommission.Equal(decimal.RequireFromString("1500")))
	assert.True(t, comm.ReferrerCommission.Equal(decimal.RequireFromString("500")))
	assert.True(t, comm.AgentCommission.Equal(decimal.RequireFromString("1000")))
}

func TestApplyAcceptedRequiresLoanAmount(t *testing.T) {
	agentID := uuid.New()
	lead := newAssignedLead(agentID, models.LeadStatusApproved)

	_, err := Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusAccepted,
		Role:        models.RoleAgent,
		RequesterID: agentID,
	})
	assert.ErrorIs(t, err, ErrMissingLoanAmount)
	assert.Equal(t, models.LeadStatusApproved, lead.Status, "lead must be untouched on failure")

	zero := decimal.Zero
	_, err = Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusAccepted,
		Role:        models.RoleAgent,
		RequesterID: agentID,
		LoanAmount:  &zero,
	})
	assert.ErrorIs(t, err, ErrMissingLoanAmount)
}

func TestApplyRejectsNegativeLoanAmount(t *testing.T) {
	agentID := uuid.New()
	lead := newAssignedLead(agentID, models.LeadStatusApproved)

	negative := decimal.RequireFromString("-50000")
	_, err := Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusAccepted,
		Role:        models.RoleAgent,
		RequesterID: agentID,
		LoanAmount:  &negative,
	})
	assert.ErrorIs(t, err, commission.ErrInvalidLoanAmount)
	assert.Equal(t, models.LeadStatusApproved, lead.Status, "lead must be untouched on failure")
}

func TestApplyAcceptedRequiresAssignedAgent(t *testing.T) {
	adminID := uuid.New()
	lead := &models.Lead{
		ID:     uuid.New(),
		Status: models.LeadStatusApproved,
	}

	loan := decimal.RequireFromString("300000")
	_, err := Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusAccepted,
		Role:        models.RoleAdmin,
		RequesterID: adminID,
		LoanAmount:  &loan,
	})
	assert.ErrorIs(t, err, ErrUnassignedLead)
	assert.Equal(t, models.LeadStatusApproved, lead.Status)
}

func TestApplyNoReferrerGivesAgentFullPool(t *testing.T) {
	agentID := uuid.New()
	lead := newAssignedLead(agentID, models.LeadStatusApproved)

	loan := decimal.RequireFromString("100000")
	comm, err := Apply(lead, TransitionRequest{
		NewStatus:   models.LeadStatusAccepted,
		Role:        models.RoleAgent,
		RequesterID: agentID,
		LoanAmount:  &loan,
	})
	require.NoError(t, err)
	require.NotNil(t, comm)

	assert.Nil(t, comm.ReferrerID)
	assert.True(t, comm.ReferrerCommission.IsZero())
	assert.True(t, comm.AgentCommission.Equal(comm.MaxCommission))
}
