package referral

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorillago3318/portal/internal/models"
)

const houseCode = "REF-HOUSE01"

type fakeDirectory struct {
	agents map[string]*models.Agent
	err    error
}

func (f *fakeDirectory) FindByReferralCode(ctx context.Context, code string) (*models.Agent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.agents[code], nil
}

func newFakeDirectory(agents ...*models.Agent) *fakeDirectory {
	dir := &fakeDirectory{agents: make(map[string]*models.Agent)}
	for _, a := range agents {
		dir.agents[a.ReferralCode] = a
	}
	return dir
}

func houseAgent() *models.Agent {
	return &models.Agent{
		ID:           uuid.New(),
		Name:         "House",
		Role:         models.RoleAgent,
		Status:       models.AgentStatusActive,
		ReferralCode: houseCode,
	}
}

func TestResolveEmptyCodeFallsBackToHouse(t *testing.T) {
	house := houseAgent()
	resolver := NewResolver(newFakeDirectory(house), houseCode)

	assignment, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)

	require.NotNil(t, assignment.AssignedAgentID)
	require.NotNil(t, assignment.ReferrerID)
	assert.Equal(t, house.ID, *assignment.AssignedAgentID)
	assert.Equal(t, house.ID, *assignment.ReferrerID)
}

func TestResolveDefaultCodeGoesToHouse(t *testing.T) {
	house := houseAgent()
	resolver := NewResolver(newFakeDirectory(house), houseCode)

	assignment, err := resolver.Resolve(context.Background(), houseCode)
	require.NoError(t, err)
	require.NotNil(t, assignment.AssignedAgentID)
	assert.Equal(t, house.ID, *assignment.AssignedAgentID)
}

func TestResolveAgentCodeAssignsAndCreditsAgent(t *testing.T) {
	agent := &models.Agent{
		ID:           uuid.New(),
		Role:         models.RoleAgent,
		ReferralCode: "REF-AB12CD34",
	}
	resolver := NewResolver(newFakeDirectory(agent), houseCode)

	assignment, err := resolver.Resolve(context.Background(), agent.ReferralCode)
	require.NoError(t, err)

	require.NotNil(t, assignment.AssignedAgentID)
	require.NotNil(t, assignment.ReferrerID)
	assert.Equal(t, agent.ID, *assignment.AssignedAgentID)
	assert.Equal(t, agent.ID, *assignment.ReferrerID)
}

func TestResolveReferrerCodeAssignsSponsor(t *testing.T) {
	sponsorID := uuid.New()
	referrer := &models.Agent{
		ID:               uuid.New(),
		Role:             models.RoleReferrer,
		ReferralCode:     "REF-FEEDBEEF",
		ParentReferrerID: &sponsorID,
	}
	resolver := NewResolver(newFakeDirectory(referrer), houseCode)

	assignment, err := resolver.Resolve(context.Background(), referrer.ReferralCode)
	require.NoError(t, err)

	require.NotNil(t, assignment.AssignedAgentID)
	require.NotNil(t, assignment.ReferrerID)
	assert.Equal(t, sponsorID, *assignment.AssignedAgentID, "sponsor works the lead")
	assert.Equal(t, referrer.ID, *assignment.ReferrerID, "referrer keeps the credit")
}

func TestResolveReferrerWithoutSponsorAssignsSelf(t *testing.T) {
	referrer := &models.Agent{
		ID:           uuid.New(),
		Role:         models.RoleReferrer,
		ReferralCode: "REF-00C0FFEE",
	}
	resolver := NewResolver(newFakeDirectory(referrer), houseCode)

	assignment, err := resolver.Resolve(context.Background(), referrer.ReferralCode)
	require.NoError(t, err)

	require.NotNil(t, assignment.AssignedAgentID)
	assert.Equal(t, referrer.ID, *assignment.AssignedAgentID)
}

func TestResolveUnknownCodeLeavesLeadUnassigned(t *testing.T) {
	resolver := NewResolver(newFakeDirectory(houseAgent()), houseCode)

	assignment, err := resolver.Resolve(context.Background(), "REF-NOSUCH00")
	require.NoError(t, err, "an unknown code must not lose the lead")

	assert.Nil(t, assignment.AssignedAgentID)
	assert.Nil(t, assignment.ReferrerID)
}

func TestResolveNoDefaultConfiguredLeavesUnassigned(t *testing.T) {
	resolver := NewResolver(newFakeDirectory(), "")

	assignment, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, assignment.AssignedAgentID)
	assert.Nil(t, assignment.ReferrerID)
}

func TestResolveDirectoryFaultPropagates(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	resolver := NewResolver(dir, houseCode)

	_, err := resolver.Resolve(context.Background(), "REF-AB12CD34")
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)

	_, err = resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrDirectoryUnavailable, "house lookup faults must also propagate")
}
