package agent

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorillago3318/portal/internal/models"
)

func strPtr(s string) *string { return &s }

func existingAgent() *models.Agent {
	return &models.Agent{
		ID:           uuid.New(),
		Name:         "Ahmad Faizal",
		Phone:        "60123456789",
		Location:     "Kuala Lumpur",
		Role:         models.RoleAgent,
		Status:       models.AgentStatusActive,
		ReferralCode: "REF-AB12CD34",
	}
}

func TestApplyUpdateRejectsReferralCodeChange(t *testing.T) {
	agent := existingAgent()

	err := applyUpdate(agent, UpdateInput{
		Name:         strPtr("Ahmad F."),
		ReferralCode: strPtr("REF-99999999"),
	})
	assert.ErrorIs(t, err, ErrReferralCodeImmutable)
	assert.Equal(t, "REF-AB12CD34", agent.ReferralCode)
	assert.Equal(t, "Ahmad Faizal", agent.Name, "nothing else may change on rejection")
}

func TestApplyUpdateAllowsUnchangedReferralCode(t *testing.T) {
	agent := existingAgent()

	err := applyUpdate(agent, UpdateInput{
		ReferralCode: strPtr("REF-AB12CD34"),
		Location:     strPtr("Penang"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Penang", agent.Location)
}

func TestApplyUpdateSetsProfileFields(t *testing.T) {
	agent := existingAgent()

	err := applyUpdate(agent, UpdateInput{
		Name:          strPtr("Ahmad Faizal bin Hassan"),
		Email:         strPtr("faizal@example.com"),
		BankName:      strPtr("Maybank"),
		AccountNumber: strPtr("1234567890"),
		Status:        strPtr("Inactive"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Ahmad Faizal bin Hassan", agent.Name)
	require.NotNil(t, agent.Email)
	assert.Equal(t, "faizal@example.com", *agent.Email)
	require.NotNil(t, agent.BankName)
	assert.Equal(t, "Maybank", *agent.BankName)
	assert.Equal(t, models.AgentStatusInactive, agent.Status)
}

func TestApplyUpdateRejectsUnknownStatus(t *testing.T) {
	agent := existingAgent()

	err := applyUpdate(agent, UpdateInput{Status: strPtr("Archived")})
	assert.Error(t, err)
	assert.Equal(t, models.AgentStatusActive, agent.Status)
}
