package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorillago3318/portal/internal/models"
)

func TestFormatMYR(t *testing.T) {
	cases := map[string]string{
		"0":          "RM 0.00",
		"950.5":      "RM 950.50",
		"1250000":    "RM 1,250,000.00",
		"123456.789": "RM 123,456.79",
		"-4500":      "-RM 4,500.00",
	}
	for input, want := range cases {
		got := FormatMYR(decimal.RequireFromString(input))
		assert.Equal(t, want, got, "input %s", input)
	}
}

func TestGenerateReferralCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateReferralCode()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(code, ReferralCodePrefix))
		assert.Len(t, code, len(ReferralCodePrefix)+8)
		assert.Equal(t, code, strings.ToUpper(code))
		seen[code] = true
	}
	assert.Greater(t, len(seen), 40, "codes should rarely collide")
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	agentID := uuid.New()

	token, err := GenerateToken(agentID, models.RoleAgent, "60123456789", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, agentID, claims.AgentID)
	assert.Equal(t, models.RoleAgent, claims.Role)
	assert.Equal(t, "60123456789", claims.Phone)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken(uuid.New(), models.RoleAdmin, "60198765432", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken(uuid.New(), models.RoleAgent, "60123456789", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}
