package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWithReferrer(t *testing.T) {
	loan := decimal.RequireFromString("100000")

	split, err := Calculate(loan, true)
	require.NoError(t, err)

	assert.True(t, split.MaxCommission.Equal(decimal.RequireFromString("300")),
		"max commission was %s", split.MaxCommission)
	assert.True(t, split.ReferrerCommission.Equal(decimal.RequireFromString("100")),
		"referrer commission was %s", split.ReferrerCommission)
	assert.True(t, split.AgentCommission.Equal(decimal.RequireFromString("200")),
		"agent commission was %s", split.AgentCommission)
}

func TestCalculateWithoutReferrer(t *testing.T) {
	loan := decimal.RequireFromString("250000")

	split, err := Calculate(loan, false)
	require.NoError(t, err)

	assert.True(t, split.ReferrerCommission.IsZero())
	assert.True(t, split.AgentCommission.Equal(split.MaxCommission),
		"agent should take the whole pool when there is no referrer")
	assert.True(t, split.MaxCommission.Equal(decimal.RequireFromString("750")))
}

func TestCalculateSplitAlwaysSumsToMax(t *testing.T) {
	amounts := []string{"1", "1000", "123456.78", "999999.99", "15000000"}

	for _, amount := range amounts {
		loan := decimal.RequireFromString(amount)

		split, err := Calculate(loan, true)
		require.NoError(t, err)

		sum := split.ReferrerCommission.Add(split.AgentCommission)
		assert.True(t, sum.Equal(split.MaxCommission),
			"split for %s does not sum to max: %s + %s != %s",
			amount, split.ReferrerCommission, split.AgentCommission, split.MaxCommission)
	}
}

func TestCalculateRejectsNonPositiveAmounts(t *testing.T) {
	for _, amount := range []string{"0", "-1", "-100000"} {
		_, err := Calculate(decimal.RequireFromString(amount), true)
		assert.ErrorIs(t, err, ErrInvalidLoanAmount, "amount %s", amount)
	}
}
