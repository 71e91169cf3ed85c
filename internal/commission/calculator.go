// Package commission computes the payout split for an accepted lead.
// It is pure: no I/O, no store access.
package commission

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidLoanAmount is returned when the loan amount is zero or negative.
var ErrInvalidLoanAmount = errors.New("loan amount must be greater than zero")

// Commission rates. The whole pool is 0.3% of the loan; with a referrer the
// pool splits 0.1% to the referrer and 0.2% to the agent.
var (
	maxRate      = decimal.RequireFromString("0.003")
	referrerRate = decimal.RequireFromString("0.001")
	agentRate    = decimal.RequireFromString("0.002")
)

// Split is the computed commission breakdown for one accepted lead.
type Split struct {
	MaxCommission      decimal.Decimal
	ReferrerCommission decimal.Decimal
	AgentCommission    decimal.Decimal
}

// Calculate returns the commission split for a loan amount. When no referrer
// is credited, the agent takes the whole pool.
func Calculate(loanAmount decimal.Decimal, hasReferrer bool) (Split, error) {
	if loanAmount.LessThanOrEqual(decimal.Zero) {
		return Split{}, ErrInvalidLoanAmount
	}

	max := loanAmount.Mul(maxRate)
	if !hasReferrer {
		return Split{
			MaxCommission:      max,
			ReferrerCommission: decimal.Zero,
			AgentCommission:    max,
		}, nil
	}

	return Split{
		MaxCommission:      max,
		ReferrerCommission: loanAmount.Mul(referrerRate),
		AgentCommission:    loanAmount.Mul(agentRate),
	}, nil
}
