package service

import (
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/shopspring/decimal"
	"strings"
)

const (
	ReasonInvalidAmount       = "Invalid Amount"
	ReasonInsufficientBalance = "Insufficient Balance"
	ReasonBelowMinimum        = "Below Minimum"
	ReasonSetupRequired       = "Setup Required"
	ReasonBalanceUnavailable  = "Balance Unavailable"
)

var MinimumWithdrawal = decimal.NewFromInt(5)

type GateDecision struct {
	Allowed bool            `json:"allowed"`
	Reason  string          `json:"reasonIfBlocked,omitempty"`
	Amount  decimal.Decimal `json:"amount"`

	// NeedsSetup tells the app to offer the onboarding link instead of submitting.
	NeedsSetup bool `json:"needsSetup,omitempty"`
}

// CanSubmit checks a typed amount against the latest balance and account
// status. A nil snapshot means no trustworthy balance is known.
func CanSubmit(amount string, snapshot *internal.EarningsSnapshot, status *internal.PayoutAccountStatus) GateDecision {
	value, ok := ParseAmount(amount)
	if !ok {
		return GateDecision{Reason: ReasonInvalidAmount}
	}
	if snapshot == nil {
		return GateDecision{Reason: ReasonBalanceUnavailable, Amount: value}
	}
	if value.GreaterThan(snapshot.AvailableBalance) {
		return GateDecision{Reason: ReasonInsufficientBalance, Amount: value}
	}
	if value.LessThan(MinimumWithdrawal) {
		return GateDecision{Reason: ReasonBelowMinimum, Amount: value}
	}
	if status == nil || !status.HasAccount || !status.PayoutsEnabled {
		return GateDecision{Reason: ReasonSetupRequired, Amount: value, NeedsSetup: true}
	}
	return GateDecision{Allowed: true, Amount: value}
}

// ParseAmount accepts a positive finite decimal number, surrounding spaces allowed.
func ParseAmount(amount string) (decimal.Decimal, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}
