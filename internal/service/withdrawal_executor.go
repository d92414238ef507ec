package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"sync/atomic"
)

var ErrWithdrawalInProgress = errors.New("withdrawal is already in progress")

type FailureKind string

const (
	FailureNone                        FailureKind = ""
	FailurePayoutsNotEnabled           FailureKind = "payouts_not_enabled"
	FailurePlatformBalanceInsufficient FailureKind = "platform_balance_insufficient"
	FailureBelowMinimum                FailureKind = "below_minimum"
	FailureRejected                    FailureKind = "rejected"
	FailureUnknown                     FailureKind = "unknown"
)

const (
	msgPayoutsNotEnabled           = "Your payout account is not ready to receive transfers yet. Please complete your account setup and try again."
	msgPlatformBalanceInsufficient = "Withdrawals are temporarily unavailable. Please try again later."
	msgGenericFailure              = "Something went wrong while processing your withdrawal. Please try again."
)

type WithdrawalResult struct {
	Outcome internal.WithdrawalOutcome `json:"outcome"`
	Kind    FailureKind                `json:"failureKind,omitempty"`
	Message string                     `json:"message"`
}

func (r WithdrawalResult) Succeeded() bool {
	return r.Outcome.Success
}

type WithdrawalExecutor struct {
	client   MonetizationClient
	inFlight atomic.Bool
}

func NewWithdrawalExecutor(client MonetizationClient) *WithdrawalExecutor {
	return &WithdrawalExecutor{client: client}
}

func (e *WithdrawalExecutor) InFlight() bool {
	return e.inFlight.Load()
}

// Withdraw sends exactly one withdrawal request. A concurrent call while one
// is outstanding returns ErrWithdrawalInProgress without contacting the backend.
func (e *WithdrawalExecutor) Withdraw(ctx context.Context, chefID internal.ChefID, amount decimal.Decimal) (WithdrawalResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return WithdrawalResult{}, ErrWithdrawalInProgress
	}
	defer e.inFlight.Store(false)

	outcome, err := e.client.Withdraw(ctx, chefID, internal.WithdrawalRequest{Amount: amount})
	if err != nil {
		log.Error().Err(err).Str("chef", string(chefID)).Str("amount", amount.StringFixed(2)).Msg("Withdraw error")
		return WithdrawalResult{
			Outcome: internal.WithdrawalOutcome{Error: err.Error()},
			Kind:    FailureUnknown,
			Message: msgGenericFailure,
		}, nil
	}
	result := InterpretOutcome(outcome)
	if result.Succeeded() {
		log.Info().Str("chef", string(chefID)).Str("transfer", outcome.TransferID).Msg("Withdrawal completed")
	} else {
		log.Warn().Str("chef", string(chefID)).Str("code", string(outcome.Code)).Str("error", outcome.Error).Msg("Withdrawal rejected")
	}
	return result, nil
}

// InterpretOutcome picks the failure kind and the message shown to the chef.
func InterpretOutcome(outcome internal.WithdrawalOutcome) WithdrawalResult {
	result := WithdrawalResult{Outcome: outcome}
	if outcome.Success {
		amount := "your funds"
		if outcome.WithdrawalAmount != nil {
			amount = "$" + outcome.WithdrawalAmount.StringFixed(2)
		}
		result.Message = fmt.Sprintf("Withdrawal of %s initiated. Transfer ID: %s", amount, outcome.TransferID)
		return result
	}
	switch outcome.Code {
	case internal.CodePayoutsNotEnabled:
		result.Kind, result.Message = FailurePayoutsNotEnabled, msgPayoutsNotEnabled
	case internal.CodePlatformBalanceInsufficient:
		result.Kind, result.Message = FailurePlatformBalanceInsufficient, msgPlatformBalanceInsufficient
	case internal.CodeBelowMinimum:
		result.Kind = FailureBelowMinimum
		result.Message = fmt.Sprintf("The minimum withdrawal amount is $%s.", MinimumWithdrawal.StringFixed(2))
	default:
		if outcome.Error != "" {
			result.Kind, result.Message = FailureRejected, outcome.Error
		} else {
			result.Kind, result.Message = FailureUnknown, msgGenericFailure
		}
	}
	return result
}
