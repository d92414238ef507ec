package service

import (
	"context"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"time"
)

const (
	TitleAccountReady        = "Account Ready"
	TitleSetupRequired       = "Setup Required"
	TitleActionRequired      = "Action Required"
	TitleVerificationPending = "Verification Pending"
	TitleSetupIncomplete     = "Setup Incomplete"
)

type StatusClassification struct {
	Title        string              `json:"title"`
	Type         internal.StatusType `json:"type"`
	Requirements []string            `json:"requirements,omitempty"`
}

// ClassifyStatus maps a payout account status to what the status card shows.
// First matching rule wins.
func ClassifyStatus(status internal.PayoutAccountStatus) StatusClassification {
	switch {
	case status.OnboardingComplete:
		return StatusClassification{Title: TitleAccountReady, Type: internal.StatusSuccess}
	case !status.HasAccount:
		return StatusClassification{Title: TitleSetupRequired, Type: internal.StatusWarning}
	case len(status.Errors) > 0:
		return StatusClassification{Title: TitleActionRequired, Type: internal.StatusError, Requirements: status.PendingRequirements}
	case status.DetailsSubmitted && !status.PayoutsEnabled:
		return StatusClassification{Title: TitleVerificationPending, Type: internal.StatusPending, Requirements: status.PendingRequirements}
	default:
		return StatusClassification{Title: TitleSetupIncomplete, Type: internal.StatusWarning}
	}
}

type AccountStatusProbe struct {
	client  MonetizationClient
	timeout time.Duration
}

func NewAccountStatusProbe(client MonetizationClient, timeout time.Duration) *AccountStatusProbe {
	return &AccountStatusProbe{client: client, timeout: timeout}
}

func (p *AccountStatusProbe) Fetch(ctx context.Context, chefID internal.ChefID) (internal.PayoutAccountStatus, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()
	status, err := p.client.GetAccountStatus(ctx, chefID)
	if err != nil {
		return status, fmt.Errorf("fetch payout account status error: %w", err)
	}
	return status, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
