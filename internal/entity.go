package internal

import (
	"github.com/shopspring/decimal"
	"time"
)

type UserID int

type Token string

// ChefID is the backend user id sent in the user-id header.
type ChefID string

type StatusType string

const (
	StatusSuccess StatusType = "success"
	StatusWarning StatusType = "warning"
	StatusError   StatusType = "error"
	StatusPending StatusType = "pending"
	StatusNone    StatusType = "none"
)

type AccountError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PayoutAccountStatus struct {
	HasAccount          bool           `json:"hasAccount"`
	OnboardingComplete  bool           `json:"onboardingComplete"`
	PayoutsEnabled      bool           `json:"payoutsEnabled"`
	ChargesEnabled      bool           `json:"chargesEnabled"`
	DetailsSubmitted    bool           `json:"detailsSubmitted"`
	StatusMessage       string         `json:"statusMessage"`
	StatusType          StatusType     `json:"statusType"`
	PendingRequirements []string       `json:"pendingRequirements"`
	Errors              []AccountError `json:"errors"`
}

type EarningsSnapshot struct {
	TotalEarnings        decimal.Decimal `json:"totalEarnings"`
	WithdrawnEarnings    decimal.Decimal `json:"withdrawnEarnings"`
	AvailableBalance     decimal.Decimal `json:"availableBalance"`
	ActiveSubscribers    int             `json:"activeSubscribers"`
	LastWithdrawalAmount decimal.Decimal `json:"lastWithdrawalAmount"`
	LastWithdrawalAt     *time.Time      `json:"lastWithdrawalAt,omitempty"`
}

type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type WithdrawalCode string

const (
	CodePayoutsNotEnabled           WithdrawalCode = "PAYOUTS_NOT_ENABLED"
	CodePlatformBalanceInsufficient WithdrawalCode = "PLATFORM_BALANCE_INSUFFICIENT"
	CodeBelowMinimum                WithdrawalCode = "BELOW_MINIMUM"
)

type WithdrawalOutcome struct {
	Success          bool             `json:"success"`
	WithdrawalAmount *decimal.Decimal `json:"withdrawalAmount,omitempty"`
	TransferID       string           `json:"transferId,omitempty"`
	Error            string           `json:"error,omitempty"`
	Code             WithdrawalCode   `json:"code,omitempty"`
}

type AccountLink struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type DashboardLink struct {
	URL string `json:"url"`
}
