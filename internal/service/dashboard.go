package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/rs/zerolog/log"
	"sync"
	"time"
)

var (
	ErrWithdrawalBlocked    = errors.New("withdrawal is blocked")
	ErrConfirmationRequired = errors.New("withdrawal must be confirmed")
	ErrDashboardClosed      = errors.New("dashboard is closed")
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseError      Phase = "error"
	PhaseSubmitting Phase = "submitting"
)

type statusState struct {
	phase Phase
	value *internal.PayoutAccountStatus
	gen   uint64
}

type statsState struct {
	phase Phase
	value *internal.EarningsSnapshot
	gen   uint64
}

// Dashboard is the monetization screen state of one chef.
type Dashboard struct {
	chefID      internal.ChefID
	executor    *WithdrawalExecutor
	coordinator *RefreshCoordinator

	mu             sync.Mutex
	closed         bool
	status         statusState
	stats          statsState
	amount         string
	lastWithdrawal *WithdrawalResult
	lastSeen       time.Time
	refreshedAt    time.Time
}

type DashboardView struct {
	ChefID          internal.ChefID               `json:"chefId"`
	StatusPhase     Phase                         `json:"statusPhase"`
	Status          *internal.PayoutAccountStatus `json:"status,omitempty"`
	Classification  *StatusClassification         `json:"classification,omitempty"`
	StatsPhase      Phase                         `json:"statsPhase"`
	Stats           *internal.EarningsSnapshot    `json:"stats,omitempty"`
	StatsError      bool                          `json:"statsError"`
	Amount          string                        `json:"amount"`
	Gate            GateDecision                  `json:"gate"`
	WithdrawalPhase Phase                         `json:"withdrawalPhase"`
	LastWithdrawal  *WithdrawalResult             `json:"lastWithdrawal,omitempty"`
	RefreshedAt     *time.Time                    `json:"refreshedAt,omitempty"`
}

type WithdrawalPreview struct {
	Decision     GateDecision `json:"decision"`
	Confirmation string       `json:"confirmation,omitempty"`
}

type WithdrawalAttempt struct {
	Decision GateDecision      `json:"decision"`
	Result   *WithdrawalResult `json:"result,omitempty"`
}

func NewDashboard(chefID internal.ChefID, coordinator *RefreshCoordinator, executor *WithdrawalExecutor) *Dashboard {
	return &Dashboard{
		chefID:      chefID,
		coordinator: coordinator,
		executor:    executor,
		status:      statusState{phase: PhaseIdle},
		stats:       statsState{phase: PhaseIdle},
		lastSeen:    time.Now(),
	}
}

func (d *Dashboard) ChefID() internal.ChefID {
	return d.chefID
}

func (d *Dashboard) Refresh(ctx context.Context, trigger Trigger) error {
	if d.Closed() {
		return ErrDashboardClosed
	}
	d.coordinator.Refresh(ctx, d, trigger)
	d.mu.Lock()
	d.refreshedAt = time.Now()
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) SetAmount(amount string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.amount = amount
	d.lastSeen = time.Now()
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSeen = time.Now()

	view := DashboardView{
		ChefID:          d.chefID,
		StatusPhase:     d.status.phase,
		Status:          d.status.value,
		StatsPhase:      d.stats.phase,
		Amount:          d.amount,
		Gate:            d.gateLocked(d.amount),
		WithdrawalPhase: PhaseIdle,
		LastWithdrawal:  d.lastWithdrawal,
	}
	// A failed status probe is not shown to the chef: the card keeps the last known status.
	if d.status.phase == PhaseError {
		view.StatusPhase = PhaseReady
		if d.status.value == nil {
			view.StatusPhase = PhaseIdle
		}
	}
	if d.status.value != nil {
		classification := ClassifyStatus(*d.status.value)
		view.Classification = &classification
	}
	if d.stats.phase == PhaseError {
		view.StatsError = true
	} else {
		view.Stats = d.stats.value
	}
	if d.executor.InFlight() {
		view.WithdrawalPhase = PhaseSubmitting
	}
	if !d.refreshedAt.IsZero() {
		refreshedAt := d.refreshedAt
		view.RefreshedAt = &refreshedAt
	}
	return view
}

// Preview runs the gate for amount, or for the current input when amount is empty.
func (d *Dashboard) Preview(amount string) WithdrawalPreview {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSeen = time.Now()
	if amount == "" {
		amount = d.amount
	}
	preview := WithdrawalPreview{Decision: d.gateLocked(amount)}
	if preview.Decision.Allowed {
		preview.Confirmation = fmt.Sprintf("Withdraw $%s to your payout account?", preview.Decision.Amount.StringFixed(2))
	}
	return preview
}

// Withdraw gates the amount, requires explicit confirmation and then runs the
// executor. On success the amount input is cleared and both probes are
// refreshed in the background.
func (d *Dashboard) Withdraw(ctx context.Context, amount string, confirmed bool) (WithdrawalAttempt, error) {
	preview := d.Preview(amount)
	attempt := WithdrawalAttempt{Decision: preview.Decision}
	if !preview.Decision.Allowed {
		return attempt, ErrWithdrawalBlocked
	}
	if !confirmed {
		return attempt, ErrConfirmationRequired
	}
	if d.Closed() {
		return attempt, ErrDashboardClosed
	}
	result, err := d.executor.Withdraw(ctx, d.chefID, preview.Decision.Amount)
	if err != nil {
		return attempt, err
	}
	attempt.Result = &result

	d.mu.Lock()
	d.lastWithdrawal = &result
	if result.Succeeded() {
		d.amount = ""
	}
	d.mu.Unlock()

	if result.Succeeded() {
		go func() {
			if err := d.Refresh(context.WithoutCancel(ctx), TriggerWithdrawal); err != nil {
				log.Debug().Err(err).Str("chef", string(d.chefID)).Msg("Skip refresh after withdrawal")
			}
		}()
	}
	return attempt, nil
}

// Close tears the dashboard down; responses still in flight are discarded.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.status.gen++
	d.stats.gen++
}

func (d *Dashboard) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dashboard) IdleSince() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeen
}

func (d *Dashboard) gateLocked(amount string) GateDecision {
	var snapshot *internal.EarningsSnapshot
	if d.stats.phase != PhaseError {
		snapshot = d.stats.value
	}
	return CanSubmit(amount, snapshot, d.status.value)
}

func (d *Dashboard) beginStatus() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, false
	}
	d.status.gen++
	d.status.phase = PhaseLoading
	return d.status.gen, true
}

func (d *Dashboard) finishStatus(gen uint64, status internal.PayoutAccountStatus, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.status.gen {
		log.Debug().Str("chef", string(d.chefID)).Uint64("gen", gen).Msg("Discard stale account status")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("chef", string(d.chefID)).Msg("Account status probe failed, keeping previous status")
		d.status.phase = PhaseError
		return
	}
	d.status.value = &status
	d.status.phase = PhaseReady
}

func (d *Dashboard) beginStats() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, false
	}
	d.stats.gen++
	d.stats.phase = PhaseLoading
	return d.stats.gen, true
}

func (d *Dashboard) finishStats(gen uint64, stats internal.EarningsSnapshot, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.stats.gen {
		log.Debug().Str("chef", string(d.chefID)).Uint64("gen", gen).Msg("Discard stale monetization stats")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("chef", string(d.chefID)).Msg("Monetization stats fetch failed")
		// The balance gates withdrawals, so stale figures are dropped rather than kept.
		d.stats.value = nil
		d.stats.phase = PhaseError
		return
	}
	d.stats.value = &stats
	d.stats.phase = PhaseReady
}
