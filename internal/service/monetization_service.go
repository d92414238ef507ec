package service

import (
	"context"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/rs/zerolog/log"
	"sync"
	"time"
)

type MonetizationService interface {
	GetDashboard(ctx context.Context, chefID internal.ChefID) DashboardView
	Refresh(ctx context.Context, chefID internal.ChefID, trigger Trigger) DashboardView
	SetAmount(ctx context.Context, chefID internal.ChefID, amount string) DashboardView
	PreviewWithdrawal(ctx context.Context, chefID internal.ChefID, amount string) WithdrawalPreview
	Withdraw(ctx context.Context, chefID internal.ChefID, amount string, confirmed bool) (WithdrawalAttempt, error)
	CreateAccountLink(ctx context.Context, chefID internal.ChefID) (internal.AccountLink, error)
	CreateDashboardLink(ctx context.Context, chefID internal.ChefID) (internal.DashboardLink, error)
	CloseDashboard(chefID internal.ChefID)
}

type MonetizationServiceImpl struct {
	Client      MonetizationClient
	Coordinator *RefreshCoordinator

	mu         sync.Mutex
	dashboards map[internal.ChefID]*Dashboard

	// executors outlive dashboards so a reopened dashboard still sees a
	// withdrawal started before it was closed.
	executors map[internal.ChefID]*WithdrawalExecutor
}

var _ MonetizationService = (*MonetizationServiceImpl)(nil)

func NewMonetizationService(client MonetizationClient, requestTimeout time.Duration) *MonetizationServiceImpl {
	return &MonetizationServiceImpl{
		Client: client,
		Coordinator: NewRefreshCoordinator(
			NewAccountStatusProbe(client, requestTimeout),
			NewBalanceSnapshot(client, requestTimeout),
		),
		dashboards: make(map[internal.ChefID]*Dashboard),
		executors:  make(map[internal.ChefID]*WithdrawalExecutor),
	}
}

func (m *MonetizationServiceImpl) GetDashboard(ctx context.Context, chefID internal.ChefID) DashboardView {
	return m.dashboard(ctx, chefID).View()
}

func (m *MonetizationServiceImpl) Refresh(ctx context.Context, chefID internal.ChefID, trigger Trigger) DashboardView {
	d, opened := m.open(chefID)
	if opened {
		trigger = TriggerMount
	}
	m.refresh(ctx, d, trigger)
	return d.View()
}

func (m *MonetizationServiceImpl) SetAmount(ctx context.Context, chefID internal.ChefID, amount string) DashboardView {
	d := m.dashboard(ctx, chefID)
	d.SetAmount(amount)
	return d.View()
}

func (m *MonetizationServiceImpl) PreviewWithdrawal(ctx context.Context, chefID internal.ChefID, amount string) WithdrawalPreview {
	return m.dashboard(ctx, chefID).Preview(amount)
}

func (m *MonetizationServiceImpl) Withdraw(ctx context.Context, chefID internal.ChefID, amount string, confirmed bool) (WithdrawalAttempt, error) {
	return m.dashboard(ctx, chefID).Withdraw(ctx, amount, confirmed)
}

func (m *MonetizationServiceImpl) CreateAccountLink(ctx context.Context, chefID internal.ChefID) (internal.AccountLink, error) {
	link, err := m.Client.CreateAccountLink(ctx, chefID)
	if err != nil {
		return link, fmt.Errorf("create account link error: %w", err)
	}
	return link, nil
}

func (m *MonetizationServiceImpl) CreateDashboardLink(ctx context.Context, chefID internal.ChefID) (internal.DashboardLink, error) {
	link, err := m.Client.CreateDashboardLink(ctx, chefID)
	if err != nil {
		return link, fmt.Errorf("create dashboard link error: %w", err)
	}
	return link, nil
}

func (m *MonetizationServiceImpl) CloseDashboard(chefID internal.ChefID) {
	m.mu.Lock()
	d, ok := m.dashboards[chefID]
	delete(m.dashboards, chefID)
	m.mu.Unlock()
	if ok {
		d.Close()
	}
}

// Dashboards returns a snapshot of currently open dashboards.
func (m *MonetizationServiceImpl) Dashboards() []*Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*Dashboard, 0, len(m.dashboards))
	for _, d := range m.dashboards {
		result = append(result, d)
	}
	return result
}

// dashboard returns the chef's dashboard, opening and loading it on first use.
func (m *MonetizationServiceImpl) dashboard(ctx context.Context, chefID internal.ChefID) *Dashboard {
	d, opened := m.open(chefID)
	if opened {
		m.refresh(ctx, d, TriggerMount)
	}
	return d
}

func (m *MonetizationServiceImpl) open(chefID internal.ChefID) (*Dashboard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dashboards[chefID]; ok {
		return d, false
	}
	executor, ok := m.executors[chefID]
	if !ok {
		executor = NewWithdrawalExecutor(m.Client)
		m.executors[chefID] = executor
	}
	d := NewDashboard(chefID, m.Coordinator, executor)
	m.dashboards[chefID] = d
	return d, true
}

func (m *MonetizationServiceImpl) refresh(ctx context.Context, d *Dashboard, trigger Trigger) {
	if err := d.Refresh(ctx, trigger); err != nil {
		log.Debug().Err(err).Str("chef", string(d.ChefID())).Msg("Skip refresh")
	}
}
