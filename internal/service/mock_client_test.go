package service

import (
	"context"
	"github.com/meal-mate-devs/payouts/internal"
	"sync"
)

type mockClient struct {
	mu sync.Mutex

	stats     internal.EarningsSnapshot
	statsErr  error
	status    internal.PayoutAccountStatus
	statusErr error

	outcome     internal.WithdrawalOutcome
	withdrawErr error

	link          internal.AccountLink
	dashboardLink internal.DashboardLink
	linkErr       error

	// when set, Withdraw and GetAccountStatus wait for a value before returning
	withdrawGate chan struct{}
	statusGate   chan struct{}

	statsCalls    int
	statusCalls   int
	withdrawCalls int
	withdrawn     []internal.WithdrawalRequest
}

var _ MonetizationClient = (*mockClient)(nil)

func (m *mockClient) GetMonetizationStats(_ context.Context, _ internal.ChefID) (internal.EarningsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	return m.stats, m.statsErr
}

func (m *mockClient) GetAccountStatus(ctx context.Context, _ internal.ChefID) (internal.PayoutAccountStatus, error) {
	m.mu.Lock()
	m.statusCalls++
	gate := m.statusGate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return internal.PayoutAccountStatus{}, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.statusErr
}

func (m *mockClient) CreateAccountLink(_ context.Context, _ internal.ChefID) (internal.AccountLink, error) {
	return m.link, m.linkErr
}

func (m *mockClient) CreateDashboardLink(_ context.Context, _ internal.ChefID) (internal.DashboardLink, error) {
	return m.dashboardLink, m.linkErr
}

func (m *mockClient) Withdraw(_ context.Context, _ internal.ChefID, req internal.WithdrawalRequest) (internal.WithdrawalOutcome, error) {
	m.mu.Lock()
	m.withdrawCalls++
	m.withdrawn = append(m.withdrawn, req)
	gate := m.withdrawGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return m.outcome, m.withdrawErr
}

func (m *mockClient) setStatus(status internal.PayoutAccountStatus, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status, m.statusErr = status, err
}

func (m *mockClient) setStats(stats internal.EarningsSnapshot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats, m.statsErr = stats, err
}

func (m *mockClient) calls() (stats int, status int, withdraw int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsCalls, m.statusCalls, m.withdrawCalls
}
