package service

import (
	"context"
	"errors"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestMonetizationServiceOpensDashboardOnce(t *testing.T) {
	client := &mockClient{stats: hundredDollars(), status: *readyStatus()}
	m := NewMonetizationService(client, time.Second)
	ctx := context.Background()

	view := m.GetDashboard(ctx, "chef-1")
	assert.Equal(t, PhaseReady, view.StatsPhase)
	view = m.SetAmount(ctx, "chef-1", "3")
	assert.Equal(t, ReasonBelowMinimum, view.Gate.Reason)

	statsCalls, statusCalls, _ := client.calls()
	assert.Equal(t, 1, statsCalls)
	assert.Equal(t, 1, statusCalls)
	assert.Len(t, m.Dashboards(), 1)

	m.Refresh(ctx, "chef-1", TriggerForeground)
	statsCalls, _, _ = client.calls()
	assert.Equal(t, 2, statsCalls)
}

func TestMonetizationServiceCloseDashboard(t *testing.T) {
	client := &mockClient{stats: hundredDollars(), status: *readyStatus()}
	m := NewMonetizationService(client, time.Second)
	ctx := context.Background()

	m.SetAmount(ctx, "chef-1", "50")
	d := m.Dashboards()[0]
	m.CloseDashboard("chef-1")
	assert.True(t, d.Closed())
	assert.Empty(t, m.Dashboards())

	view := m.GetDashboard(ctx, "chef-1")
	assert.Empty(t, view.Amount)
}

func TestMonetizationServiceWithdrawScenario(t *testing.T) {
	client := &mockClient{
		stats:   hundredDollars(),
		status:  *readyStatus(),
		outcome: internal.WithdrawalOutcome{Success: true, TransferID: "tr_1"},
	}
	m := NewMonetizationService(client, time.Second)

	attempt, err := m.Withdraw(context.Background(), "chef-1", "50", true)
	require.NoError(t, err)
	require.NotNil(t, attempt.Result)
	assert.True(t, attempt.Result.Succeeded())
	assert.Eventually(t, func() bool {
		statsCalls, _, _ := client.calls()
		return statsCalls == 2
	}, time.Second, 5*time.Millisecond)
}

func TestMonetizationServiceReopenWhileWithdrawing(t *testing.T) {
	client := &mockClient{
		stats:        hundredDollars(),
		status:       *readyStatus(),
		outcome:      internal.WithdrawalOutcome{Success: true, TransferID: "tr_1"},
		withdrawGate: make(chan struct{}),
	}
	m := NewMonetizationService(client, time.Second)
	ctx := context.Background()

	done := make(chan error)
	go func() {
		_, err := m.Withdraw(ctx, "chef-1", "50", true)
		done <- err
	}()
	require.Eventually(t, func() bool {
		_, _, withdrawCalls := client.calls()
		return withdrawCalls == 1
	}, time.Second, 5*time.Millisecond)

	m.CloseDashboard("chef-1")
	view := m.GetDashboard(ctx, "chef-1")
	assert.Equal(t, PhaseSubmitting, view.WithdrawalPhase)
	_, err := m.Withdraw(ctx, "chef-1", "50", true)
	assert.ErrorIs(t, err, ErrWithdrawalInProgress)

	close(client.withdrawGate)
	require.NoError(t, <-done)
	_, _, withdrawCalls := client.calls()
	assert.Equal(t, 1, withdrawCalls)
}

func TestMonetizationServiceLinks(t *testing.T) {
	client := &mockClient{
		link:          internal.AccountLink{URL: "https://connect.example.com/setup"},
		dashboardLink: internal.DashboardLink{URL: "https://connect.example.com/express"},
	}
	m := NewMonetizationService(client, time.Second)

	link, err := m.CreateAccountLink(context.Background(), "chef-1")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example.com/setup", link.URL)
	dashboardLink, err := m.CreateDashboardLink(context.Background(), "chef-1")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example.com/express", dashboardLink.URL)

	client.linkErr = errors.New("stripe unavailable")
	_, err = m.CreateAccountLink(context.Background(), "chef-1")
	assert.Error(t, err)
}
