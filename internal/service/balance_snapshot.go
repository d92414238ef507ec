package service

import (
	"context"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"time"
)

type BalanceSnapshot struct {
	client  MonetizationClient
	timeout time.Duration
}

func NewBalanceSnapshot(client MonetizationClient, timeout time.Duration) *BalanceSnapshot {
	return &BalanceSnapshot{client: client, timeout: timeout}
}

func (b *BalanceSnapshot) Fetch(ctx context.Context, chefID internal.ChefID) (internal.EarningsSnapshot, error) {
	ctx, cancel := withTimeout(ctx, b.timeout)
	defer cancel()
	stats, err := b.client.GetMonetizationStats(ctx, chefID)
	if err != nil {
		return stats, fmt.Errorf("fetch monetization stats error: %w", err)
	}
	return stats, nil
}
