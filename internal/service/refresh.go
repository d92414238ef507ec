package service

import (
	"context"
	"github.com/rs/zerolog/log"
	"sync"
)

type Trigger string

const (
	TriggerMount      Trigger = "mount"
	TriggerPull       Trigger = "pull"
	TriggerFocus      Trigger = "focus"
	TriggerForeground Trigger = "foreground"
	TriggerPoll       Trigger = "poll"
	TriggerWithdrawal Trigger = "withdrawal"
)

// ParseTrigger accepts only the triggers a client may send.
func ParseTrigger(s string) (Trigger, bool) {
	switch t := Trigger(s); t {
	case TriggerPull, TriggerFocus, TriggerForeground, TriggerMount:
		return t, true
	case "":
		return TriggerPull, true
	}
	return "", false
}

// RefreshCoordinator re-runs the account status probe and the balance
// snapshot for a dashboard. Both fetches are independent and run concurrently.
type RefreshCoordinator struct {
	status  *AccountStatusProbe
	balance *BalanceSnapshot
}

func NewRefreshCoordinator(status *AccountStatusProbe, balance *BalanceSnapshot) *RefreshCoordinator {
	return &RefreshCoordinator{status: status, balance: balance}
}

// Refresh blocks until both fetches have settled. Results from a superseded
// refresh or a closed dashboard are dropped by the dashboard itself.
func (c *RefreshCoordinator) Refresh(ctx context.Context, d *Dashboard, trigger Trigger) {
	log.Debug().Str("chef", string(d.chefID)).Str("trigger", string(trigger)).Msg("Refreshing dashboard")
	var wg sync.WaitGroup
	if gen, ok := d.beginStatus(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := c.status.Fetch(ctx, d.chefID)
			d.finishStatus(gen, status, err)
		}()
	}
	if gen, ok := d.beginStats(); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats, err := c.balance.Fetch(ctx, d.chefID)
			d.finishStats(gen, stats, err)
		}()
	}
	wg.Wait()
}
