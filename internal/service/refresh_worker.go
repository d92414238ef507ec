package service

import (
	"context"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"sync"
	"time"
)

const (
	defaultPollInterval = time.Minute
	defaultIdleTTL      = 15 * time.Minute
	defaultPollWorkers  = 8
)

type dashboardRegistry interface {
	Dashboards() []*Dashboard
	CloseDashboard(chefID internal.ChefID)
}

// RefreshWorker polls open dashboards and closes the ones nobody has looked
// at for longer than the idle TTL. Dashboards are refreshed on a bounded pool,
// so a chef whose backend calls hang does not hold up the others.
type RefreshWorker struct {
	registry     dashboardRegistry
	pool         *ants.Pool
	pollInterval time.Duration
	idleTTL      time.Duration
}

func NewRefreshWorker(registry dashboardRegistry, pollInterval time.Duration, idleTTL time.Duration, workers int) (*RefreshWorker, error) {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	if workers <= 0 {
		workers = defaultPollWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create refresh pool error: %w", err)
	}
	return &RefreshWorker{registry: registry, pool: pool, pollInterval: pollInterval, idleTTL: idleTTL}, nil
}

func (w *RefreshWorker) Run(ctx context.Context) {
	defer w.pool.Release()
	pollTick := time.NewTicker(w.pollInterval)
	defer pollTick.Stop()
	for {
		select {
		case <-pollTick.C:
			w.process(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *RefreshWorker) process(ctx context.Context) {
	dashboards := w.registry.Dashboards()
	if len(dashboards) == 0 {
		return
	}
	log.Debug().Int("dashboards", len(dashboards)).Msg("Polling open dashboards")
	now := time.Now()
	var wg sync.WaitGroup
	for _, d := range dashboards {
		if ctx.Err() != nil {
			break
		}
		if now.Sub(d.IdleSince()) > w.idleTTL {
			log.Info().Str("chef", string(d.ChefID())).Msg("Closing idle dashboard")
			w.registry.CloseDashboard(d.ChefID())
			continue
		}
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			if err := d.Refresh(ctx, TriggerPoll); err != nil {
				log.Debug().Err(err).Str("chef", string(d.ChefID())).Msg("Skip poll")
			}
		})
		if err != nil {
			wg.Done()
			log.Error().Err(err).Str("chef", string(d.ChefID())).Msg("Submit poll error")
		}
	}
	wg.Wait()
}
