package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teleclinic/teleclinic/internal/platform/telemetry"
)

// Monitor periodically samples per-doctor waiting counts into telemetry
// gauges so dashboards see queue depth without polling the API.
type Monitor struct {
	repo     Repository
	tel      *telemetry.Provider
	interval time.Duration
	logger   zerolog.Logger
}

func NewMonitor(repo Repository, tel *telemetry.Provider, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Monitor{repo: repo, tel: tel, interval: interval, logger: logger}
}

// Run polls until ctx is canceled. A failed sample is logged and retried on
// the next tick; the monitor never stops on its own.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample(ctx)
		}
	}
}

func (m *Monitor) sample(ctx context.Context) {
	counts, err := m.repo.CountWaitingByDoctor(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("queue monitor: sampling waiting counts failed")
		return
	}
	for doctorID, depth := range counts {
		key := doctorID.String()
		if doctorID == uuid.Nil {
			key = "unassigned"
		}
		m.tel.SetQueueDepth(key, int64(depth))
	}
}
