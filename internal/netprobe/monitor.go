package netprobe

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookline-dev/bookline/internal/notify"
)

// Monitor is the long-lived connectivity watcher. Each detected outage
// produces one user warning and a wait-for-recovery cycle; once the backend
// answers again the monitor goes quiet. It only reads connectivity and
// emits notifications; auth state belongs to the bootstrapper.
type Monitor struct {
	prober   *Prober
	notifier notify.Notifier
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewMonitor creates a monitor that checks every interval (default 30s when
// interval is zero).
func NewMonitor(prober *Prober, notifier notify.Notifier, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		prober:   prober,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the watch loop. Calling Start on a running monitor is a
// no-op: at most one instance is ever active.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.run(ctx)
}

// Stop cancels the watch loop and waits for it to exit. Safe to call on a
// stopped monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel, done := m.cancel, m.done
	m.running = false
	m.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the watch loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := m.prober.Check(ctx)
			if status.BackendConnected {
				continue
			}

			m.logger.Warn().
				Bool("online", status.Online).
				Msg("Backend connectivity lost")
			m.notifier.Notify(notify.Notification{
				Severity: notify.Warning,
				Message:  "Connection to the booking service was lost. Reconnecting...",
			})

			// Ride out the outage; the next tick resumes normal checks.
			if err := m.prober.WaitForBackend(ctx); err != nil {
				return
			}
			m.logger.Info().Msg("Backend connectivity restored")
		}
	}
}
