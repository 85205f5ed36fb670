// Package netprobe determines whether the booking API is reachable and
// watches for outages. It distinguishes "no network at all" from "network
// present, backend unreachable": the latter drives degraded mode and
// cold-start waits instead of a hard failure.
package netprobe

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// Status is the two-part reachability result. Online=false forces
// BackendConnected=false; Online=true with BackendConnected=false is the
// outage/cold-start state.
type Status struct {
	Online           bool
	BackendConnected bool
}

// HealthChecker probes the API root. Satisfied by the API client.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Prober combines a local connectivity signal with a backend health probe.
type Prober struct {
	api          HealthChecker
	onlineCheck  func() bool
	pollInterval time.Duration
	logger       zerolog.Logger
}

// New creates a prober that polls every pollInterval during backend waits.
func New(api HealthChecker, pollInterval time.Duration, logger zerolog.Logger) *Prober {
	return &Prober{
		api:          api,
		onlineCheck:  hasActiveInterface,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// SetOnlineCheck overrides the local connectivity signal. Only used by tests.
func (p *Prober) SetOnlineCheck(fn func() bool) {
	p.onlineCheck = fn
}

// hasActiveInterface reports whether any non-loopback interface is up. This
// is the CLI's stand-in for the browser's navigator.onLine signal: cheap,
// local, and pessimistic only when the machine is truly offline.
func hasActiveInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}

// Check returns the current reachability status.
func (p *Prober) Check(ctx context.Context) Status {
	if !p.onlineCheck() {
		return Status{Online: false, BackendConnected: false}
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.api.Health(probeCtx); err != nil {
		p.logger.Debug().Err(err).Msg("Backend health probe failed")
		return Status{Online: true, BackendConnected: false}
	}
	return Status{Online: true, BackendConnected: true}
}

// WaitForBackend polls until the backend answers or ctx is cancelled. Used
// to ride out backend cold starts.
func (p *Prober) WaitForBackend(ctx context.Context) error {
	// Probe immediately, then on every tick.
	if p.Check(ctx).BackendConnected {
		return nil
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.Check(ctx).BackendConnected {
				return nil
			}
		}
	}
}
