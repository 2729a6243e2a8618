package services

import (
	"context"
	"sync"
	"time"

	"parking/internal/domain/models"
	"parking/internal/utils"

	"golang.org/x/sync/singleflight"
)

const defaultRefreshInterval = 30 * time.Second

// DashboardSnapshot is what the dashboard view renders.
type DashboardSnapshot struct {
	Tickets     []models.ActiveTicket `json:"tickets"`
	Stats       Stats                 `json:"stats"`
	RefreshedAt time.Time             `json:"refreshed_at"`
	Error       string                `json:"error,omitempty"`
}

// DashboardPoller refreshes the active-ticket list on a fixed interval while
// running. Ticks and manual refreshes share one in-flight poll, and each poll
// is bounded by the interval so it never runs into the next tick.
type DashboardPoller struct {
	Tickets  TicketService
	Interval time.Duration

	group singleflight.Group

	mu          sync.RWMutex
	active      []models.Ticket
	stats       Stats
	refreshedAt time.Time
	lastErr     error
	polls       int

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewDashboardPoller(tickets TicketService, interval time.Duration) *DashboardPoller {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &DashboardPoller{Tickets: tickets, Interval: interval}
}

// Refresh polls the store now, or joins the poll already in flight. The
// shared poll is bounded by the interval only; a caller whose ctx ends stops
// waiting without aborting the poll for the others.
func (p *DashboardPoller) Refresh(ctx context.Context) error {
	ch := p.group.DoChan("poll", func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.Interval)
		defer cancel()
		return nil, p.poll(pctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *DashboardPoller) poll(ctx context.Context) error {
	active, err := p.Tickets.ActiveTickets(ctx)
	var stats Stats
	if err == nil {
		stats, err = p.Tickets.statsFor(ctx, len(active))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	p.lastErr = err
	if err != nil {
		utils.LogEvent(p.Tickets.RequestID, "dashboard", "poll", "refresh failed: "+err.Error())
		return err
	}
	p.active = active
	p.stats = stats
	p.refreshedAt = p.Tickets.now()
	return nil
}

// Snapshot returns the last polled tickets, filtered by search and classified
// against the current clock.
func (p *DashboardPoller) Snapshot(search string) DashboardSnapshot {
	p.mu.RLock()
	active := p.active
	snap := DashboardSnapshot{Stats: p.stats, RefreshedAt: p.refreshedAt}
	if p.lastErr != nil {
		snap.Error = p.lastErr.Error()
	}
	p.mu.RUnlock()

	snap.Tickets = p.Tickets.Annotate(active, search)
	return snap
}

// Polls reports how many polls have completed.
func (p *DashboardPoller) Polls() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.polls
}

// Start launches the ticker loop with an immediate first poll. It is a no-op
// while already running.
func (p *DashboardPoller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		_ = p.Refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = p.Refresh(ctx)
			}
		}
	}()
	utils.LogEventf("", "dashboard", "start", "interval=%s", p.Interval)
}

// Stop ends the loop and waits for it to exit.
func (p *DashboardPoller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	utils.LogEvent("", "dashboard", "stop", "refresh loop stopped")
}

func (p *DashboardPoller) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}
