package dashboard

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/events"
	"beacon-dashboard/internal/logging"
	"beacon-dashboard/internal/scheduler"
)

type PollerOptions struct {
	Source   Source
	Catalog  *domain.Catalog
	Interval time.Duration
	Hub      events.Publisher
	Logger   *log.Logger
	Now      func() time.Time
}

// Poller keeps the dashboard State current by polling a Source. Only one
// fetch is ever outstanding; ticks and manual refreshes that arrive while one
// is running are dropped.
type Poller struct {
	src      Source
	catalog  *domain.Catalog
	interval time.Duration
	hub      events.Publisher
	logger   *log.Logger
	now      func() time.Time

	state    atomic.Value // State
	status   atomic.Value // Status
	inFlight atomic.Bool
}

func NewPoller(o PollerOptions) *Poller {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	interval := o.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	p := &Poller{
		src:      o.Source,
		catalog:  o.Catalog,
		interval: interval,
		hub:      o.Hub,
		logger:   logging.OrDefault(o.Logger),
		now:      now,
	}
	p.state.Store(State{Categories: Aggregate(o.Catalog, nil), Loading: true})
	p.status.Store(Status{})
	return p
}

func (p *Poller) Interval() time.Duration { return p.interval }

func (p *Poller) State() State {
	st := p.state.Load().(State)
	st.Refreshing = p.inFlight.Load()
	return st
}

func (p *Poller) Status() Status { return p.status.Load().(Status) }

// Run polls right away and then every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Printf("[poll] every %s", p.interval)
	scheduler.EveryWithLogger(ctx, p.interval, "poll", func(ctx context.Context) error {
		if !p.Refresh(ctx) {
			p.logger.Printf("[poll] skipped tick: fetch in flight")
		}
		return nil
	}, p.logger)
}

// Refresh performs one poll now. It returns false without fetching when a
// poll is already outstanding.
func (p *Poller) Refresh(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer p.inFlight.Store(false)

	st := p.Status()
	st.Running = true
	st.LastRunAt = p.now().Format(time.RFC3339)
	p.status.Store(st)

	payload, err := p.src.Fetch(ctx)
	now := p.now()

	next := p.state.Load().(State)
	next.Loading = false
	if err != nil {
		p.logger.Printf("[poll] fetch failed: %v", err)
		next.Error = err.Error()
	} else {
		next.Categories = Aggregate(p.catalog, payload.Items)
		next.Total = len(payload.Items)
		next.LastUpdated = now
		next.SourceUpdated = payload.LastUpdated
		next.Cached = payload.Cached
		next.Error = ""
	}
	p.state.Store(next)

	st = p.Status()
	st.Running = false
	st.Polls++
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = now.Format(time.RFC3339)
	}
	p.status.Store(st)

	events.Emit(p.hub, "", events.DashboardUpdated, map[string]any{
		"totalResponses": next.Total,
		"error":          next.Error,
		"cached":         next.Cached,
	})
	return true
}
