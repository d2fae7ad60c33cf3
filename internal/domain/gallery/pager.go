package gallery

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultPageSize    = 12
	DefaultLoadLatency = 500 * time.Millisecond
)

// Pager reveals a list page by page, as for infinite scroll or a
// "load more" button. It is safe for concurrent use.
type Pager struct {
	mu       sync.Mutex
	pageSize int
	latency  time.Duration

	total   int
	visible int
	loading bool
	gen     uint64
}

// Ticket identifies one in-flight load. Tickets issued before a Reset
// are stale.
type Ticket struct {
	gen uint64
}

type PagerOption func(*Pager)

func WithPageSize(n int) PagerOption {
	return func(p *Pager) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

func WithLatency(d time.Duration) PagerOption {
	return func(p *Pager) {
		if d >= 0 {
			p.latency = d
		}
	}
}

func NewPager(total int, opts ...PagerOption) *Pager {
	p := &Pager{
		pageSize: DefaultPageSize,
		latency:  DefaultLoadLatency,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.total = max(total, 0)
	p.visible = min(p.pageSize, p.total)
	return p
}

// Resume restores a pager to an already revealed count, clamped into
// [min(pageSize, total), total].
func (p *Pager) Resume(visible int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = min(max(visible, min(p.pageSize, p.total)), p.total)
}

func (p *Pager) PageSize() int { return p.pageSize }

func (p *Pager) Visible() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Pager) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible < p.total
}

func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Request starts a load. It returns false when everything is visible or a
// load is already in flight.
func (p *Pager) Request() (Ticket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading || p.visible >= p.total {
		return Ticket{}, false
	}
	p.loading = true
	return Ticket{gen: p.gen}, true
}

// Complete reveals the next page for t. Stale tickets are ignored.
func (p *Pager) Complete(t Ticket) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.gen != p.gen || !p.loading {
		return false
	}
	p.visible = min(p.visible+p.pageSize, p.total)
	p.loading = false
	return true
}

// Reset replaces the underlying list and invalidates in-flight loads.
func (p *Pager) Reset(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.loading = false
	p.total = max(total, 0)
	p.visible = min(p.pageSize, p.total)
}

// LoadMore is Request, the load latency, then Complete. It reports whether
// a page was revealed.
func (p *Pager) LoadMore(ctx context.Context) (bool, error) {
	t, ok := p.Request()
	if !ok {
		return false, nil
	}

	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			p.abandon(t)
			return false, ctx.Err()
		case <-timer.C:
		}
	}
	return p.Complete(t), nil
}

func (p *Pager) abandon(t Ticket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.gen == p.gen {
		p.loading = false
	}
}
