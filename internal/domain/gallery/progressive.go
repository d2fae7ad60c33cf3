package gallery

import "sync"

const (
	ProgressStep    = 10
	ProgressCeiling = 90
	ProgressDone    = 100
)

// Progressive tracks one image going from its blurred placeholder to the
// full-size image.
type Progressive struct {
	mu sync.Mutex

	Placeholder string
	Source      string

	progress int
	loaded   bool
	failed   error
}

func NewProgressive(source, placeholder string) *Progressive {
	if placeholder == "" {
		placeholder = source
	}
	return &Progressive{Source: source, Placeholder: placeholder}
}

// Tick advances simulated progress while the load is pending.
func (p *Progressive) Tick() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded && p.progress < ProgressCeiling {
		p.progress += ProgressStep
	}
	return p.progress
}

// Resolve finishes the load. A non-nil err marks the image failed but
// still loaded, so the tile never stays pending.
func (p *Progressive) Resolve(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return
	}
	p.loaded = true
	if err != nil {
		p.failed = err
		return
	}
	p.progress = ProgressDone
}

func (p *Progressive) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Progressive) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

func (p *Progressive) Failed() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Showing is the URL currently displayed.
func (p *Progressive) Showing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded && p.failed == nil {
		return p.Source
	}
	return p.Placeholder
}
