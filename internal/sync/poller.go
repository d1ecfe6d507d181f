package sync

import (
	"context"
	"log"
	gosync "sync"
	"time"

	"github.com/natea/berserk2/internal/source"
)

// iterationTimeout is the maximum time allowed for one polling iteration
// of a single source.
const iterationTimeout = 60 * time.Second

// Poller runs registered sources periodically, one iteration at a time.
// Iterations are single-flight: a tick that arrives while an iteration
// is still running is absorbed by the channel select, so no source ever
// runs concurrently with itself.
type Poller struct {
	sources   []source.Source
	interval  time.Duration
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller with the given polling interval.
func New(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{
		interval:  interval,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Register adds a source to the polling rotation.
func (p *Poller) Register(src source.Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources = append(p.sources, src)
}

// RunOnce executes a single polling iteration across every enabled
// source. One source failing is logged and does not stop the others.
func (p *Poller) RunOnce(ctx context.Context) {
	p.mu.Lock()
	sources := make([]source.Source, len(p.sources))
	copy(sources, p.sources)
	p.mu.Unlock()

	for _, src := range sources {
		if !src.Enabled() {
			continue
		}

		iterCtx, cancel := context.WithTimeout(ctx, iterationTimeout)
		err := src.Run(iterCtx)
		cancel()

		if err != nil {
			if source.IsAuthError(err) {
				log.Printf("poller: %s authentication failed, check credentials: %v", src.Name(), err)
				continue
			}
			log.Printf("poller: %s iteration failed: %v", src.Name(), err)
		}
	}
}

// Start launches the polling loop in a goroutine. The loop runs an
// immediate iteration, then one per interval or manual trigger, until
// Stop is called or the context is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.RunOnce(ctx)
			case <-p.triggerCh:
				p.RunOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Trigger requests an immediate iteration without blocking.
func (p *Poller) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}
