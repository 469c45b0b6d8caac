package ingestion

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/neurobridge-docchat/internal/domain"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
)

const updatesBuffer = 16

// Poller watches one document's status until it is terminal, fails, or is
// stopped. Latest stays readable after the loop exits.
type Poller struct {
	c  *Coordinator
	id string

	updates chan domain.Document

	mu        sync.Mutex
	latest    domain.Document
	hasLatest bool
	err       error
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// PollStatus starts polling documentID. The first status fetch is
// immediate. An empty id yields a poller that never polls.
func (c *Coordinator) PollStatus(ctx context.Context, documentID string) *Poller {
	p := &Poller{
		c:       c,
		id:      strings.TrimSpace(documentID),
		updates: make(chan domain.Document, updatesBuffer),
		done:    make(chan struct{}),
	}
	if p.id == "" {
		close(p.done)
		return p
	}
	p.start(ctx)
	return p
}

func (p *Poller) DocumentID() string { return p.id }

func (p *Poller) Latest() (domain.Document, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLatest
}

// Err is the failure that ended polling, if any.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Updates delivers each observed status. Slow readers miss updates; Latest
// always has the newest one.
func (p *Poller) Updates() <-chan domain.Document { return p.updates }

// Done is closed when the current polling loop exits.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop ends polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	<-done
}

// Restart resumes a stopped poller. It is a no-op while polling.
func (p *Poller) Restart(ctx context.Context) {
	if p.id == "" {
		return
	}
	p.start(ctx)
}

// Wait blocks until polling ends or ctx is done and returns the latest status.
func (p *Poller) Wait(ctx context.Context) (domain.Document, error) {
	select {
	case <-p.Done():
	case <-ctx.Done():
		p.Stop()
		return p.latestOrZero(), ctx.Err()
	}
	return p.latestOrZero(), p.Err()
}

func (p *Poller) latestOrZero() domain.Document {
	doc, _ := p.Latest()
	return doc
}

func (p *Poller) start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.running = true
	p.err = nil
	p.cancel = cancel
	p.done = done
	go p.run(ctx, cancel, done)
}

func (p *Poller) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	log := p.c.log.With("document_id", p.id)
	timer := time.NewTimer(0)
	defer timer.Stop()
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		doc, err := p.c.api.DocumentStatus(ctx, p.id)
		if ctx.Err() != nil {
			// Stopped mid-request; the result is discarded.
			return
		}
		if err != nil {
			failures++
			if !apierr.Retryable(err) || failures >= p.c.maxPollFailures {
				log.Warn("status polling stopped", "failures", failures, "kind", apierr.KindOf(err), "error", err)
				p.fail(err)
				return
			}
			log.Debug("status poll failed; retrying", "failures", failures, "error", err)
			timer.Reset(p.c.pollInterval)
			continue
		}
		failures = 0
		if doc.ID == "" {
			doc.ID = p.id
		}
		p.observe(doc)
		if doc.Status.Terminal() {
			p.c.terminal(doc)
			return
		}
		timer.Reset(p.c.pollInterval)
	}
}

func (p *Poller) observe(doc domain.Document) {
	p.mu.Lock()
	p.latest = doc
	p.hasLatest = true
	p.mu.Unlock()
	select {
	case p.updates <- doc:
	default:
	}
}

func (p *Poller) fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}
