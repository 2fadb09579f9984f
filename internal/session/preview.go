package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	imagepkg "github.com/youruser/photokit/internal/image"
)

// DefaultDebounce is how long a preview waits for further changes.
const DefaultDebounce = 300 * time.Millisecond

var ErrNoPreview = errors.New("no preview requested")

// RenderFunc turns a snapshot into a composite.
type RenderFunc func(ctx context.Context, st State) (*image.NRGBA, imagepkg.Layout, error)

// CompositeRender renders a snapshot with imagepkg.Composite.
func CompositeRender(_ context.Context, st State) (*image.NRGBA, imagepkg.Layout, error) {
	return imagepkg.Composite(st.SourceImages(), st.Options)
}

// Preview is the result of one render. Generation identifies the request it
// answers.
type Preview struct {
	Generation uint64
	Canvas     *image.NRGBA
	Layout     imagepkg.Layout
	Err        error
}

// Previewer re-renders after changes settle for the debounce delay. Only the
// newest request's result is kept; older renders are cancelled or dropped.
type Previewer struct {
	delay  time.Duration
	render RenderFunc

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	latest  Preview
	changed chan struct{}
}

func NewPreviewer(delay time.Duration, render RenderFunc) *Previewer {
	if render == nil {
		render = CompositeRender
	}
	return &Previewer{
		delay:   delay,
		render:  render,
		changed: make(chan struct{}),
	}
}

// Request schedules a render of st and returns its generation.
func (p *Previewer) Request(st State) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.timer = time.AfterFunc(p.delay, func() { p.run(ctx, gen, st) })
	return gen
}

func (p *Previewer) run(ctx context.Context, gen uint64, st State) {
	if ctx.Err() != nil {
		return
	}
	canvas, l, err := p.render(ctx, st)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return
	}
	p.latest = Preview{Generation: gen, Canvas: canvas, Layout: l, Err: err}
	close(p.changed)
	p.changed = make(chan struct{})
}

// Latest returns the newest delivered preview, which may be older than the
// newest request.
func (p *Previewer) Latest() (Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.latest.Generation > 0
}

// Await blocks until the newest request has been rendered.
func (p *Previewer) Await(ctx context.Context) (Preview, error) {
	for {
		p.mu.Lock()
		if p.gen == 0 {
			p.mu.Unlock()
			return Preview{}, ErrNoPreview
		}
		if p.latest.Generation == p.gen {
			pv := p.latest
			p.mu.Unlock()
			return pv, nil
		}
		ch := p.changed
		p.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Preview{}, ctx.Err()
		}
	}
}

// Stop cancels any pending render.
func (p *Previewer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Previewer) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
	}
	if p.cancel != nil {
		p.cancel()
	}
}
