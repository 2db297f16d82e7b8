package terminal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Option configures a Runner.
type Option func(*Runner)

// WithTypeInterval sets the delay between two typed characters.
func WithTypeInterval(d time.Duration) Option {
	return func(r *Runner) { r.seq.typeInterval = d }
}

// WithPauseDuration sets the delay after an entry's output is complete.
func WithPauseDuration(d time.Duration) Option {
	return func(r *Runner) { r.seq.pauseDuration = d }
}

// WithBlinkInterval sets the cursor blink cadence.
func WithBlinkInterval(d time.Duration) Option {
	return func(r *Runner) { r.blink = d }
}

// WithRender registers a callback that receives a snapshot after every
// change to the display. Calls are serialized.
func WithRender(fn func(State)) Option {
	return func(r *Runner) { r.render = fn }
}

// Runner drives a Sequencer with timers. Typing is armed by the first call to
// Visible; the cursor blinks from the moment Run starts until its context
// ends.
type Runner struct {
	seq    *Sequencer
	blink  time.Duration
	render func(State)

	renderMu    sync.Mutex
	visible     chan struct{}
	visibleOnce sync.Once
	done        chan struct{}
	started     atomic.Bool
}

func NewRunner(script Script, opts ...Option) *Runner {
	r := &Runner{
		seq:     NewSequencer(script),
		blink:   DefaultBlinkInterval,
		visible: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Visible signals that the terminal entered the viewport. Only the first call
// counts.
func (r *Runner) Visible() {
	r.visibleOnce.Do(func() { close(r.visible) })
}

// Done is closed once the whole script has been typed.
func (r *Runner) Done() <-chan struct{} { return r.done }

// State returns the current display snapshot.
func (r *Runner) State() State { return r.seq.State() }

// Run blocks until ctx is cancelled. Every timer it acquires is stopped
// before it returns, so no callback fires after teardown. A Runner plays its
// script once: calls after the first return immediately.
func (r *Runner) Run(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.blinkLoop(ctx)
	}()
	r.typeLoop(ctx)
	wg.Wait()
}

func (r *Runner) blinkLoop(ctx context.Context) {
	if r.blink <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(r.blink)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.seq.ToggleCursor()
			r.emit()
		}
	}
}

func (r *Runner) typeLoop(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-r.visible:
	}

	r.seq.Start()
	r.emit()
	if r.seq.Done() {
		close(r.done)
		return
	}

	timer := time.NewTimer(r.seq.typeInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			next := r.seq.Step()
			r.emit()
			if r.seq.Done() {
				close(r.done)
				return
			}
			timer.Reset(next)
		}
	}
}

func (r *Runner) emit() {
	if r.render == nil {
		return
	}
	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.render(r.seq.State())
}
