// Package contact implements the browser side of the contact form: the
// submission flow and the relay it uses to reach the server. It must stay
// buildable for js/wasm; the server endpoint lives in contact/api.
package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultResetDelay is how long the confirmation stays up before the form
// clears itself.
const DefaultResetDelay = 3000 * time.Millisecond

var (
	// ErrIncomplete is returned by Submit when a required field is empty.
	ErrIncomplete = errors.New("contact: required field missing")
	// ErrInFlight is returned by Submit while a previous submission is pending.
	ErrInFlight = errors.New("contact: submission already in flight")
)

// Field identifies one input of the form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// Fields are the values typed into the form.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Missing lists the empty required fields in form order.
func (f Fields) Missing() []Field {
	var missing []Field
	if f.Name == "" {
		missing = append(missing, FieldName)
	}
	if f.Email == "" {
		missing = append(missing, FieldEmail)
	}
	if f.Message == "" {
		missing = append(missing, FieldMessage)
	}
	return missing
}

// Complete reports whether every required field is set.
func (f Fields) Complete() bool { return len(f.Missing()) == 0 }

// Status is the submission state of the form.
type Status int

const (
	Idle Status = iota
	InFlight
	Succeeded
	// Failed keeps the typed values so the visitor can retry.
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Relay carries a submission to the server.
type Relay interface {
	Send(ctx context.Context, fields Fields) error
}

// RelayFunc adapts a function to Relay.
type RelayFunc func(ctx context.Context, fields Fields) error

func (f RelayFunc) Send(ctx context.Context, fields Fields) error { return f(ctx, fields) }

// Snapshot is what the form view renders.
type Snapshot struct {
	Fields Fields
	Status Status
	// Err is the reason of the last failure, nil unless Status is Failed.
	Err error
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithResetDelay overrides DefaultResetDelay.
func WithResetDelay(d time.Duration) FlowOption {
	return func(f *Flow) { f.resetDelay = d }
}

// WithOnChange registers a callback invoked with a snapshot after every state
// change. It runs without the flow's lock held.
func WithOnChange(fn func(Snapshot)) FlowOption {
	return func(f *Flow) { f.onChange = fn }
}

// Flow is the contact form state machine:
//
//	Idle -> InFlight -> Succeeded -(reset delay)-> Idle
//	            \-----> Failed -> InFlight (retry) | Idle (edit)
type Flow struct {
	relay      Relay
	resetDelay time.Duration
	onChange   func(Snapshot)

	mu     sync.Mutex
	fields Fields
	status Status
	err    error
	reset  *time.Timer
}

func NewFlow(relay Relay, opts ...FlowOption) *Flow {
	f := &Flow{relay: relay, resetDelay: DefaultResetDelay}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Set stores value into field. The last write wins. Editing a failed form
// clears the failure.
func (f *Flow) Set(field Field, value string) {
	f.mu.Lock()
	switch field {
	case FieldName:
		f.fields.Name = value
	case FieldEmail:
		f.fields.Email = value
	case FieldMessage:
		f.fields.Message = value
	default:
		f.mu.Unlock()
		return
	}
	if f.status == Failed {
		f.status, f.err = Idle, nil
	}
	f.mu.Unlock()
	f.notify()
}

// Submit sends the current fields through the relay. It blocks until the
// relay answers. A second Submit while one is pending returns ErrInFlight
// without touching the state.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.status == InFlight:
		f.mu.Unlock()
		return ErrInFlight
	case f.status == Succeeded:
		// Confirmation still showing; the form is about to clear.
		f.mu.Unlock()
		return ErrInFlight
	case !f.fields.Complete():
		f.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrIncomplete, f.fields.Missing())
	}
	fields := f.fields
	f.status, f.err = InFlight, nil
	f.mu.Unlock()
	f.notify()

	err := f.relay.Send(ctx, fields)

	f.mu.Lock()
	if err != nil {
		f.status, f.err = Failed, err
	} else {
		f.status = Succeeded
		f.reset = time.AfterFunc(f.resetDelay, f.clear)
	}
	f.mu.Unlock()
	f.notify()

	if err != nil {
		return fmt.Errorf("contact: send: %w", err)
	}
	return nil
}

func (f *Flow) clear() {
	f.mu.Lock()
	if f.status != Succeeded {
		f.mu.Unlock()
		return
	}
	f.status = Idle
	f.fields = Fields{}
	f.reset = nil
	f.mu.Unlock()
	f.notify()
}

// Snapshot returns the current form state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{Fields: f.fields, Status: f.status, Err: f.err}
}

// Close stops a pending reset so nothing fires after the view is torn down.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reset != nil {
		f.reset.Stop()
		f.reset = nil
	}
}

func (f *Flow) notify() {
	if f.onChange != nil {
		f.onChange(f.Snapshot())
	}
}
