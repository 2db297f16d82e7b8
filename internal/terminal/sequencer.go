// Package terminal types a fixed script of shell prompts and their output
// into a display buffer, one character at a time.
package terminal

import (
	"strings"
	"sync"
	"time"
)

// Prompt is rendered before every command.
const Prompt = "$ "

const (
	DefaultTypeInterval  = 50 * time.Millisecond
	DefaultPauseDuration = 1000 * time.Millisecond
	DefaultBlinkInterval = 500 * time.Millisecond
)

// Entry is one command of the script and what it prints.
type Entry struct {
	Prompt string
	Output string
}

// Script is the ordered list of entries a Sequencer types.
type Script []Entry

// Phase is the position of a Sequencer in its state machine.
type Phase int

const (
	Idle Phase = iota
	TypingPrompt
	TypingOutput
	Pausing
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case TypingPrompt:
		return "typing-prompt"
	case TypingOutput:
		return "typing-output"
	case Pausing:
		return "pausing"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// State is a snapshot of what the terminal displays.
type State struct {
	Index         int
	Text          string
	CursorVisible bool
	Phase         Phase
}

// Sequencer is the typing state machine. It knows nothing about time beyond
// the delays it asks for; Runner turns those into timers.
//
// Methods are safe for concurrent use so the cursor blink and the typing
// loop can run on separate goroutines.
type Sequencer struct {
	mu     sync.Mutex
	script Script

	typeInterval  time.Duration
	pauseDuration time.Duration

	phase   Phase
	index   int
	pending []rune
	text    strings.Builder
	cursor  bool
}

// NewSequencer copies script so later changes by the caller cannot alter
// what gets typed.
func NewSequencer(script Script) *Sequencer {
	return &Sequencer{
		script:        append(Script(nil), script...),
		typeInterval:  DefaultTypeInterval,
		pauseDuration: DefaultPauseDuration,
		cursor:        true,
	}
}

// Start leaves Idle and renders the first prompt. Calling it again has no
// effect.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Idle {
		return
	}
	s.text.WriteString(Prompt)
	if len(s.script) == 0 {
		s.phase = Done
		return
	}
	s.enter(TypingPrompt)
}

// Step performs one transition and returns how long to wait before the next
// one. Typing phases append exactly one character per step; the step after a
// string is exhausted appends the line break. Steps while Idle or Done do
// nothing and return zero.
func (s *Sequencer) Step() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case TypingPrompt, TypingOutput:
		if len(s.pending) > 0 {
			s.text.WriteRune(s.pending[0])
			s.pending = s.pending[1:]
			return s.typeInterval
		}
		s.text.WriteByte('\n')
		if s.phase == TypingPrompt {
			s.enter(TypingOutput)
			return s.typeInterval
		}
		s.phase = Pausing
		return s.pauseDuration
	case Pausing:
		s.text.WriteString("\n" + Prompt)
		s.index++
		if s.index == len(s.script) {
			s.phase = Done
			return 0
		}
		s.enter(TypingPrompt)
		return s.typeInterval
	default:
		return 0
	}
}

// enter must be called with mu held.
func (s *Sequencer) enter(p Phase) {
	s.phase = p
	entry := s.script[s.index]
	if p == TypingPrompt {
		s.pending = []rune(entry.Prompt)
	} else {
		s.pending = []rune(entry.Output)
	}
}

// ToggleCursor flips the caret visibility.
func (s *Sequencer) ToggleCursor() {
	s.mu.Lock()
	s.cursor = !s.cursor
	s.mu.Unlock()
}

// Done reports whether the whole script has been typed.
func (s *Sequencer) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == Done
}

// State returns a snapshot of the display.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Index:         s.index,
		Text:          s.text.String(),
		CursorVisible: s.cursor,
		Phase:         s.phase,
	}
}

// Render returns the full expected output of script once typed to the end.
func Render(script Script) string {
	var b strings.Builder
	b.WriteString(Prompt)
	for _, e := range script {
		b.WriteString(e.Prompt + "\n" + e.Output + "\n\n" + Prompt)
	}
	return b.String()
}
