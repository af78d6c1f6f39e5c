// Package tracer implements peg.Hooks, the external rule-tracing
// collaborator spec.md leaves out of the core engine. Each call to
// NewSession starts a fresh trace with its own id, so parses traced by
// different sessions (for example on distinct Driver instances) never
// interleave their entries under one identity. A registry holds one Hooks
// value at a time, so parses against the same registry share its session.
package tracer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	esraplog "github.com/mister-walter/esrap/log"
)

// Entry records one rule invocation's enter or exit event.
type Entry struct {
	Session  string
	Rule     string
	Position int
	Phase    string // "enter" or "exit"
	Ok       bool   // only meaningful on exit
	End      int    // only meaningful on exit
	At       time.Time
}

// Session collects the Entry log for a single parse, and implements
// peg.Hooks so it can be installed via Registry.SetHooks.
type Session struct {
	id     string
	logger esraplog.Logger

	mu      sync.Mutex
	entries []Entry
	depth   int
}

// NewSession starts a new trace session. logger may be nil, in which case
// entries are collected but nothing is logged as it happens.
func NewSession(logger esraplog.Logger) *Session {
	return &Session{id: uuid.NewString(), logger: logger}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Entries returns the entries recorded so far, oldest first.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// OnEnterRule implements peg.Hooks.
func (s *Session) OnEnterRule(symbol string, pos int) {
	s.mu.Lock()
	s.depth++
	depth := s.depth
	s.entries = append(s.entries, Entry{Session: s.id, Rule: symbol, Position: pos, Phase: "enter", At: stamp()})
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.WithFields(esraplog.Fields{
			"session": s.id,
			"rule":    symbol,
			"pos":     pos,
		}).Debug(indent(depth) + "-> " + symbol)
	}
}

// OnExitRule implements peg.Hooks.
func (s *Session) OnExitRule(symbol string, pos int, ok bool, end int) {
	s.mu.Lock()
	depth := s.depth
	if s.depth > 0 {
		s.depth--
	}
	s.entries = append(s.entries, Entry{Session: s.id, Rule: symbol, Position: pos, Phase: "exit", Ok: ok, End: end, At: stamp()})
	s.mu.Unlock()

	if s.logger != nil {
		result := "fail"
		if ok {
			result = fmt.Sprintf("ok@%d", end)
		}
		s.logger.WithFields(esraplog.Fields{
			"session": s.id,
			"rule":    symbol,
			"pos":     pos,
			"result":  result,
		}).Debug(indent(depth) + "<- " + symbol + " " + result)
	}
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// stamp returns the current time. It is its own function so trace replay
// tests can substitute a fixed clock without depending on wall-clock time
// in assertions.
var stamp = time.Now
