package core

import (
	"fmt"
	"strings"
)

// Subject identifies the research target for one workflow run: a ticker
// symbol plus an optional display name resolved during validation. It is
// immutable for the duration of a run.
type Subject struct {
	Symbol string
	Name   string
}

// maxSymbolLen bounds ticker symbols; exchanges use up to five characters,
// some European listings six.
const maxSymbolLen = 6

// NewSubject normalizes and validates a raw ticker symbol. The symbol is
// upper-cased and trimmed; it must be non-empty, at most six characters and
// consist of letters and digits only.
func NewSubject(symbol string) (Subject, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return Subject{}, fmt.Errorf("ticker symbol is empty")
	}
	if len(s) > maxSymbolLen {
		return Subject{}, fmt.Errorf("ticker symbol %q exceeds %d characters", s, maxSymbolLen)
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return Subject{}, fmt.Errorf("ticker symbol %q contains invalid character %q", s, r)
		}
	}
	return Subject{Symbol: s}, nil
}

// WithName returns a copy of the subject carrying the resolved display name.
func (s Subject) WithName(name string) Subject {
	s.Name = name
	return s
}

// String returns the ticker symbol.
func (s Subject) String() string { return s.Symbol }
