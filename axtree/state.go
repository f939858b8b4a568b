package axtree

import "strings"

// State is a set of boolean node flags.
type State uint16

const (
	StateOffscreen State = 1 << iota
	StateFocusable
	StateFocused
	StateInvisible
	StateDisabled
)

var stateNames = []struct {
	flag State
	name string
}{
	{StateOffscreen, "offscreen"},
	{StateFocusable, "focusable"},
	{StateFocused, "focused"},
	{StateInvisible, "invisible"},
	{StateDisabled, "disabled"},
}

// Has reports whether every flag in f is set.
func (s State) Has(f State) bool { return s&f == f }

// With returns s with f set.
func (s State) With(f State) State { return s | f }

// Without returns s with f cleared.
func (s State) Without(f State) State { return s &^ f }

func (s State) String() string {
	var parts []string
	for _, n := range stateNames {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Relevant is the set of mutation kinds a live region announces
// (aria-relevant).
type Relevant uint8

const (
	RelevantAdditions Relevant = 1 << iota
	RelevantText
	RelevantRemovals
	RelevantAll
)

// DefaultRelevant is the ARIA default, "additions text".
const DefaultRelevant = RelevantAdditions | RelevantText

// Contains reports membership of a single token.
func (r Relevant) Contains(f Relevant) bool { return r&f != 0 }

// ParseRelevant parses an aria-relevant token list. Unknown tokens are
// ignored; an empty list yields an empty set.
func ParseRelevant(s string) Relevant {
	var r Relevant
	for _, tok := range strings.Fields(s) {
		switch strings.ToLower(tok) {
		case "additions":
			r |= RelevantAdditions
		case "text":
			r |= RelevantText
		case "removals":
			r |= RelevantRemovals
		case "all":
			r |= RelevantAll
		}
	}
	return r
}

func (r Relevant) String() string {
	var parts []string
	if r.Contains(RelevantAdditions) {
		parts = append(parts, "additions")
	}
	if r.Contains(RelevantText) {
		parts = append(parts, "text")
	}
	if r.Contains(RelevantRemovals) {
		parts = append(parts, "removals")
	}
	if r.Contains(RelevantAll) {
		parts = append(parts, "all")
	}
	return strings.Join(parts, " ")
}
