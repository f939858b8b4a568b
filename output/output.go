// Package output defines the speech output requests axlive produces and the
// sinks that stand in for the speech subsystem. An Output is a value object:
// once dispatched it is owned by the sinks, and queue/flush semantics are
// theirs to honour.
package output

import (
	"strings"
	"time"

	"github.com/hazyhaar/axlive/axtree"
)

// Category tags an output so the speech subsystem can prioritise and
// interrupt by kind.
type Category string

const (
	CategoryLive Category = "live" // live-region announcements
	CategoryNav  Category = "nav"  // navigation feedback
)

// QueueMode tells the speech subsystem how to schedule an output relative
// to pending speech.
type QueueMode string

const (
	QueueModeQueue         QueueMode = "queue"          // append after pending speech
	QueueModeCategoryFlush QueueMode = "category_flush" // drop pending speech of the same category first
	QueueModeFlush         QueueMode = "flush"          // drop all pending speech first
)

// JoinedDescendants is the format directive that speaks the text of every
// descendant of the range node.
const JoinedDescendants = "$joinedDescendants"

// Output is one speech request.
type Output struct {
	ID        string        `json:"id"`
	Prefix    string        `json:"prefix,omitempty"`
	Range     axtree.NodeID `json:"range"`
	Role      axtree.Role   `json:"role"`
	Speech    []string      `json:"speech"`
	Category  Category      `json:"category"`
	QueueMode QueueMode     `json:"queue_mode"`
	Timestamp int64         `json:"timestamp"` // epoch milliseconds
}

// Text joins the speech spans.
func (o Output) Text() string {
	return strings.Join(o.Speech, " ")
}

// Builder assembles an Output against a tree. Methods chain; nothing is
// dispatched until the caller hands Build's result to a Dispatcher.
type Builder struct {
	tree     *axtree.Tree
	renderer Renderer
	out      Output
}

// NewBuilder creates a Builder reading t through r.
func NewBuilder(t *axtree.Tree, r Renderer) *Builder {
	return &Builder{
		tree:     t,
		renderer: r,
		out:      Output{Range: axtree.None, QueueMode: QueueModeQueue},
	}
}

// Prepend adds an already-localized prefix ahead of any speech.
func (b *Builder) Prepend(prefix string) *Builder {
	if prefix == "" {
		return b
	}
	b.out.Prefix = prefix
	b.out.Speech = append([]string{prefix}, b.out.Speech...)
	return b
}

// WithSpeech sets the range to id and appends its rendered speech.
func (b *Builder) WithSpeech(id axtree.NodeID) *Builder {
	b.out.Range = id
	b.out.Role = b.tree.Role(id)
	b.out.Speech = append(b.out.Speech, b.renderer.Render(b.tree, id)...)
	return b
}

// Format appends the expansion of a format directive for id. Only
// JoinedDescendants is understood; other directives are spoken literally.
func (b *Builder) Format(directive string, id axtree.NodeID) *Builder {
	var s string
	switch directive {
	case JoinedDescendants:
		s = b.tree.JoinedDescendants(id)
	default:
		s = directive
	}
	if s != "" {
		b.out.Speech = append(b.out.Speech, s)
	}
	return b
}

func (b *Builder) WithCategory(c Category) *Builder {
	b.out.Category = c
	return b
}

func (b *Builder) WithQueueMode(m QueueMode) *Builder {
	b.out.QueueMode = m
	return b
}

// HasSpeech reports whether anything would be spoken.
func (b *Builder) HasSpeech() bool {
	for _, s := range b.out.Speech {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Build stamps the output with id and at.
func (b *Builder) Build(id string, at time.Time) Output {
	out := b.out
	out.ID = id
	out.Timestamp = at.UnixMilli()
	out.Speech = append([]string(nil), b.out.Speech...)
	return out
}
