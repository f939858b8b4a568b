// Package liveregion decides whether a live-region mutation is spoken, and
// how. It deduplicates bursts of announcements for the same node and picks
// between queueing behind pending speech and flushing stale live speech.
//
// An Announcer is not safe for concurrent use: the host delivers tree
// changes from a single goroutine, in detection order.
package liveregion

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/axlive/axtree"
	"github.com/hazyhaar/axlive/internal/idgen"
	"github.com/hazyhaar/axlive/internal/msgs"
	"github.com/hazyhaar/axlive/output"
)

const (
	// DefaultQueueTime is the silence after which a new announcement
	// flushes pending live speech instead of queueing behind it.
	DefaultQueueTime = 5000 * time.Millisecond
	// DefaultMinSameNode is the window within which a node already spoken
	// is not spoken again.
	DefaultMinSameNode = 20 * time.Millisecond
)

// Config holds the announcer tunables. Each Announcer owns its copy.
//
// A zero QueueTime or MinSameNode takes the default. A negative value is
// kept and acts as an empty window: a negative MinSameNode disables
// deduplication, a negative QueueTime flushes on every focused
// announcement.
type Config struct {
	QueueTime   time.Duration
	MinSameNode time.Duration

	// AnnounceFromBackgroundTabs lets mutations in unfocused views speak.
	// DefaultConfig sets it; the zero value suppresses them.
	AnnounceFromBackgroundTabs bool

	// Now is the clock. Default: time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		QueueTime:                  DefaultQueueTime,
		MinSameNode:                DefaultMinSameNode,
		AnnounceFromBackgroundTabs: true,
	}
}

func (c *Config) defaults() {
	if c.QueueTime == 0 {
		c.QueueTime = DefaultQueueTime
	}
	if c.MinSameNode == 0 {
		c.MinSameNode = DefaultMinSameNode
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// RangeProvider exposes the host's navigation cursor.
type RangeProvider interface {
	// CurrentRange returns the node under the cursor, and false when no
	// cursor is established.
	CurrentRange() (axtree.NodeID, bool)
}

// ModeProvider exposes the host's global accessibility mode.
type ModeProvider interface {
	Classic() bool
	Active() bool
}

// ViewResolver finds the top-level view (browser window, app) containing a
// node.
type ViewResolver interface {
	// TopLevelView returns the containing view, or axtree.None, and whether
	// that view has focus.
	TopLevelView(t *axtree.Tree, id axtree.NodeID) (view axtree.NodeID, focused bool)
}

// Deps are the collaborators an Announcer reads from and writes to.
type Deps struct {
	Tree       *axtree.Tree
	Range      RangeProvider
	Mode       ModeProvider
	Views      ViewResolver
	Renderer   output.Renderer
	Dispatcher output.Dispatcher
	Messages   *msgs.Printer
	NewID      idgen.Generator
}

// Announcer turns live-region tree changes into speech outputs.
type Announcer struct {
	cfg    Config
	d      Deps
	logger *slog.Logger

	lastAnnouncement time.Time
	announced        map[axtree.NodeID]struct{}
}

// New creates an Announcer. Renderer, Messages and NewID default to the
// English text renderer and announcement UUIDs.
func New(cfg Config, d Deps) *Announcer {
	cfg.defaults()
	if d.Messages == nil {
		d.Messages = msgs.NewPrinter("")
	}
	if d.Renderer == nil {
		d.Renderer = output.NewTextRenderer(d.Messages)
	}
	if d.NewID == nil {
		d.NewID = idgen.Announcement
	}
	return &Announcer{
		cfg:       cfg,
		d:         d,
		logger:    cfg.Logger,
		announced: make(map[axtree.NodeID]struct{}),
	}
}

// LastAnnouncement returns the time of the last emitted (or suppressed
// duplicate) announcement. Zero before the first one.
func (a *Announcer) LastAnnouncement() time.Time { return a.lastAnnouncement }

// OnTreeChange handles one mutation. Every rejection is a silent no-op.
func (a *Announcer) OnTreeChange(ctx context.Context, c axtree.TreeChange) {
	t := a.d.Tree
	node := t.Node(c.Target)
	if node == nil || node.ContainerLiveStatus == "" {
		return
	}
	if a.d.Mode.Classic() || !a.d.Mode.Active() {
		return
	}
	cur, ok := a.d.Range.CurrentRange()
	if !ok {
		return
	}
	if !a.cfg.AnnounceFromBackgroundTabs && t.Role(cur) != axtree.RoleDesktop {
		if view, focused := a.d.Views.TopLevelView(t, c.Target); view == axtree.None || !focused {
			a.logger.Debug("liveregion: background view suppressed", "node", c.Target)
			return
		}
	}

	relevant := node.ContainerLiveRelevant
	additions := relevant.Contains(axtree.RelevantAdditions)
	text := relevant.Contains(axtree.RelevantText)
	removals := relevant.Contains(axtree.RelevantRemovals)
	all := relevant.Contains(axtree.RelevantAll)

	// The branches are independent: an "all" region runs every one of them,
	// and the dedup window absorbs the repeats.
	if all || (additions && (c.Type == axtree.NodeCreated || c.Type == axtree.SubtreeCreated)) {
		a.emitAnnouncement(ctx, c.Target, "")
	}
	if all || (text && c.Type == axtree.TextChanged) {
		a.emitAnnouncement(ctx, c.Target, "")
	}
	if all || (removals && c.Type == axtree.NodeRemoved) {
		a.emitAnnouncement(ctx, c.Target, a.d.Messages.Get(msgs.LiveRegionsRemoved))
	}
}

func (a *Announcer) emitAnnouncement(ctx context.Context, id axtree.NodeID, prefix string) {
	t := a.d.Tree
	n := t.Node(id)
	if n == nil || n.ContainerLiveBusy {
		return
	}

	now := a.cfg.Now()
	if now.Sub(a.lastAnnouncement) > a.cfg.MinSameNode {
		clear(a.announced)
	}

	for {
		n := t.Node(id)
		parent := t.Parent(id)
		if !n.ContainerLiveAtomic || n.LiveAtomic || parent == axtree.None {
			break
		}
		id = parent
	}

	if _, dup := a.announced[id]; dup {
		a.lastAnnouncement = now
		a.logger.Debug("liveregion: duplicate suppressed", "node", id)
		return
	}

	a.emitForNode(ctx, id, prefix, now)
}

func (a *Announcer) emitForNode(ctx context.Context, id axtree.NodeID, prefix string, now time.Time) {
	t := a.d.Tree
	b := output.NewBuilder(t, a.d.Renderer)
	if prefix != "" {
		b.Prepend(prefix)
	}
	b.WithSpeech(id)
	if !b.HasSpeech() && t.Node(id).LiveAtomic {
		b.Format(output.JoinedDescendants, id)
	}
	b.WithCategory(output.CategoryLive)

	if !b.HasSpeech() {
		a.logger.Debug("liveregion: nothing to speak", "node", id)
		return
	}

	view, focused := a.d.Views.TopLevelView(t, id)
	forceQueue := view == axtree.None || !focused
	if now.Sub(a.lastAnnouncement) > a.cfg.QueueTime && !forceQueue {
		b.WithQueueMode(output.QueueModeCategoryFlush)
	} else {
		b.WithQueueMode(output.QueueModeQueue)
	}

	a.announced[id] = struct{}{}
	out := b.Build(a.d.NewID(), now)
	if err := a.d.Dispatcher.Go(ctx, out); err != nil {
		a.logger.Warn("liveregion: dispatch failed", "id", out.ID, "error", err)
	}
	a.lastAnnouncement = now
}
