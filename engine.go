// Package axlive hosts the accessibility arena for a set of browser pages:
// it keeps the desktop tree current from CDP snapshots, speaks live-region
// changes through the liveregion announcer, and moves a navigation cursor
// with the treewalker. HTTP and MCP surfaces drive the same operations.
//
// All tree access happens on the goroutine running Engine.Run; every
// exported method hands its work to that loop.
package axlive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/axlive/axtree"
	"github.com/hazyhaar/axlive/history"
	"github.com/hazyhaar/axlive/internal/cdpbridge"
	"github.com/hazyhaar/axlive/internal/config"
	"github.com/hazyhaar/axlive/internal/idgen"
	"github.com/hazyhaar/axlive/internal/msgs"
	"github.com/hazyhaar/axlive/liveregion"
	"github.com/hazyhaar/axlive/output"
	"github.com/hazyhaar/axlive/treewalker"
)

var (
	ErrUnknownPage = errors.New("axlive: unknown page")
	ErrNoHistory   = errors.New("axlive: history is not enabled")
	ErrStopped     = errors.New("axlive: engine stopped")
)

// Config configures an Engine.
type Config struct {
	Announcer liveregion.Config

	// Classic and Inactive mirror the screen reader's global mode; either
	// one silences live regions.
	Classic  bool
	Inactive bool

	// Locale selects the spoken strings (BCP 47). Default: English.
	Locale string

	// History backs the announcements query. Optional.
	History *history.Store

	// OnFocus runs after a page gains focus, outside the engine loop (the
	// CLI activates the Chrome tab there).
	OnFocus func(pageID string) error

	Logger   *slog.Logger
	NewNavID idgen.Generator
	NewAnnID idgen.Generator
}

// ConfigFrom maps the file configuration onto an engine Config.
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	ann := liveregion.DefaultConfig()
	ann.QueueTime = c.Announcer.QueueTime
	ann.MinSameNode = c.Announcer.MinSameNode
	ann.AnnounceFromBackgroundTabs = *c.Announcer.AnnounceFromBackgroundTabs
	ann.Logger = logger
	return Config{
		Announcer: ann,
		Classic:   c.Mode.Classic,
		Inactive:  !*c.Mode.Active,
		Locale:    c.Locale,
		Logger:    logger,
	}
}

type pageNodes struct {
	tab    axtree.NodeID
	window axtree.NodeID
}

// Engine owns the arena and the cursor.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	tree     *axtree.Tree
	tabList  axtree.NodeID
	pages    map[string]pageNodes
	order    []string
	cursor   axtree.NodeID
	printer  *msgs.Printer
	renderer output.Renderer
	dispatch output.Dispatcher
	ann      *liveregion.Announcer

	cmds    chan func()
	stopped chan struct{}
}

// New builds an engine with an empty desktop: a tab strip and no windows.
// The cursor starts on the desktop.
func New(cfg Config, d output.Dispatcher) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewNavID == nil {
		cfg.NewNavID = idgen.Navigation
	}
	if cfg.NewAnnID == nil {
		cfg.NewAnnID = idgen.Announcement
	}
	if cfg.Announcer.Logger == nil {
		cfg.Announcer.Logger = cfg.Logger
	}
	if cfg.Announcer.Now == nil {
		cfg.Announcer.Now = time.Now
	}

	tree := axtree.New(axtree.Attrs{Role: axtree.RoleDesktop, ExternalID: "desktop"})
	e := &Engine{
		cfg:      cfg,
		logger:   cfg.Logger,
		tree:     tree,
		tabList:  tree.AppendChild(tree.Root(), axtree.Attrs{Role: axtree.RoleTabList, ExternalID: "tabs"}),
		pages:    make(map[string]pageNodes),
		cursor:   tree.Root(),
		printer:  msgs.NewPrinter(cfg.Locale),
		dispatch: d,
		cmds:     make(chan func()),
		stopped:  make(chan struct{}),
	}
	e.renderer = output.NewTextRenderer(e.printer)
	h := host{e}
	e.ann = liveregion.New(cfg.Announcer, liveregion.Deps{
		Tree:       tree,
		Range:      h,
		Mode:       h,
		Views:      h,
		Renderer:   e.renderer,
		Dispatcher: d,
		Messages:   e.printer,
		NewID:      cfg.NewAnnID,
	})
	return e
}

// Run serves commands until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.stopped)
	e.logger.Info("axlive: engine started", "locale", e.printer.Locale())
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("axlive: engine stopped")
			return ctx.Err()
		case fn := <-e.cmds:
			fn()
		}
	}
}

// do runs fn on the engine loop and waits for it. ctx only bounds the
// hand-off: once the loop has taken fn, do waits for it to finish, since fn
// writes into its caller's variables.
func (e *Engine) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case e.cmds <- func() { fn(); close(done) }:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Inspect runs fn against the arena on the engine loop. fn must not retain
// the tree.
func (e *Engine) Inspect(ctx context.Context, fn func(t *axtree.Tree)) error {
	return e.do(ctx, func() { fn(e.tree) })
}

// AddPage registers a page: a tab in the tab strip and a window holding its
// document. The first page added takes focus. Adding a known page is a
// no-op.
func (e *Engine) AddPage(ctx context.Context, id, title string) error {
	return e.do(ctx, func() { e.addPage(id, title) })
}

func (e *Engine) addPage(id, title string) pageNodes {
	if p, ok := e.pages[id]; ok {
		return p
	}
	p := pageNodes{
		tab: e.tree.AppendChild(e.tabList, axtree.Attrs{
			Role:       axtree.RoleTab,
			ExternalID: "tab:" + id,
			Name:       title,
		}),
		window: e.tree.AppendChild(e.tree.Root(), axtree.Attrs{
			Role:       axtree.RoleWindow,
			ExternalID: "window:" + id,
			Name:       title,
		}),
	}
	e.pages[id] = p
	e.order = append(e.order, id)
	if len(e.pages) == 1 {
		e.focus(id)
	}
	e.logger.Info("axlive: page added", "page", id)
	return p
}

// Focus gives page id's window focus and takes it from every other window.
func (e *Engine) Focus(ctx context.Context, id string) error {
	var known bool
	if err := e.do(ctx, func() { known = e.focus(id) }); err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	if e.cfg.OnFocus != nil {
		if err := e.cfg.OnFocus(id); err != nil {
			e.logger.Warn("axlive: focus hook failed", "page", id, "error", err)
		}
	}
	return nil
}

func (e *Engine) focus(id string) bool {
	target, ok := e.pages[id]
	if !ok {
		return false
	}
	for _, p := range e.pages {
		focused := p.window == target.window
		e.tree.Update(p.window, func(a *axtree.Attrs) {
			if focused {
				a.State = a.State.With(axtree.StateFocused)
			} else {
				a.State = a.State.Without(axtree.StateFocused)
			}
		})
	}
	return true
}

// ApplySnapshot reconciles a page's document with a fresh CDP tree and
// announces the live-region changes it finds.
func (e *Engine) ApplySnapshot(ctx context.Context, snap cdpbridge.Snapshot) error {
	return e.do(ctx, func() { e.applySnapshot(ctx, snap) })
}

func (e *Engine) applySnapshot(ctx context.Context, snap cdpbridge.Snapshot) {
	p := e.addPage(snap.PageID, "")
	n := cdpbridge.Sync(e.tree, p.window, snap.PageID, snap.Nodes, func(c axtree.TreeChange) {
		e.handleTreeChange(ctx, c)
	})

	if doc := e.tree.FirstChild(p.window); doc != axtree.None {
		title := e.tree.Node(doc).Name
		for _, id := range []axtree.NodeID{p.tab, p.window} {
			e.tree.Update(id, func(a *axtree.Attrs) { a.Name = title })
		}
	}
	if !e.tree.Valid(e.cursor) {
		e.cursor = p.window
	}
	e.logger.Debug("axlive: snapshot applied", "page", snap.PageID, "nodes", len(snap.Nodes), "changes", n)
}

// HandleTreeChange feeds one host mutation to the announcer. Changes
// outside live regions are dropped.
func (e *Engine) HandleTreeChange(ctx context.Context, c axtree.TreeChange) error {
	return e.do(ctx, func() { e.handleTreeChange(ctx, c) })
}

func (e *Engine) handleTreeChange(ctx context.Context, c axtree.TreeChange) {
	if !axtree.IsLiveRegionChange(e.tree, c) {
		return
	}
	e.ann.OnTreeChange(ctx, c)
}

// CursorInfo describes the node under the cursor.
type CursorInfo struct {
	Node   axtree.NodeID `json:"node"`
	Role   axtree.Role   `json:"role"`
	Name   string        `json:"name,omitempty"`
	Page   string        `json:"page,omitempty"`
	Speech string        `json:"speech,omitempty"`
	Moved  bool          `json:"moved"`
}

// Cursor returns the node under the cursor.
func (e *Engine) Cursor(ctx context.Context) (CursorInfo, error) {
	var info CursorInfo
	err := e.do(ctx, func() { info = e.cursorInfo(false) })
	return info, err
}

// Next moves the cursor to the next interesting node, wrapping around the
// desktop, and speaks it.
func (e *Engine) Next(ctx context.Context) (CursorInfo, error) {
	return e.move(ctx, true)
}

// Previous is Next backwards.
func (e *Engine) Previous(ctx context.Context) (CursorInfo, error) {
	return e.move(ctx, false)
}

func (e *Engine) move(ctx context.Context, forward bool) (CursorInfo, error) {
	var info CursorInfo
	err := e.do(ctx, func() {
		target := treewalker.MoveToNode(e.tree, e.cursor, e.tree.Root(), forward)
		if target == axtree.None {
			info = e.cursorInfo(false)
			return
		}
		e.cursor = target
		info = e.cursorInfo(true)
		e.speakCursor(ctx)
	})
	return info, err
}

func (e *Engine) speakCursor(ctx context.Context) {
	b := output.NewBuilder(e.tree, e.renderer).
		WithSpeech(e.cursor).
		WithCategory(output.CategoryNav).
		WithQueueMode(output.QueueModeFlush)
	if !b.HasSpeech() {
		return
	}
	out := b.Build(e.cfg.NewNavID(), e.cfg.Announcer.Now())
	if err := e.dispatch.Go(ctx, out); err != nil {
		e.logger.Warn("axlive: dispatch failed", "id", out.ID, "error", err)
	}
}

func (e *Engine) cursorInfo(moved bool) CursorInfo {
	n := e.tree.Node(e.cursor)
	if n == nil {
		return CursorInfo{Node: axtree.None}
	}
	return CursorInfo{
		Node:   e.cursor,
		Role:   n.Role,
		Name:   n.Name,
		Page:   e.pageOf(e.cursor),
		Speech: output.NewBuilder(e.tree, e.renderer).WithSpeech(e.cursor).Build("", e.cfg.Announcer.Now()).Text(),
		Moved:  moved,
	}
}

// pageOf names the page whose tab or window contains id.
func (e *Engine) pageOf(id axtree.NodeID) string {
	for ; id != axtree.None; id = e.tree.Parent(id) {
		for pid, p := range e.pages {
			if id == p.window || id == p.tab {
				return pid
			}
		}
	}
	return ""
}

// Pages lists page IDs in the order they were added.
func (e *Engine) Pages(ctx context.Context) ([]string, error) {
	var ids []string
	err := e.do(ctx, func() { ids = append(ids, e.order...) })
	return ids, err
}

// Announcements returns recent speech from the history store, newest first.
func (e *Engine) Announcements(ctx context.Context, limit int) ([]output.Output, error) {
	if e.cfg.History == nil {
		return nil, ErrNoHistory
	}
	return e.cfg.History.Recent(ctx, limit)
}

// host adapts the engine to the announcer's collaborator interfaces. Its
// methods run on the engine loop.
type host struct{ e *Engine }

func (h host) CurrentRange() (axtree.NodeID, bool) {
	return h.e.cursor, h.e.tree.Valid(h.e.cursor)
}

func (h host) Classic() bool { return h.e.cfg.Classic }
func (h host) Active() bool  { return !h.e.cfg.Inactive }

func (h host) TopLevelView(t *axtree.Tree, id axtree.NodeID) (axtree.NodeID, bool) {
	for ; id != axtree.None; id = t.Parent(id) {
		if t.Role(id) == axtree.RoleWindow {
			return id, t.Node(id).State.Has(axtree.StateFocused)
		}
	}
	return axtree.None, false
}
