package cdpbridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"
)

// Snapshot is one full accessibility tree of a page.
type Snapshot struct {
	PageID string
	URL    string
	Nodes  []*proto.AccessibilityAXNode
	At     time.Time
}

// PageConfig describes one tab to open.
type PageConfig struct {
	ID  string
	URL string

	// Stealth opens the tab through go-rod/stealth.
	Stealth bool

	// Debounce is the quiet period after the last nodesUpdated event before
	// the tree is refetched. Default: 50ms.
	Debounce time.Duration

	// RefreshInterval and RefreshBurst throttle full-tree refetches.
	// Defaults: 150ms, burst 4.
	RefreshInterval time.Duration
	RefreshBurst    int

	Logger *slog.Logger
}

func (c *PageConfig) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = 50 * time.Millisecond
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 150 * time.Millisecond
	}
	if c.RefreshBurst <= 0 {
		c.RefreshBurst = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Page tracks the accessibility tree of one tab.
type Page struct {
	cfg  PageConfig
	page *rod.Page
}

// OpenPage creates a tab, navigates to cfg.URL and enables the
// Accessibility domain so AXNodeIds stay stable between fetches.
func OpenPage(ctx context.Context, mgr *Manager, cfg PageConfig) (*Page, error) {
	cfg.defaults()
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("cdpbridge: no active browser")
	}

	var (
		page *rod.Page
		err  error
	)
	if cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("cdpbridge: create tab %s: %w", cfg.ID, err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(cfg.URL); err != nil {
		page.Close()
		return nil, fmt.Errorf("cdpbridge: navigate %s: %w", cfg.URL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		cfg.Logger.Warn("cdpbridge: wait load timeout", "page", cfg.ID, "url", cfg.URL, "error", err)
	}
	if err := (proto.AccessibilityEnable{}).Call(page); err != nil {
		page.Close()
		return nil, fmt.Errorf("cdpbridge: Accessibility.enable: %w", err)
	}

	return &Page{cfg: cfg, page: page}, nil
}

// ID returns the configured page ID.
func (p *Page) ID() string { return p.cfg.ID }

// Fetch returns the page's full accessibility tree.
func (p *Page) Fetch(ctx context.Context) (Snapshot, error) {
	res, err := proto.AccessibilityGetFullAXTree{}.Call(p.page.Context(ctx))
	if err != nil {
		return Snapshot{}, fmt.Errorf("cdpbridge: Accessibility.getFullAXTree %s: %w", p.cfg.ID, err)
	}
	return Snapshot{PageID: p.cfg.ID, URL: p.cfg.URL, Nodes: res.Nodes, At: time.Now()}, nil
}

// Activate brings the tab to the front.
func (p *Page) Activate() error {
	_, err := p.page.Activate()
	return err
}

// Watch pushes an initial snapshot, then a fresh one after every burst of
// Accessibility events, until ctx is done.
func (p *Page) Watch(ctx context.Context, push func(Snapshot)) error {
	r := newRefresher(p.cfg, p.Fetch, push)

	wait := p.page.Context(ctx).EachEvent(
		func(*proto.AccessibilityNodesUpdated) { r.poke() },
		func(*proto.AccessibilityLoadComplete) { r.poke() },
	)
	go wait()

	r.poke()
	return r.run(ctx)
}

// Close closes the tab.
func (p *Page) Close() error {
	if p.page != nil {
		return p.page.Close()
	}
	return nil
}

// refresher coalesces change notifications into throttled refetches.
type refresher struct {
	window  time.Duration
	limiter *rate.Limiter
	fetch   func(context.Context) (Snapshot, error)
	push    func(Snapshot)
	logger  *slog.Logger
	dirty   chan struct{}
}

func newRefresher(cfg PageConfig, fetch func(context.Context) (Snapshot, error), push func(Snapshot)) *refresher {
	cfg.defaults()
	return &refresher{
		window:  cfg.Debounce,
		limiter: rate.NewLimiter(rate.Every(cfg.RefreshInterval), cfg.RefreshBurst),
		fetch:   fetch,
		push:    push,
		logger:  cfg.Logger,
		dirty:   make(chan struct{}, 1),
	}
}

// poke marks the tree stale. Never blocks.
func (r *refresher) poke() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

func (r *refresher) run(ctx context.Context) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-r.dirty:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(r.window)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
			snap, err := r.fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Warn("cdpbridge: refresh failed", "error", err)
				continue
			}
			r.push(snap)
		}
	}
}
