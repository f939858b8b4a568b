package axlive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/axlive/internal/cdpbridge"
	"github.com/hazyhaar/axlive/internal/config"
)

// Browser drives the engine from a Chrome instance: one tracked tab per
// configured page, each pushing accessibility snapshots into the engine.
type Browser struct {
	cfg    *config.Config
	engine *Engine
	mgr    *cdpbridge.Manager
	logger *slog.Logger

	mu    sync.Mutex
	pages map[string]*cdpbridge.Page
	wg    sync.WaitGroup
}

// NewBrowser prepares a Browser; Start connects.
func NewBrowser(cfg *config.Config, engine *Engine, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		mgr: cdpbridge.NewManager(cdpbridge.Config{
			RemoteURL: cfg.Browser.Remote,
			Bin:       cfg.Browser.Bin,
			Headless:  *cfg.Browser.Headless,
			Logger:    logger,
		}),
		pages: make(map[string]*cdpbridge.Page),
	}
}

// Start connects to Chrome and opens every configured page. A page that
// fails to open is logged and skipped.
func (b *Browser) Start(ctx context.Context) error {
	if _, err := b.mgr.Start(ctx); err != nil {
		return fmt.Errorf("axlive: start browser: %w", err)
	}
	for _, pc := range b.cfg.Pages {
		if err := b.OpenPage(ctx, pc); err != nil {
			b.logger.Error("axlive: failed to open page", "page", pc.ID, "url", pc.URL, "error", err)
		}
	}
	for _, pc := range b.cfg.Pages {
		if pc.Focus {
			if err := b.engine.Focus(ctx, pc.ID); err != nil {
				b.logger.Warn("axlive: initial focus", "page", pc.ID, "error", err)
			}
			break
		}
	}
	return nil
}

// OpenPage opens one tab, registers it with the engine and starts
// streaming its snapshots.
func (b *Browser) OpenPage(ctx context.Context, pc config.PageConfig) error {
	p, err := cdpbridge.OpenPage(ctx, b.mgr, cdpbridge.PageConfig{
		ID:              pc.ID,
		URL:             pc.URL,
		Stealth:         b.cfg.Browser.Stealth,
		Debounce:        b.cfg.Browser.Debounce,
		RefreshInterval: b.cfg.Browser.RefreshInterval,
		RefreshBurst:    b.cfg.Browser.RefreshBurst,
		Logger:          b.logger,
	})
	if err != nil {
		return err
	}
	if err := b.engine.AddPage(ctx, pc.ID, pc.URL); err != nil {
		p.Close()
		return err
	}

	b.mu.Lock()
	b.pages[pc.ID] = p
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		err := p.Watch(ctx, func(s cdpbridge.Snapshot) {
			if err := b.engine.ApplySnapshot(ctx, s); err != nil && ctx.Err() == nil {
				b.logger.Warn("axlive: apply snapshot", "page", s.PageID, "error", err)
			}
		})
		if err != nil && ctx.Err() == nil {
			b.logger.Error("axlive: page watch stopped", "page", pc.ID, "error", err)
		}
	}()
	return nil
}

// Activate brings a page's tab to the front. It is the engine's focus hook.
func (b *Browser) Activate(pageID string) error {
	b.mu.Lock()
	p, ok := b.pages[pageID]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, pageID)
	}
	return p.Activate()
}

// Close waits for the watchers (their context must be done), closes the
// tabs and disconnects.
func (b *Browser) Close() error {
	b.wg.Wait()
	b.mu.Lock()
	for id, p := range b.pages {
		if err := p.Close(); err != nil {
			b.logger.Debug("axlive: close tab", "page", id, "error", err)
		}
	}
	b.mu.Unlock()
	return b.mgr.Close()
}
