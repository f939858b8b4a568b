// Command axlive runs a headless screen reader core over Chrome tabs: it
// tracks each page's accessibility tree, speaks live-region updates as JSON
// speech requests, and exposes cursor navigation over HTTP or MCP.
//
// Usage:
//
//	axlive -config axlive.yaml               # pages, sinks and tunables from YAML
//	axlive -url https://example.com          # one page, speech on stdout
//	axlive -url https://example.com -mcp     # same, with MCP tools on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/axlive"
	"github.com/hazyhaar/axlive/history"
	"github.com/hazyhaar/axlive/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to axlive.yaml config file")
	singleURL := flag.String("url", "", "track a single URL")
	httpAddr := flag.String("http", "", "HTTP listen address (overrides http.addr)")
	useMCP := flag.Bool("mcp", false, "serve MCP tools on stdin/stdout")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath, *singleURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: axlive -config <file> | -url <url> [-http addr] [-mcp]")
		os.Exit(2)
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}

	if err := run(ctx, logger, cfg, *useMCP); err != nil {
		logger.Error("axlive: fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path, url string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case path != "":
		c, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	case url != "":
		cfg = config.Default()
	default:
		return nil, errors.New("axlive: -config or -url is required")
	}
	if url != "" {
		cfg.Pages = append(cfg.Pages, config.PageConfig{ID: fmt.Sprintf("page%d", len(cfg.Pages)+1), URL: url, Focus: len(cfg.Pages) == 0})
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, useMCP bool) error {
	var store *history.Store
	if cfg.History.Path != "" {
		s, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer s.Close()
		store = s
	}

	// Speech JSON shares stdout with the MCP stdio transport otherwise.
	var stdout io.Writer = os.Stdout
	if useMCP {
		stdout = os.Stderr
	}
	router, err := axlive.NewRouter(cfg.Sinks, cfg.History.Retention, store, stdout, logger)
	if err != nil {
		return err
	}
	defer router.Close()

	var br *axlive.Browser
	ecfg := axlive.ConfigFrom(cfg, logger)
	ecfg.History = store
	ecfg.OnFocus = func(pageID string) error { return br.Activate(pageID) }
	engine := axlive.New(ecfg, router)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan error, 1)
	go func() { loopDone <- engine.Run(runCtx) }()

	br = axlive.NewBrowser(cfg, engine, logger)
	if err := br.Start(runCtx); err != nil {
		cancel()
		<-loopDone
		return err
	}
	logger.Info("axlive: started", "pages", len(cfg.Pages), "version", version)

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           engine.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("axlive: http listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("axlive: http server", "error", err)
				cancel()
			}
		}()
	}

	if useMCP {
		ms := mcp.NewServer(&mcp.Implementation{Name: "axlive", Version: version}, nil)
		engine.RegisterMCP(ms)
		if err := ms.Run(runCtx, &mcp.StdioTransport{}); err != nil && runCtx.Err() == nil {
			logger.Warn("axlive: mcp session ended", "error", err)
		}
		cancel()
	}

	<-runCtx.Done()
	logger.Info("axlive: shutting down")

	if srv != nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutCtx); err != nil {
			logger.Warn("axlive: http shutdown", "error", err)
		}
		shutCancel()
	}
	if err := br.Close(); err != nil {
		logger.Debug("axlive: browser close", "error", err)
	}
	<-loopDone
	return nil
}
