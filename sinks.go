package axlive

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hazyhaar/axlive/history"
	"github.com/hazyhaar/axlive/internal/config"
	"github.com/hazyhaar/axlive/output"
)

// NewRouter builds the output fan-out described by the sink list. Webhooks
// run behind a queue so a slow endpoint never stalls the engine loop.
// store may be nil when no history sink is configured.
func NewRouter(sinks []config.SinkConfig, retention time.Duration, store *history.Store, stdout io.Writer, logger *slog.Logger) (*output.Router, error) {
	r := output.NewRouter(logger)
	for i, sc := range sinks {
		switch sc.Type {
		case "stdout":
			r.Add(output.NewStdout(stdout))
		case "webhook":
			wh := output.NewWebhook(sc.URL,
				output.WithWebhookRetries(sc.Retries),
				output.WithWebhookBackoff(sc.Backoff),
				output.WithWebhookLogger(logger),
			)
			r.Add(output.NewQueue(wh, 256, logger))
		case "history":
			if store == nil {
				return nil, fmt.Errorf("axlive: sink %d: history store not open", i)
			}
			r.Add(history.NewSink(store, history.WithRetention(retention), history.WithLogger(logger)))
		default:
			return nil, fmt.Errorf("axlive: sink %d: unknown type %q", i, sc.Type)
		}
	}
	return r, nil
}
