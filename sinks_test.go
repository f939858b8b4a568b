package axlive

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/axlive/internal/config"
	"github.com/hazyhaar/axlive/output"
)

func TestNewRouter_StdoutAndHistory(t *testing.T) {
	store := historyStore(t)
	var buf bytes.Buffer
	r, err := NewRouter([]config.SinkConfig{{Type: "stdout"}, {Type: "history"}}, time.Hour, store, &buf, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer r.Close()

	out := output.Output{
		ID:        "ann_1",
		Speech:    []string{"saved"},
		Category:  output.CategoryLive,
		QueueMode: output.QueueModeQueue,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := r.Go(context.Background(), out); err != nil {
		t.Fatalf("Go: %v", err)
	}
	if !strings.Contains(buf.String(), `"ann_1"`) {
		t.Errorf("stdout: got %q", buf.String())
	}
	recent, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].ID != "ann_1" {
		t.Errorf("history: got %+v", recent)
	}
}

func TestNewRouter_Errors(t *testing.T) {
	if _, err := NewRouter([]config.SinkConfig{{Type: "history"}}, 0, nil, nil, nil); err == nil {
		t.Error("history without store: expected error")
	}
	if _, err := NewRouter([]config.SinkConfig{{Type: "carrier-pigeon"}}, 0, nil, nil, nil); err == nil {
		t.Error("unknown type: expected error")
	}
}
