package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/axlive/axtree"
	"github.com/hazyhaar/axlive/internal/msgs"
)

func liveTree() (*axtree.Tree, axtree.NodeID, axtree.NodeID) {
	t := axtree.New(axtree.Attrs{Role: axtree.RoleRootWebArea})
	region := t.AppendChild(t.Root(), axtree.Attrs{Role: axtree.RoleStatus})
	t.AppendChild(region, axtree.Attrs{Role: axtree.RoleStaticText, Name: "3 new"})
	t.AppendChild(region, axtree.Attrs{Role: axtree.RoleStaticText, Name: "messages"})
	btn := t.AppendChild(t.Root(), axtree.Attrs{Role: axtree.RoleButton, Name: "Send"})
	return t, region, btn
}

func TestBuilder_SpeechAndPrefix(t *testing.T) {
	tr, _, btn := liveTree()
	b := NewBuilder(tr, NewTextRenderer(nil)).
		Prepend("removed:").
		WithSpeech(btn).
		WithCategory(CategoryLive)

	if !b.HasSpeech() {
		t.Fatal("HasSpeech: got false")
	}
	out := b.Build("id-1", time.UnixMilli(1000))
	if got := out.Text(); got != "removed: Send Button" {
		t.Errorf("Text: got %q, want %q", got, "removed: Send Button")
	}
	if out.Prefix != "removed:" || out.Range != btn || out.Role != axtree.RoleButton {
		t.Errorf("Output fields: %+v", out)
	}
	if out.QueueMode != QueueModeQueue {
		t.Errorf("default QueueMode: got %q, want %q", out.QueueMode, QueueModeQueue)
	}
	if out.Timestamp != 1000 || out.ID != "id-1" {
		t.Errorf("Build stamp: got id=%q ts=%d", out.ID, out.Timestamp)
	}
}

func TestBuilder_EmptyAndJoinedDescendants(t *testing.T) {
	tr, region, _ := liveTree()
	empty := tr.AppendChild(region, axtree.Attrs{Role: axtree.RoleGeneric})
	b := NewBuilder(tr, NewTextRenderer(nil)).WithSpeech(empty)
	if b.HasSpeech() {
		t.Fatalf("empty generic: unexpected speech %v", b.out.Speech)
	}
	b.Format(JoinedDescendants, region)
	if got := b.Build("x", time.Now()).Text(); got != "3 new messages" {
		t.Errorf("JoinedDescendants: got %q, want %q", got, "3 new messages")
	}
}

func TestTextRenderer_NamelessContainers(t *testing.T) {
	tr, region, _ := liveTree()
	r := NewTextRenderer(nil)

	if got := strings.Join(r.Render(tr, region), " "); got != "3 new messages" {
		t.Errorf("Render(nameless status): got %q, want %q", got, "3 new messages")
	}

	item := tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleListItem})
	tr.AppendChild(item, axtree.Attrs{Role: axtree.RoleStaticText, Name: "Hello world"})
	if got := r.Render(tr, item); len(got) != 1 || got[0] != "Hello world" {
		t.Errorf("Render(nameless listItem): got %v", got)
	}

	named := tr.AppendChild(tr.Root(), axtree.Attrs{Role: axtree.RoleParagraph, Name: "Summary"})
	tr.AppendChild(named, axtree.Attrs{Role: axtree.RoleStaticText, Name: "body"})
	if got := r.Render(tr, named); len(got) != 1 || got[0] != "Summary" {
		t.Errorf("Render(named paragraph): got %v, want [Summary]", got)
	}

	// The document never reads out the whole page.
	if got := r.Render(tr, tr.Root()); len(got) != 0 {
		t.Errorf("Render(rootWebArea): got %v, want nothing", got)
	}
}

func TestTextRenderer_Localized(t *testing.T) {
	tr, _, btn := liveTree()
	r := NewTextRenderer(msgs.NewPrinter("fr"))
	got := r.Render(tr, btn)
	if len(got) != 2 || got[1] != "Bouton" {
		t.Errorf("Render(fr): got %v", got)
	}
	if r.Render(tr, axtree.None) != nil {
		t.Error("Render(None): want nil")
	}
}

type recordSink struct {
	got []Output
	err error
}

func (s *recordSink) Go(_ context.Context, out Output) error {
	s.got = append(s.got, out)
	return s.err
}

func (s *recordSink) Close() error { return nil }

func TestRouter_FanOut(t *testing.T) {
	boom := errors.New("boom")
	a := &recordSink{err: boom}
	b := &recordSink{}
	r := NewRouter(nil, a, b)

	err := r.Go(context.Background(), Output{ID: "1"})
	if !errors.Is(err, boom) {
		t.Errorf("Router.Go: got %v, want boom", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("fan-out: a=%d b=%d, want 1 each", len(a.got), len(b.got))
	}
}

func TestStdout_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	if err := s.Go(context.Background(), Output{ID: "a", Speech: []string{"hi"}, Category: CategoryLive}); err != nil {
		t.Fatal(err)
	}
	var env struct {
		Type string `json:"type"`
		Data Output `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != "speech" || env.Data.ID != "a" || env.Data.Category != CategoryLive {
		t.Errorf("envelope: got %+v", env)
	}
}

func TestCallback(t *testing.T) {
	var n int
	c := NewCallback(func(_ context.Context, out Output) error {
		n++
		return nil
	})
	c.Go(context.Background(), Output{})
	if n != 1 {
		t.Errorf("callback calls: got %d, want 1", n)
	}
	if err := NewCallback(nil).Go(context.Background(), Output{}); err != nil {
		t.Errorf("nil callback: got %v", err)
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond))
	if err := wh.Go(context.Background(), Output{ID: "x"}); err != nil {
		t.Fatalf("Webhook.Go: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls: got %d, want 3", calls.Load())
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, WithWebhookRetries(1), WithWebhookBackoff(time.Millisecond))
	if err := wh.Go(context.Background(), Output{ID: "x"}); err == nil {
		t.Fatal("Webhook.Go: want error")
	}
}

func TestQueue_DeliversOnClose(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	q := NewQueue(NewCallback(func(_ context.Context, out Output) error {
		mu.Lock()
		got = append(got, out.ID)
		mu.Unlock()
		return nil
	}), 4, nil)

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Go(context.Background(), Output{ID: id}); err != nil {
			t.Fatalf("Go(%s): %v", id, err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("delivered: got %v, want [a b c]", got)
	}
}

func TestQueue_FullDrops(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue(NewCallback(func(context.Context, Output) error {
		<-release
		return nil
	}), 1, nil)
	defer func() {
		close(release)
		q.Close()
	}()

	// One output blocks the drain goroutine, one fills the buffer; keep
	// pushing until the queue reports it is full.
	var full bool
	for i := 0; i < 10 && !full; i++ {
		full = q.Go(context.Background(), Output{ID: "x"}) != nil
	}
	if !full {
		t.Fatal("Go: expected queue full error")
	}
}

func TestQueue_GoAfterClose(t *testing.T) {
	q := NewQueue(NewCallback(func(context.Context, Output) error { return nil }), 4, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := q.Go(context.Background(), Output{ID: "late"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Go after Close: got %v, want ErrQueueClosed", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestQueue_CloseCancelsAfterGrace(t *testing.T) {
	var calls atomic.Int32
	q := NewQueue(NewCallback(func(ctx context.Context, _ Output) error {
		calls.Add(1)
		<-ctx.Done()
		return ctx.Err()
	}), 8, nil, WithQueueGrace(20*time.Millisecond))

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Go(context.Background(), Output{ID: id}); err != nil {
			t.Fatalf("Go(%s): %v", id, err)
		}
	}

	start := time.Now()
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Close: took %v, want about the grace period", elapsed)
	}
	// The first delivery was cancelled; the rest were dropped unsent.
	if n := calls.Load(); n != 1 {
		t.Errorf("sink calls: got %d, want 1", n)
	}
}
