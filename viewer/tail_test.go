package viewer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/debug-viewer/api"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/server"
)

// syncBuffer is a bytes.Buffer safe for the tail goroutine and the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// startTailServer runs a watching server on dir, optionally wrapping its router
func startTailServer(t *testing.T, dir string, wrap func(http.Handler) http.Handler) (*server.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)

	srv, err := server.New(&server.Config{
		Env:            "development",
		ImagesDir:      dir,
		PageSize:       50,
		DisplayLimit:   200,
		ReconnectDelay: time.Second,
		WatchEnabled:   true,
		DebounceDelay:  20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	api.SetupRoutes(srv.Router(), api.NewHandlers(srv))
	if err := srv.StartComponents(); err != nil {
		t.Fatal(err)
	}

	var handler http.Handler = srv.Router()
	if wrap != nil {
		handler = wrap(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	if !srv.FS().Watching() {
		t.Skip("filesystem watcher unavailable on this platform")
	}
	return srv, ts.URL
}

// waitForSession blocks until a push session is registered
func waitForSession(t *testing.T, srv *server.Server) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for srv.Notifications().SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("tail never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// waitForOutput blocks until out contains want
func waitForOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("%s never printed, output:\n%s", want, out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTail_PrintsExistingThenPushed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	srv, url := startTailServer(t, dir, nil)

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tail := &Tail{Client: NewClient(url), Out: out}
	done := make(chan error, 1)
	go func() { done <- tail.Run(ctx) }()

	// Wait for the push session before producing a file
	waitForSession(t, srv)

	if err := os.WriteFile(filepath.Join(dir, "fresh.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForOutput(t, out, "fresh.png")

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	output := out.String()
	if strings.Index(output, "existing.png") > strings.Index(output, "fresh.png") {
		t.Errorf("expected existing listing before pushed image, got:\n%s", output)
	}
}

func TestTail_FollowsPushWhenFirstPageFails(t *testing.T) {
	dir := t.TempDir()
	failList := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/images" {
				http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"listing unavailable"}}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	srv, url := startTailServer(t, dir, failList)

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tail := &Tail{Client: NewClient(url), Out: out}
	done := make(chan error, 1)
	go func() { done <- tail.Run(ctx) }()

	waitForSession(t, srv)
	select {
	case err := <-done:
		t.Fatalf("tail exited after first page failure: %v", err)
	default:
	}

	if err := os.WriteFile(filepath.Join(dir, "late.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitForOutput(t, out, "late.png")

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_PushURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8002":  "ws://localhost:8002/ws",
		"http://localhost:8002/": "ws://localhost:8002/ws",
		"https://viewer.local":   "wss://viewer.local/ws",
	}
	for base, want := range tests {
		if got := NewClient(base).PushURL(); got != want {
			t.Errorf("PushURL(%q) = %q, want %q", base, got, want)
		}
	}
}
