package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/server"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// newTestServer builds a server over dir with every route installed.
// Components are not started; tests that need the watcher call StartComponents.
func newTestServer(t *testing.T, dir string, watch bool) *server.Server {
	t.Helper()
	cfg := &server.Config{
		Host:           "127.0.0.1",
		Port:           0,
		Env:            "development",
		ImagesDir:      dir,
		PageSize:       50,
		DisplayLimit:   200,
		ReconnectDelay: 5 * time.Second,
		WatchEnabled:   watch,
		DebounceDelay:  30 * time.Millisecond,
	}

	srv, err := server.New(cfg)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	SetupRoutes(srv.Router(), NewHandlers(srv))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})
	return srv
}

func doGet(t *testing.T, srv *server.Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

// writeAged writes name with content equal to its name and an mtime age seconds ago
func writeAged(t *testing.T, dir, name string, age int) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(name), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-time.Duration(age) * time.Second)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}
