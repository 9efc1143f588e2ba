package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestServeClient_Index(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), false)

	w := doGet(t, srv, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-cache") {
		t.Errorf("expected no-cache, got %q", cc)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("parse index: %v", err)
	}
	if doc.Find("#image-grid").Length() != 1 {
		t.Error("expected an #image-grid container")
	}
	if doc.Find("#loader").Length() != 1 {
		t.Error("expected a #loader element")
	}
	if src, _ := doc.Find("script").First().Attr("src"); src != "/script.js" {
		t.Errorf("expected script /script.js, got %q", src)
	}
	if href, _ := doc.Find("link[rel='stylesheet']").Attr("href"); href != "/style.css" {
		t.Errorf("expected stylesheet /style.css, got %q", href)
	}
	// The push channel state is not shown; updates resuming is the only sign
	if n := doc.Find("#status, .status").Length(); n != 0 {
		t.Errorf("expected no connection status element, found %d", n)
	}
}

func TestServeClient_Assets(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), false)

	tests := []struct {
		target     string
		wantStatus int
		wantType   string
		contains   string
	}{
		{"/script.js", http.StatusOK, "javascript", "new_image"},
		{"/style.css", http.StatusOK, "text/css", "grid"},
		{"/missing.js", http.StatusNotFound, "", ""},
		{"/api/unknown", http.StatusNotFound, "application/json", "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := doGet(t, srv, tt.target)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantType != "" && !strings.Contains(w.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("expected content type containing %q, got %q", tt.wantType, w.Header().Get("Content-Type"))
			}
			if tt.contains != "" && !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("expected body to contain %q", tt.contains)
			}
		})
	}
}

func TestServeClient_ScriptUsesPushEndpointAndDelay(t *testing.T) {
	srv := newTestServer(t, t.TempDir(), false)

	body := doGet(t, srv, "/script.js").Body.String()
	for _, want := range []string{"/ws", "/api/images?page=", "/api/config", "reconnectDelayMs", "displayLimit"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected script to reference %q", want)
		}
	}
	for _, unwanted := range []string{"getElementById('status')", "setStatus"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("expected script not to drive a status badge (%q)", unwanted)
		}
	}
}
