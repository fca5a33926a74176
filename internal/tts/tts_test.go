package tts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tl"); got != "hi" {
			t.Errorf("language param = %q, want hi", got)
		}
		if r.URL.Query().Get("q") == "" {
			t.Error("missing text param")
		}
		w.Write([]byte("AUDIO"))
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL)
	audio, err := r.Render(context.Background(), "namaste", "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(audio, []byte("AUDIO")) {
		t.Errorf("audio = %q", audio)
	}
}

func TestRenderChunksLongText(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if got := len(r.URL.Query().Get("q")); got > maxChunkChars {
			t.Errorf("chunk of %d chars exceeds limit %d", got, maxChunkChars)
		}
		w.Write([]byte("X"))
	}))
	defer srv.Close()

	text := strings.Repeat("This sentence pads the digest out. ", 20)

	r := NewHTTPRenderer(srv.URL)
	audio, err := r.Render(context.Background(), text, "en")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	n := atomic.LoadInt32(&requests)
	if n < 2 {
		t.Errorf("long text made %d requests, want several chunks", n)
	}
	if len(audio) != int(n) {
		t.Errorf("audio length %d does not match %d concatenated chunks", len(audio), n)
	}
}

func TestRenderFallsBackToUtterance(t *testing.T) {
	// Fail the requested text, succeed for the fallback utterance.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("q"), "namaste") {
			http.Error(w, "rejected", http.StatusBadRequest)
			return
		}
		w.Write([]byte("FALLBACK"))
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL)
	audio, err := r.Render(context.Background(), "namaste", "hi")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(audio, []byte("FALLBACK")) {
		t.Errorf("audio = %q, want fallback utterance rendering", audio)
	}
}

func TestRenderSilentPayloadWhenBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL)
	audio, err := r.Render(context.Background(), "namaste", "hi")
	if err != nil {
		t.Fatalf("Render must degrade, not fail: %v", err)
	}
	if !bytes.Equal(audio, silentMP3) {
		t.Error("expected the fixed silent payload when the backend is down")
	}
}

func TestRenderCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("AUDIO"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewHTTPRenderer(srv.URL)
	if _, err := r.Render(ctx, "namaste", "hi"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRenderEmptyTextUsesFallback(t *testing.T) {
	var lastQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.Query().Get("q")
		w.Write([]byte("AUDIO"))
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL)
	if _, err := r.Render(context.Background(), "", "hi"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if lastQuery != fallbackUtterance {
		t.Errorf("empty text rendered %q, want the fallback utterance", lastQuery)
	}
}
