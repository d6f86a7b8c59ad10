package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestGatewayMissingBaseURL(t *testing.T) {
	g := NewGateway(GatewayOptions{}, noopLogger())
	if _, err := g.CurrentIndex(context.Background()); err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestGatewayHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGateway(GatewayOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := g.CurrentIndex(context.Background()); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}

func TestGatewaySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != indexPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"index": 120})
	}))
	defer srv.Close()

	g := NewGateway(GatewayOptions{BaseURL: srv.URL, Timeout: time.Second, UserAgent: "test"}, noopLogger())
	index, err := g.CurrentIndex(context.Background())
	if err != nil {
		t.Fatalf("expected success: %v", err)
	}
	if index != 120 {
		t.Fatalf("expected index 120, got %d", index)
	}
}

func TestGatewayRejectsNonPositiveIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"index": 0})
	}))
	defer srv.Close()

	g := NewGateway(GatewayOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := g.CurrentIndex(context.Background()); err == nil {
		t.Fatal("expected error on zero index")
	}
}

type failingFetcher struct{}

func (failingFetcher) CurrentIndex(context.Context) (int64, error) {
	return 0, errors.New("unreachable")
}

func TestFallback(t *testing.T) {
	f := &Fallback{Primary: failingFetcher{}, Secondary: &Static{Value: 100}}
	index, err := f.CurrentIndex(context.Background())
	if err != nil {
		t.Fatalf("fallback should succeed: %v", err)
	}
	if index != 100 {
		t.Fatalf("expected fallback index 100, got %d", index)
	}

	f = &Fallback{Primary: &Static{Value: 130}, Secondary: &Static{Value: 100}}
	index, err = f.CurrentIndex(context.Background())
	if err != nil || index != 130 {
		t.Fatalf("primary should win, got %d err %v", index, err)
	}
}
