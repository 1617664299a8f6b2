package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestPosterCandidates_orderAndCount(t *testing.T) {
	candidates := PosterCandidates("https://i.ytimg.com", "dQw4w9WgXcQ")
	if len(candidates) != 6 {
		t.Fatalf("expected 6 candidates, got %d", len(candidates))
	}
	if !strings.Contains(candidates[0], "maxresdefault.webp") {
		t.Errorf("most detailed tier should come first: %s", candidates[0])
	}
	if !strings.Contains(candidates[5], "hqdefault.jpg") {
		t.Errorf("least detailed tier should come last: %s", candidates[5])
	}
}

func TestPosterResolver_fifthCandidateWins(t *testing.T) {
	var probes atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		// Only the 5th candidate (hqdefault webp) exists.
		if strings.HasSuffix(r.URL.Path, "/hqdefault.webp") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cache := NewInMemoryPosterCache()
	r := NewPosterResolver(srv.Client(), cache, nil)
	r.host = srv.URL

	var announced []string
	r.Resolve(context.Background(), "dQw4w9WgXcQ", func(url string) {
		announced = append(announced, url)
	})

	if len(announced) != 1 {
		t.Fatalf("expected exactly one announcement, got %d", len(announced))
	}
	if !strings.HasSuffix(announced[0], "/vi_webp/dQw4w9WgXcQ/hqdefault.webp") {
		t.Errorf("unexpected winner: %s", announced[0])
	}
	if n := probes.Load(); n != 5 {
		t.Errorf("expected 5 sequential probes, got %d", n)
	}

	// Repeat resolution is a synchronous cache hit, no further probes.
	announced = nil
	r.Resolve(context.Background(), "dQw4w9WgXcQ", func(url string) {
		announced = append(announced, url)
	})
	if len(announced) != 1 || !strings.HasSuffix(announced[0], "/hqdefault.webp") {
		t.Fatalf("cache hit should announce the cached URL, got %v", announced)
	}
	if n := probes.Load(); n != 5 {
		t.Errorf("cache hit should not probe, total probes %d", n)
	}
}

func TestPosterResolver_exhaustionAnnouncesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewPosterResolver(srv.Client(), NewInMemoryPosterCache(), nil)
	r.host = srv.URL

	var announced []string
	r.Resolve(context.Background(), "dQw4w9WgXcQ", func(url string) {
		announced = append(announced, url)
	})
	if len(announced) != 1 || announced[0] != "" {
		t.Errorf("exhausted candidates should announce the explicit empty poster, got %v", announced)
	}
}

func TestPosterResolver_cancellationSuppressesAnnouncement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewPosterResolver(srv.Client(), NewInMemoryPosterCache(), nil)
	r.host = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	r.Resolve(ctx, "dQw4w9WgXcQ", func(string) { called = true })
	if called {
		t.Error("cancelled resolution must not announce")
	}
}
