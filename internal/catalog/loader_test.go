package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

func TestLoaderFetch_ParsesSheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Category,Name,Price\nSushi,Eel,90\nSushi,Egg,40\n"))
	}))
	defer srv.Close()

	entries, err := NewLoader(srv.URL, srv.Client()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestLoaderFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewLoader(srv.URL, srv.Client()).Fetch(context.Background())

	var upstream *core.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

type stubSource struct {
	entries []MenuEntry
	err     error
}

func (s stubSource) Fetch(ctx context.Context) ([]MenuEntry, error) {
	return s.entries, s.err
}

func TestCacheRefresh(t *testing.T) {
	sheet := []MenuEntry{{Category: "Sushi", Name: "Eel", Price: 90}}

	tests := []struct {
		name      string
		source    Source
		wantErr   bool
		fromSheet bool
		wantLen   int
	}{
		{"sheet rows", stubSource{entries: sheet}, false, true, 1},
		{"fetch failure", stubSource{err: errors.New("offline")}, true, false, 6},
		{"zero rows", stubSource{}, false, false, 6},
		{"no source", nil, true, false, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(tt.source)

			err := c.Refresh(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}

			snap := c.Snapshot()
			if snap.FromSheet != tt.fromSheet {
				t.Fatalf("expected fromSheet=%v", tt.fromSheet)
			}
			if len(snap.Entries) != tt.wantLen {
				t.Fatalf("expected %d entries, got %d", tt.wantLen, len(snap.Entries))
			}
		})
	}
}

func TestCacheSnapshot_IsIsolated(t *testing.T) {
	c := NewCache(nil)

	s := c.Snapshot()
	s.Entries[0].Price = 9999

	if c.Snapshot().Entries[0].Price == 9999 {
		t.Fatal("snapshot mutation leaked into cache")
	}
}
