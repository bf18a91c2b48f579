package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

var ErrEmptyCatalog = errors.New("catalog source returned no rows")

// Loader fetches the published sheet export over HTTP.
type Loader struct {
	url    string
	client *http.Client
}

func NewLoader(url string, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{url: url, client: client}
}

// Fetch downloads and parses the sheet. An empty parse is an error so the
// caller can fall back.
func (l *Loader) Fetch(ctx context.Context) ([]MenuEntry, error) {
	if l.url == "" {
		return nil, &core.UpstreamError{Op: "catalog fetch", Err: errors.New("no catalog url configured")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, &core.UpstreamError{Op: "catalog fetch", Err: err}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &core.UpstreamError{Op: "catalog fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &core.UpstreamError{
			Op:  "catalog fetch",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.UpstreamError{Op: "catalog read", Err: err}
	}

	entries := Parse(string(raw))
	if len(entries) == 0 {
		return nil, &core.UpstreamError{Op: "catalog parse", Err: ErrEmptyCatalog}
	}

	return entries, nil
}

// Source is anything that can produce a fresh catalog.
type Source interface {
	Fetch(ctx context.Context) ([]MenuEntry, error)
}

// Cache holds the current catalog snapshot. Refresh replaces it wholesale.
type Cache struct {
	mu     sync.RWMutex
	source Source
	snap   Snapshot
	now    func() time.Time
}

func NewCache(source Source) *Cache {
	c := &Cache{source: source, now: time.Now}
	c.snap = Snapshot{Entries: Default(), LoadedAt: c.now()}
	return c
}

// Snapshot returns a copy of the current catalog.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.snap
	s.Entries = Clone(c.snap.Entries)
	return s
}

// Refresh reloads the catalog. Source failures install the default menu and
// are returned for logging only; the cache always holds a usable catalog.
func (c *Cache) Refresh(ctx context.Context) error {
	var (
		entries []MenuEntry
		err     error
	)
	if c.source != nil {
		entries, err = c.source.Fetch(ctx)
	} else {
		err = &core.UpstreamError{Op: "catalog fetch", Err: errors.New("no catalog source")}
	}

	next := Snapshot{LoadedAt: c.now()}
	if err != nil || len(entries) == 0 {
		next.Entries = Default()
	} else {
		next.Entries = entries
		next.FromSheet = true
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()

	return err
}

// Run refreshes on every tick until ctx is done.
func (c *Cache) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("catalog refresh failed, serving default menu")
				continue
			}
			log.Info().Int("entries", len(c.Snapshot().Entries)).Msg("catalog refreshed")
		}
	}
}
