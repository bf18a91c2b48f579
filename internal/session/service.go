package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/dashboard"
	"github.com/sposusu/eat-aware-scheduler/internal/leaderboard"
	"github.com/sposusu/eat-aware-scheduler/internal/llm"
	"github.com/sposusu/eat-aware-scheduler/internal/plate"
	"github.com/sposusu/eat-aware-scheduler/internal/storage"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

// CatalogSource is the shared catalog cache.
type CatalogSource interface {
	Snapshot() catalog.Snapshot
	Refresh(ctx context.Context) error
}

// Leaderboard receives plate deltas and history replacements.
type Leaderboard interface {
	Submit(ctx context.Context, req leaderboard.SubmitRequest) (*leaderboard.UserAggregate, error)
	UpdateHistory(ctx context.Context, userID string, history []core.PlateItem, mode valuation.Mode) (*leaderboard.UserAggregate, error)
}

type Service struct {
	repo       Repository
	catalog    CatalogSource
	recognizer core.Recognizer
	board      Leaderboard
	uploader   storage.Uploader
	settings   dashboard.Settings
	now        func() time.Time
}

type Option func(*Service)

func WithUploader(u storage.Uploader) Option {
	return func(s *Service) { s.uploader = u }
}

func WithSettings(settings dashboard.Settings) Option {
	return func(s *Service) { s.settings = settings }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, cat CatalogSource, recognizer core.Recognizer, board Leaderboard, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		catalog:    cat,
		recognizer: recognizer,
		board:      board,
		settings:   dashboard.DefaultSettings(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ------------------------------------------------------------
// Lifecycle
// ------------------------------------------------------------

// Create opens a new session and returns its user id.
func (s *Service) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()

	if err := s.repo.Save(newSession(id, s.catalog.Snapshot(), s.settings.Liquids(), s.now())); err != nil {
		return "", &core.PersistenceError{Op: "save session", Err: err}
	}

	log.Info().Str("userId", id).Msg("session created")
	return id, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(userID)
}

// Expire drops sessions idle for longer than ttl.
func (s *Service) Expire(ttl time.Duration) int {
	return s.repo.Expire(s.now().Add(-ttl))
}

// RunJanitor expires idle sessions on every tick until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, every, ttl time.Duration) {
	if every <= 0 || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Expire(ttl); n > 0 {
				log.Info().Int("expired", n).Msg("idle sessions dropped")
			}
		}
	}
}

func (s *Service) State(ctx context.Context, userID string) (*View, error) {
	var v View
	err := s.with(userID, func(sess *Session) error {
		v = s.view(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SetMode switches the pricing mode. Totals are re-resolved on read, so
// nothing stored changes.
func (s *Service) SetMode(ctx context.Context, userID, raw string) (*View, error) {
	mode, err := valuation.ParseMode(raw)
	if err != nil {
		return nil, err
	}

	var v View
	err = s.with(userID, func(sess *Session) error {
		sess.mode = mode
		sess.builder.SetMode(mode)
		v = s.view(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RefreshCatalog reloads the shared catalog and installs it in the session.
// A failed load still installs the default menu and is reported as a
// warning.
func (s *Service) RefreshCatalog(ctx context.Context, userID string) (*CatalogInfo, error) {
	if _, err := s.repo.Get(userID); err != nil {
		return nil, err
	}

	refreshErr := s.catalog.Refresh(ctx)
	if refreshErr != nil {
		log.Warn().Err(refreshErr).Str("userId", userID).Msg("catalog refresh failed, using default menu")
	}
	snap := s.catalog.Snapshot()

	var info CatalogInfo
	err := s.with(userID, func(sess *Session) error {
		sess.snapshot = snap
		sess.builder.SetCatalog(snap.Entries)
		info = catalogInfo(snap)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refreshErr != nil {
		info.Warning = refreshErr.Error()
	}
	return &info, nil
}

// ------------------------------------------------------------
// Plate
// ------------------------------------------------------------

// Capture starts a plate from a photo. With an uploader configured the
// photo is archived first; archive failures are logged and ignored.
func (s *Service) Capture(ctx context.Context, userID string, img core.Image) (*plate.View, error) {
	if len(img.Data) == 0 {
		return nil, core.ErrMissingImage
	}
	if _, err := s.repo.Get(userID); err != nil {
		return nil, err
	}

	if s.uploader != nil {
		key := storage.PhotoKey(userID, img.MIME, s.now())
		url, err := s.uploader.Upload(ctx, key, bytes.NewReader(img.Data), img.MIME)
		if err != nil {
			log.Warn().Err(err).Str("userId", userID).Str("key", key).Msg("photo archive failed")
		} else {
			img.URL = url
		}
	}

	return s.plate(userID, func(b *plate.Builder) error {
		return b.Capture(img)
	})
}

// Recognize runs the recognizer on the captured photo. The session is not
// locked while the recognizer works; only one recognition can be in flight
// and a discard or new capture meanwhile makes its result stale.
func (s *Service) Recognize(ctx context.Context, userID string) (*plate.View, error) {
	if s.recognizer == nil {
		return nil, &core.UpstreamError{Op: "recognize", Err: errors.New("no recognizer configured")}
	}

	var ticket plate.Ticket
	err := s.with(userID, func(sess *Session) error {
		t, err := sess.builder.BeginRecognition()
		ticket = t
		return err
	})
	if err != nil {
		return nil, err
	}

	started := s.now()
	res, recErr := s.recognizer.Recognize(ctx, ticket.Image, llm.BuildPrompt(ticket.Catalog))

	var v plate.View
	err = s.with(userID, func(sess *Session) error {
		cerr := sess.builder.CompleteRecognition(ticket, res, recErr)
		v = sess.builder.View()
		return cerr
	})

	switch {
	case errors.Is(err, plate.ErrStaleRecognition):
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidState, err)
	case err != nil:
		log.Warn().Err(err).Str("userId", userID).Msg("recognition failed")
		return nil, err
	}

	log.Info().
		Str("userId", userID).
		Int("items", len(v.Items)).
		Dur("took", s.now().Sub(started)).
		Msg("plate recognized")

	return &v, nil
}

func (s *Service) StartManual(ctx context.Context, userID string) (*plate.View, error) {
	return s.plate(userID, func(b *plate.Builder) error {
		b.StartManual()
		return nil
	})
}

func (s *Service) AddRow(ctx context.Context, userID string) (*plate.View, error) {
	return s.plate(userID, func(b *plate.Builder) error {
		return b.AddRow()
	})
}

// UpdateRow applies p to row i. A name change returns catalog suggestions.
func (s *Service) UpdateRow(ctx context.Context, userID string, i int, p RowPatch) (*plate.View, []catalog.MenuEntry, error) {
	var suggestions []catalog.MenuEntry

	v, err := s.plate(userID, func(b *plate.Builder) error {
		if p.Name != nil {
			sug, err := b.SetName(i, *p.Name)
			if err != nil {
				return err
			}
			suggestions = sug
		}
		return b.UpdateItem(i, p.ItemPatch)
	})
	if err != nil {
		return nil, nil, err
	}
	return v, suggestions, nil
}

// SelectSuggestion fills row i from the catalog entry called name.
func (s *Service) SelectSuggestion(ctx context.Context, userID string, i int, name string) (*plate.View, error) {
	var v plate.View
	err := s.with(userID, func(sess *Session) error {
		entry, ok := findEntry(sess.snapshot.Entries, name)
		if !ok {
			return core.NewInputError("no catalog entry named %q", name)
		}
		if err := sess.builder.SelectSuggestion(i, entry); err != nil {
			return err
		}
		v = sess.builder.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) AdjustCount(ctx context.Context, userID string, i, delta int) (*plate.View, error) {
	return s.plate(userID, func(b *plate.Builder) error {
		return b.AdjustCount(i, delta)
	})
}

func (s *Service) RemoveRow(ctx context.Context, userID string, i int) (*plate.View, error) {
	return s.plate(userID, func(b *plate.Builder) error {
		return b.RemoveItem(i)
	})
}

func (s *Service) Discard(ctx context.Context, userID string) (*plate.View, error) {
	return s.plate(userID, func(b *plate.Builder) error {
		b.Discard()
		return nil
	})
}

// Commit moves the draft into history and submits it to the leaderboard.
// The plate is valued in the mode active at commit time.
func (s *Service) Commit(ctx context.Context, userID string) (*CommitResult, error) {
	var (
		res     CommitResult
		mode    valuation.Mode
		entries []catalog.MenuEntry
	)

	unlock, err := s.lockSync(userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.with(userID, func(sess *Session) error {
		items, err := sess.builder.Commit(sess.ledger)
		if err != nil {
			return err
		}
		mode = sess.mode
		entries = sess.snapshot.Entries
		res.Items = items
		res.Totals = s.settings.Liquids().Fold(items, mode, sess.snapshot.Entries)
		res.History = s.historyView(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("userId", userID).
		Int("dishes", res.Totals.Dishes).
		Float64("price", res.Totals.Price).
		Str("mode", string(mode)).
		Msg("plate committed")

	agg, syncErr := s.board.Submit(ctx, leaderboard.SubmitRequest{
		UserID:        userID,
		Items:         filled(res.Items, entries),
		TotalPrice:    res.Totals.Price,
		TotalCalories: res.Totals.Calories,
		Timestamp:     s.now().UnixMilli(),
	})
	res.SyncStatus = s.recordSync(userID, agg, syncErr)

	return &res, nil
}

// ------------------------------------------------------------
// History
// ------------------------------------------------------------

func (s *Service) History(ctx context.Context, userID string) (*HistoryView, error) {
	var h HistoryView
	err := s.with(userID, func(sess *Session) error {
		h = s.historyView(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *Service) ReplaceHistory(ctx context.Context, userID string, items []core.PlateItem) (*HistoryView, *SyncStatus, error) {
	for _, item := range items {
		if item.Blank() && item.Count > 0 {
			return nil, nil, core.ErrBlankItemName
		}
	}
	return s.editHistory(ctx, userID, func(sess *Session) error {
		sess.ledger.ReplaceAll(items)
		return nil
	})
}

func (s *Service) UpdateHistoryItem(ctx context.Context, userID string, i int, item core.PlateItem) (*HistoryView, *SyncStatus, error) {
	return s.editHistory(ctx, userID, func(sess *Session) error {
		return sess.ledger.Update(i, item)
	})
}

func (s *Service) RemoveHistoryItem(ctx context.Context, userID string, i int) (*HistoryView, *SyncStatus, error) {
	return s.editHistory(ctx, userID, func(sess *Session) error {
		return sess.ledger.Remove(i)
	})
}

// ClearHistory wipes the history. It is irreversible and needs confirm.
func (s *Service) ClearHistory(ctx context.Context, userID string, confirm bool) (*HistoryView, *SyncStatus, error) {
	return s.editHistory(ctx, userID, func(sess *Session) error {
		return sess.ledger.Clear(confirm)
	})
}

// editHistory applies edit and sends the whole resulting history to the
// leaderboard as a replacement.
func (s *Service) editHistory(ctx context.Context, userID string, edit func(*Session) error) (*HistoryView, *SyncStatus, error) {
	var (
		h     HistoryView
		items []core.PlateItem
		mode  valuation.Mode
	)

	unlock, err := s.lockSync(userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	// The leaderboard has no catalog; items go out fully priced.
	err = s.with(userID, func(sess *Session) error {
		if err := edit(sess); err != nil {
			return err
		}
		h = s.historyView(sess)
		items = filled(h.Items, sess.snapshot.Entries)
		mode = sess.mode
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	agg, syncErr := s.board.UpdateHistory(ctx, userID, items, mode)
	status := s.recordSync(userID, agg, syncErr)

	return &h, &status, nil
}

// ------------------------------------------------------------
// Guide
// ------------------------------------------------------------

type GuideView struct {
	Mode       valuation.Mode         `json:"mode"`
	Categories []string               `json:"categories"`
	Entries    []valuation.GuideEntry `json:"entries"`
}

func (s *Service) Guide(ctx context.Context, userID string, opts valuation.GuideOptions) (*GuideView, error) {
	var g GuideView
	err := s.with(userID, func(sess *Session) error {
		g = GuideView{
			Mode:       sess.mode,
			Categories: valuation.Categories(sess.snapshot.Entries),
			Entries:    valuation.Guide(sess.snapshot.Entries, sess.mode, opts),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ------------------------------------------------------------
// Helpers
// ------------------------------------------------------------

// with runs fn with the session locked.
func (s *Service) with(userID string, fn func(*Session) error) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrMissingUserID
	}

	sess, err := s.repo.Get(userID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.touched = s.now()
	return fn(sess)
}

// lockSync serializes ledger changes that are pushed to the leaderboard, so
// pushes land in the order the ledger changed. Hold it until the push returns.
func (s *Service) lockSync(userID string) (func(), error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrMissingUserID
	}

	sess, err := s.repo.Get(userID)
	if err != nil {
		return nil, err
	}

	sess.syncMu.Lock()
	return sess.syncMu.Unlock, nil
}

func (s *Service) plate(userID string, fn func(*plate.Builder) error) (*plate.View, error) {
	var v plate.View
	err := s.with(userID, func(sess *Session) error {
		if err := fn(sess.builder); err != nil {
			return err
		}
		v = sess.builder.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) recordSync(userID string, agg *leaderboard.UserAggregate, err error) SyncStatus {
	status := SyncStatus{Synced: err == nil, At: s.now(), UserData: agg}
	if err != nil {
		status.SyncError = err.Error()
		log.Warn().Err(err).Str("userId", userID).Msg("leaderboard sync failed")
	}

	_ = s.with(userID, func(sess *Session) error {
		last := status
		sess.lastSync = &last
		return nil
	})
	return status
}

func (s *Service) view(sess *Session) View {
	items := sess.ledger.Items()

	return View{
		UserID:    sess.UserID,
		Mode:      sess.mode,
		Catalog:   catalogInfo(sess.snapshot),
		Plate:     sess.builder.View(),
		History:   s.historyView(sess),
		Dashboard: dashboard.Build(items, sess.mode, sess.snapshot.Entries, s.settings, s.now()),
		LastSync:  sess.lastSync,
	}
}

func (s *Service) historyView(sess *Session) HistoryView {
	items := sess.ledger.Items()
	return HistoryView{
		Items:  items,
		Totals: s.settings.Liquids().Fold(items, sess.mode, sess.snapshot.Entries),
	}
}

func catalogInfo(snap catalog.Snapshot) CatalogInfo {
	return CatalogInfo{
		FromSheet: snap.FromSheet,
		LoadedAt:  snap.LoadedAt,
		Entries:   len(snap.Entries),
	}
}

func filled(items []core.PlateItem, entries []catalog.MenuEntry) []core.PlateItem {
	out := make([]core.PlateItem, len(items))
	for i, item := range items {
		out[i] = valuation.Fill(item, entries)
	}
	return out
}

func findEntry(entries []catalog.MenuEntry, name string) (catalog.MenuEntry, bool) {
	name = strings.TrimSpace(name)
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return valuation.MatchCatalog(name, entries)
}
