package session

import (
	"sync"
	"time"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/dashboard"
	"github.com/sposusu/eat-aware-scheduler/internal/leaderboard"
	"github.com/sposusu/eat-aware-scheduler/internal/ledger"
	"github.com/sposusu/eat-aware-scheduler/internal/plate"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

// Session is one diner's working state: the catalog they see, the plate in
// progress and everything they have eaten so far. All fields are guarded by
// mu. syncMu orders leaderboard pushes and is always taken before mu.
type Session struct {
	mu     sync.Mutex
	syncMu sync.Mutex

	UserID    string
	CreatedAt time.Time

	mode     valuation.Mode
	snapshot catalog.Snapshot
	builder  *plate.Builder
	ledger   *ledger.Ledger
	lastSync *SyncStatus
	touched  time.Time
}

func newSession(userID string, snap catalog.Snapshot, liquids valuation.Liquids, now time.Time) *Session {
	sess := &Session{
		UserID:    userID,
		CreatedAt: now,
		mode:      valuation.ModeMarket,
		snapshot:  snap,
		builder:   plate.NewBuilder(snap.Entries, valuation.ModeMarket),
		ledger:    ledger.New(),
		touched:   now,
	}
	sess.builder.SetLiquids(liquids)
	return sess
}

// SyncStatus reports the last push to the leaderboard. A failed push never
// rolls back local history.
type SyncStatus struct {
	Synced    bool                       `json:"synced"`
	SyncError string                     `json:"syncError,omitempty"`
	At        time.Time                  `json:"at"`
	UserData  *leaderboard.UserAggregate `json:"userData,omitempty"`
}

type CatalogInfo struct {
	FromSheet bool      `json:"fromSheet"`
	LoadedAt  time.Time `json:"loadedAt"`
	Entries   int       `json:"entries"`
	Warning   string    `json:"warning,omitempty"`
}

type HistoryView struct {
	Items  []core.PlateItem `json:"items"`
	Totals valuation.Totals `json:"totals"`
}

// View is everything a client needs to render the session.
type View struct {
	UserID    string              `json:"userId"`
	Mode      valuation.Mode      `json:"mode"`
	Catalog   CatalogInfo         `json:"catalog"`
	Plate     plate.View          `json:"plate"`
	History   HistoryView         `json:"history"`
	Dashboard dashboard.Dashboard `json:"dashboard"`
	LastSync  *SyncStatus         `json:"lastSync,omitempty"`
}

// CommitResult is returned after a plate joins the history.
type CommitResult struct {
	Items   []core.PlateItem `json:"items"`
	Totals  valuation.Totals `json:"totals"`
	History HistoryView      `json:"history"`
	SyncStatus
}

// RowPatch edits one draft row. Name changes return suggestions.
type RowPatch struct {
	Name *string `json:"name"`
	plate.ItemPatch
}
