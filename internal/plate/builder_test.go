package plate

import (
	"context"
	"errors"
	"testing"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

// --------------------------------------------------
// Fakes
// --------------------------------------------------

type fakeRecognizer struct {
	result *core.Recognition
	err    error
	calls  int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img core.Image, prompt string) (*core.Recognition, error) {
	f.calls++
	return f.result, f.err
}

type sink struct {
	items []core.PlateItem
}

func (s *sink) Append(items []core.PlateItem) {
	s.items = append(s.items, items...)
}

func jpeg() core.Image {
	return core.Image{Data: []byte{0xff, 0xd8, 0xff}, MIME: "image/jpeg"}
}

// --------------------------------------------------
// Tests
// --------------------------------------------------

func TestBuilder_RecognitionToCommit(t *testing.T) {
	b := NewBuilder(catalog.Default(), valuation.ModeMarket)
	rec := &fakeRecognizer{result: &core.Recognition{
		Items:   []core.Guess{{Name: "Salmon", Count: 3}},
		Comment: "nice plate",
	}}

	if err := b.Capture(jpeg()); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if b.State() != StateCapturing {
		t.Fatalf("expected capturing, got %s", b.State())
	}

	if err := b.Recognize(context.Background(), rec, "prompt"); err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if b.State() != StateDraft {
		t.Fatalf("expected draft, got %s", b.State())
	}

	items := b.Items()
	if len(items) != 1 || items[0].Price != 70 || items[0].Category != "Sashimi" {
		t.Fatalf("unexpected draft items: %+v", items)
	}
	if b.Comment() != "nice plate" {
		t.Fatalf("unexpected comment %q", b.Comment())
	}

	dst := &sink{}
	committed, err := b.Commit(dst)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(committed) != 1 || len(dst.items) != 1 {
		t.Fatalf("expected 1 committed item, got %d", len(dst.items))
	}
	if b.State() != StateCommitted || len(b.Items()) != 0 {
		t.Fatalf("builder not reset after commit: %s", b.State())
	}
}

func TestBuilder_RecognitionFailureReturnsToCapturing(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	rec := &fakeRecognizer{err: &core.UpstreamError{Op: "recognize", Err: errors.New("quota")}}

	_ = b.Capture(jpeg())
	err := b.Recognize(context.Background(), rec, "")

	var upstream *core.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if b.State() != StateCapturing {
		t.Fatalf("expected capturing after failure, got %s", b.State())
	}

	rec.err = nil
	rec.result = &core.Recognition{Items: []core.Guess{{Name: "Eel"}}}
	if err := b.Recognize(context.Background(), rec, ""); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if b.State() != StateDraft {
		t.Fatalf("expected draft after retry, got %s", b.State())
	}
}

func TestBuilder_CaptureRequiresImage(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)

	if err := b.Capture(core.Image{}); !errors.Is(err, core.ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
	if b.State() != StateEmpty {
		t.Fatalf("state changed on bad capture: %s", b.State())
	}
}

func TestBuilder_RecognizeOnlyFromCapturing(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)

	if _, err := b.BeginRecognition(); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestBuilder_DiscardDuringRecognitionDropsLateResult(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	_ = b.Capture(jpeg())

	ticket, err := b.BeginRecognition()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if b.State() != StateRecognizing {
		t.Fatalf("expected recognizing, got %s", b.State())
	}

	b.Discard()

	err = b.CompleteRecognition(ticket, &core.Recognition{Items: []core.Guess{{Name: "Eel"}}}, nil)
	if !errors.Is(err, ErrStaleRecognition) {
		t.Fatalf("expected ErrStaleRecognition, got %v", err)
	}
	if b.State() != StateDiscarded || len(b.Items()) != 0 {
		t.Fatalf("late result leaked into builder: %s %+v", b.State(), b.Items())
	}
}

func TestBuilder_ManualEntry(t *testing.T) {
	b := NewBuilder(catalog.Default(), valuation.ModeMarket)
	b.StartManual()

	if b.State() != StateDraft {
		t.Fatalf("expected draft, got %s", b.State())
	}
	items := b.Items()
	if len(items) != 1 || items[0].Name != "" || items[0].Count != 1 || items[0].Category != core.DefaultCategory {
		t.Fatalf("unexpected manual row: %+v", items)
	}

	suggestions, err := b.SetName(0, "鮭")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}

	if err := b.SelectSuggestion(0, suggestions[0]); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := b.Items()[0]; got.Price != 70 || got.RestaurantPrice != 120 || got.Count != 1 {
		t.Fatalf("suggestion not applied: %+v", got)
	}
}

func TestBuilder_AdjustCountPrunesAtZero(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	b.StartManual()
	_, _ = b.SetName(0, "Eel")

	if err := b.AdjustCount(0, -1); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(b.Items()) != 0 {
		t.Fatalf("expected row removed, got %+v", b.Items())
	}

	if err := b.AdjustCount(0, -1); !errors.Is(err, core.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if len(b.Items()) != 0 {
		t.Fatalf("expected no rows, got %+v", b.Items())
	}
}

func TestBuilder_AdjustCountClampsLargeDecrement(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	b.StartManual()
	_ = b.AdjustCount(0, 4)

	if got := b.Items()[0].Count; got != 5 {
		t.Fatalf("expected count 5, got %d", got)
	}

	_ = b.AdjustCount(0, -10)
	if len(b.Items()) != 0 {
		t.Fatalf("expected row removed, got %+v", b.Items())
	}
}

func TestBuilder_CommitSkipsBlankRows(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	b.StartManual()
	_, _ = b.SetName(0, "  Eel ")
	_ = b.AddRow()
	_ = b.AddRow()

	dst := &sink{}
	committed, err := b.Commit(dst)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(committed) != 1 || committed[0].Name != "Eel" {
		t.Fatalf("unexpected committed items: %+v", committed)
	}
}

func TestBuilder_CommitEmptyPlateFails(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	b.StartManual()

	dst := &sink{}
	if _, err := b.Commit(dst); !errors.Is(err, core.ErrEmptyPlate) {
		t.Fatalf("expected ErrEmptyPlate, got %v", err)
	}
	if len(dst.items) != 0 {
		t.Fatal("ledger touched on failed commit")
	}
	if b.State() != StateDraft {
		t.Fatalf("expected to stay in draft, got %s", b.State())
	}
}

func TestBuilder_DiscardLeavesLedgerAlone(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	b.StartManual()
	_, _ = b.SetName(0, "Eel")

	b.Discard()

	if b.State() != StateDiscarded {
		t.Fatalf("expected discarded, got %s", b.State())
	}
	if _, err := b.Commit(&sink{}); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after discard, got %v", err)
	}
}

func TestBuilder_TotalsFollowMode(t *testing.T) {
	entries := []catalog.MenuEntry{{Name: "Sashimi Platter", Price: 0, RestaurantPrice: 150, Calories: 200}}
	b := NewBuilder(entries, valuation.ModeMarket)
	b.StartManual()
	_, _ = b.SetName(0, "Sashimi Platter")

	if got := b.Totals().Price; got != 100 {
		t.Fatalf("expected market total 100, got %v", got)
	}

	b.SetMode(valuation.ModeHotel)
	if got := b.Totals().Price; got != 150 {
		t.Fatalf("expected hotel total 150, got %v", got)
	}
	if got := b.Totals().Calories; got != 200 {
		t.Fatalf("expected catalog calories 200, got %v", got)
	}
}

func TestBuilder_UpdateItemRejectsNegative(t *testing.T) {
	b := NewBuilder(nil, valuation.ModeMarket)
	b.StartManual()

	neg := -5.0
	if err := b.UpdateItem(0, ItemPatch{Price: &neg}); !core.IsInputError(err) {
		t.Fatalf("expected input error, got %v", err)
	}

	price := 80.0
	cat := "Sushi"
	if err := b.UpdateItem(0, ItemPatch{Price: &price, Category: &cat}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := b.Items()[0]; got.Price != 80 || got.Category != "Sushi" {
		t.Fatalf("patch not applied: %+v", got)
	}
}

func TestState_String(t *testing.T) {
	if StateRecognizing.String() != "recognizing" {
		t.Fatalf("unexpected name %q", StateRecognizing.String())
	}
	if !StateCommitted.Idle() || StateDraft.Idle() {
		t.Fatal("idle states wrong")
	}
}
