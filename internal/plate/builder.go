package plate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

const manualComment = "Manual input"

var ErrStaleRecognition = errors.New("recognition result superseded")

// Ticket identifies one recognition attempt. Results for an old ticket are
// dropped.
type Ticket struct {
	ID      uint64
	Image   core.Image
	Catalog []catalog.MenuEntry
}

// ItemPatch carries optional field edits for one draft row.
type ItemPatch struct {
	Price           *float64 `json:"price"`
	RestaurantPrice *float64 `json:"restaurantPrice"`
	Calories        *float64 `json:"calories"`
	Category        *string  `json:"category"`
	ML              *float64 `json:"ml"`
}

// View is a read-only copy of the builder.
type View struct {
	State   string           `json:"state"`
	Mode    valuation.Mode   `json:"mode"`
	Image   *core.Image      `json:"image,omitempty"`
	Items   []core.PlateItem `json:"items"`
	Comment string           `json:"comment"`
	Totals  valuation.Totals `json:"totals"`
}

// Builder assembles one plate at a time. It is not safe for concurrent use;
// owners serialize access.
type Builder struct {
	state   State
	image   *core.Image
	items   []core.PlateItem
	comment string
	mode    valuation.Mode
	catalog []catalog.MenuEntry
	liquids valuation.Liquids
	ticket  uint64
}

func NewBuilder(entries []catalog.MenuEntry, mode valuation.Mode) *Builder {
	if mode == "" {
		mode = valuation.ModeMarket
	}
	return &Builder{
		state:   StateEmpty,
		mode:    mode,
		catalog: catalog.Clone(entries),
		liquids: valuation.DefaultLiquids(),
	}
}

func (b *Builder) State() State { return b.state }
func (b *Builder) Mode() valuation.Mode { return b.mode }
func (b *Builder) Comment() string { return b.comment }

func (b *Builder) Items() []core.PlateItem {
	out := make([]core.PlateItem, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Builder) SetMode(mode valuation.Mode) { b.mode = mode }

func (b *Builder) SetCatalog(entries []catalog.MenuEntry) { b.catalog = catalog.Clone(entries) }

func (b *Builder) SetLiquids(l valuation.Liquids) { b.liquids = l }

// Totals values the current items in the current mode.
func (b *Builder) Totals() valuation.Totals {
	return b.liquids.Fold(b.items, b.mode, b.catalog)
}

func (b *Builder) View() View {
	v := View{
		State:   b.state.String(),
		Mode:    b.mode,
		Items:   b.Items(),
		Comment: b.comment,
		Totals:  b.Totals(),
	}
	if b.image != nil {
		img := *b.image
		v.Image = &img
	}
	return v
}

// ------------------------------------------------------------
// Capture / recognition
// ------------------------------------------------------------

// Capture starts a new plate from a photo, replacing anything in progress.
func (b *Builder) Capture(img core.Image) error {
	if len(img.Data) == 0 {
		return core.ErrMissingImage
	}
	if img.MIME == "" {
		img.MIME = "image/jpeg"
	}

	b.reset()
	b.image = &img
	b.state = StateCapturing
	return nil
}

// StartManual opens a draft with one blank row and no photo.
func (b *Builder) StartManual() {
	b.reset()
	b.items = []core.PlateItem{core.BlankItem()}
	b.comment = manualComment
	b.state = StateDraft
}

// BeginRecognition moves a captured plate into Recognizing and hands out the
// ticket the result must be completed with.
func (b *Builder) BeginRecognition() (Ticket, error) {
	if b.state != StateCapturing || b.image == nil {
		return Ticket{}, b.invalid("recognize")
	}

	b.ticket++
	b.state = StateRecognizing

	return Ticket{
		ID:      b.ticket,
		Image:   *b.image,
		Catalog: catalog.Clone(b.catalog),
	}, nil
}

// CompleteRecognition applies a recognizer outcome. Failures return the
// plate to Capturing so the user can retry.
func (b *Builder) CompleteRecognition(t Ticket, res *core.Recognition, err error) error {
	if b.state != StateRecognizing || t.ID != b.ticket {
		return ErrStaleRecognition
	}

	if err == nil && res == nil {
		err = &core.UpstreamError{Op: "recognize", Err: errors.New("empty recognition result")}
	}
	if err != nil {
		b.state = StateCapturing
		return err
	}

	b.items = valuation.Enrich(res.Items, t.Catalog)
	b.comment = res.Comment
	b.state = StateDraft
	return nil
}

// Recognize runs a full recognition round synchronously.
func (b *Builder) Recognize(ctx context.Context, r core.Recognizer, prompt string) error {
	t, err := b.BeginRecognition()
	if err != nil {
		return err
	}

	res, err := r.Recognize(ctx, t.Image, prompt)
	return b.CompleteRecognition(t, res, err)
}

// ------------------------------------------------------------
// Draft edits
// ------------------------------------------------------------

// SetName renames a row and returns autocomplete suggestions for the new name.
func (b *Builder) SetName(i int, name string) ([]catalog.MenuEntry, error) {
	if err := b.editable(i); err != nil {
		return nil, err
	}

	b.items[i].Name = name
	return valuation.Suggest(name, b.catalog, valuation.SuggestionLimit), nil
}

// SelectSuggestion overwrites a row with a catalog entry, keeping its count.
func (b *Builder) SelectSuggestion(i int, e catalog.MenuEntry) error {
	if err := b.editable(i); err != nil {
		return err
	}

	item := &b.items[i]
	item.Name = e.Name
	item.Price = e.Price
	item.RestaurantPrice = e.RestaurantPrice
	item.Calories = e.Calories
	item.Category = e.Category
	item.ML = e.ML
	if item.Category == "" {
		item.Category = core.DefaultCategory
	}
	return nil
}

func (b *Builder) UpdateItem(i int, p ItemPatch) error {
	if err := b.editable(i); err != nil {
		return err
	}

	for _, v := range []*float64{p.Price, p.RestaurantPrice, p.Calories, p.ML} {
		if v != nil && *v < 0 {
			return core.NewInputError("values must not be negative")
		}
	}

	item := &b.items[i]
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.RestaurantPrice != nil {
		item.RestaurantPrice = *p.RestaurantPrice
	}
	if p.Calories != nil {
		item.Calories = *p.Calories
	}
	if p.ML != nil {
		item.ML = *p.ML
	}
	if p.Category != nil {
		item.Category = strings.TrimSpace(*p.Category)
		if item.Category == "" {
			item.Category = core.DefaultCategory
		}
	}
	return nil
}

// AdjustCount changes a row's count, never below zero. A row that reaches
// zero is removed.
func (b *Builder) AdjustCount(i, delta int) error {
	if err := b.editable(i); err != nil {
		return err
	}

	n := b.items[i].Count + delta
	if n <= 0 {
		b.items = append(b.items[:i], b.items[i+1:]...)
		return nil
	}
	b.items[i].Count = n
	return nil
}

func (b *Builder) AddRow() error {
	if b.state != StateDraft {
		return b.invalid("add row")
	}
	b.items = append(b.items, core.BlankItem())
	return nil
}

func (b *Builder) RemoveItem(i int) error {
	if err := b.editable(i); err != nil {
		return err
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	return nil
}

// ------------------------------------------------------------
// Commit / discard
// ------------------------------------------------------------

// Commit hands the named rows to dst and closes the plate.
func (b *Builder) Commit(dst core.ItemAppender) ([]core.PlateItem, error) {
	if b.state != StateDraft {
		return nil, b.invalid("commit")
	}

	var valid []core.PlateItem
	for _, item := range b.items {
		if item.Blank() || item.Count <= 0 {
			continue
		}
		item.Name = strings.TrimSpace(item.Name)
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return nil, core.ErrEmptyPlate
	}

	dst.Append(valid)

	b.reset()
	b.state = StateCommitted
	return valid, nil
}

// Discard drops the plate in progress, including a pending recognition.
func (b *Builder) Discard() {
	b.reset()
	b.state = StateDiscarded
}

func (b *Builder) reset() {
	b.ticket++
	b.image = nil
	b.items = nil
	b.comment = ""
	b.state = StateEmpty
}

func (b *Builder) editable(i int) error {
	if b.state != StateDraft {
		return b.invalid("edit")
	}
	if i < 0 || i >= len(b.items) {
		return core.ErrItemNotFound
	}
	return nil
}

func (b *Builder) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", core.ErrInvalidState, op, b.state)
}
