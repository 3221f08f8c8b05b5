// Package tray holds the products a session intends to buy. Every change
// is written through to a Store before it becomes visible.
package tray

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/good2go/storefront/models"
	"github.com/shopspring/decimal"
)

const (
	cartKey = "good2go_cart"
	unitKey = "good2go_unit_no"
)

// Entry is one selected product. Name and Price are captured when the
// product is added and do not follow later catalog changes.
type Entry struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal is Price × Quantity.
func (e Entry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// persisted is the stored JSON shape of an entry.
type persisted struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Tray struct {
	store   Store
	key     string
	entries []Entry
}

// CartKey is the store key of a session's tray.
func CartKey(sessionID string) string {
	return cartKey + ":" + sessionID
}

// Load reads the session's tray. A missing value is an empty tray; a value
// that does not decode is deleted and also yields an empty tray.
func Load(ctx context.Context, store Store, sessionID string) (*Tray, error) {
	t := &Tray{store: store, key: CartKey(sessionID)}

	raw, err := store.Get(ctx, t.key)
	if errors.Is(err, ErrNotFound) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}

	entries, err := decode(raw)
	if err != nil {
		if err := store.Delete(ctx, t.key); err != nil {
			return nil, err
		}
		return t, nil
	}
	t.entries = entries
	return t, nil
}

func decode(raw string) ([]Entry, error) {
	var stored []persisted
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(stored))
	for _, p := range stored {
		if p.ProductID == "" || p.Quantity <= 0 {
			continue
		}
		if slices.ContainsFunc(entries, func(e Entry) bool { return e.ProductID == p.ProductID }) {
			continue
		}
		entries = append(entries, Entry{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     decimal.NewFromFloat(p.Price),
			Quantity:  p.Quantity,
		})
	}
	return entries, nil
}

func encode(entries []Entry) (string, error) {
	stored := make([]persisted, len(entries))
	for i, e := range entries {
		stored[i] = persisted{
			ProductID: e.ProductID,
			Name:      e.Name,
			Price:     e.Price.InexactFloat64(),
			Quantity:  e.Quantity,
		}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// commit persists next and only then makes it the current state.
func (t *Tray) commit(ctx context.Context, next []Entry) error {
	raw, err := encode(next)
	if err != nil {
		return err
	}
	if err := t.store.Set(ctx, t.key, raw); err != nil {
		return err
	}
	t.entries = next
	return nil
}

func (t *Tray) index(productID string) int {
	return slices.IndexFunc(t.entries, func(e Entry) bool { return e.ProductID == productID })
}

// Toggle removes the product if it is in the tray, otherwise adds it with
// quantity 1.
func (t *Tray) Toggle(ctx context.Context, p *models.Product) error {
	if i := t.index(p.ID); i >= 0 {
		return t.commit(ctx, slices.Delete(slices.Clone(t.entries), i, i+1))
	}
	next := append(slices.Clone(t.entries), Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
	return t.commit(ctx, next)
}

// SetQuantity updates an entry in place. A quantity of zero or less removes
// it, and an absent product is ignored.
func (t *Tray) SetQuantity(ctx context.Context, productID string, quantity int) error {
	i := t.index(productID)
	if i < 0 {
		return nil
	}
	next := slices.Clone(t.entries)
	if quantity <= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next[i].Quantity = quantity
	}
	return t.commit(ctx, next)
}

// Clear empties the tray and removes the stored copy.
func (t *Tray) Clear(ctx context.Context) error {
	if err := t.store.Delete(ctx, t.key); err != nil {
		return err
	}
	t.entries = nil
	return nil
}

// Entries returns a copy of the entries in insertion order.
func (t *Tray) Entries() []Entry {
	return slices.Clone(t.entries)
}

func (t *Tray) Contains(productID string) bool {
	return t.index(productID) >= 0
}

func (t *Tray) Len() int {
	return len(t.entries)
}

func (t *Tray) TotalItems() int {
	n := 0
	for _, e := range t.entries {
		n += e.Quantity
	}
	return n
}

func (t *Tray) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// Lines converts the entries into order lines.
func (t *Tray) Lines() []models.OrderLine {
	lines := make([]models.OrderLine, len(t.entries))
	for i, e := range t.entries {
		lines[i] = models.OrderLine{
			ProductID: e.ProductID,
			Name:      e.Name,
			Price:     e.Price,
			Quantity:  e.Quantity,
		}
	}
	return lines
}

// UnitNumber returns the unit number last entered by the session, or ""
// when none is stored.
func UnitNumber(ctx context.Context, store Store, sessionID string) (string, error) {
	v, err := store.Get(ctx, unitKey+":"+sessionID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetUnitNumber remembers the session's unit number. An empty value
// forgets it.
func SetUnitNumber(ctx context.Context, store Store, sessionID, unitNo string) error {
	if unitNo == "" {
		return store.Delete(ctx, unitKey+":"+sessionID)
	}
	return store.Set(ctx, unitKey+":"+sessionID, unitNo)
}
