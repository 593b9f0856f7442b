// Package ledger owns the canonical list of receipt lines and derives the
// bill totals from them. Every mutation fully recomputes the totals before
// returning, so callers never observe stale figures.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/owewow/owewow/internal/models"
)

var (
	// ErrNotFound is returned when an operation references a line ID that is
	// not present in the ledger.
	ErrNotFound = errors.New("line item not found")

	// ErrInvalidInput is returned when an item fails validation after
	// coercion (empty name, non-positive amount).
	ErrInvalidInput = errors.New("invalid input")
)

// ChargeMode selects how a bill-level charge derives its amount.
type ChargeMode int

const (
	// ChargePercent derives the amount from the current subtotal on every
	// recompute.
	ChargePercent ChargeMode = iota

	// ChargeFixed keeps a manually entered amount. Fixed amounts do not track
	// later subtotal changes; the manual figure stands until a percent is
	// re-asserted.
	ChargeFixed
)

// Charge is a bill-level charge (tax, service charge, discount) driven either
// by a percentage of the subtotal or by a fixed amount. The last setter wins.
type Charge struct {
	Mode  ChargeMode
	Value float64
}

// resolve returns the charge amount for the given subtotal.
func (c Charge) resolve(subtotal float64) float64 {
	if c.Mode == ChargePercent {
		return round2(c.Value / 100 * subtotal)
	}
	return c.Value
}

// percent returns the driving rate, or 0 for fixed-amount charges.
func (c Charge) percent() float64 {
	if c.Mode == ChargePercent {
		return c.Value
	}
	return 0
}

// clampCharge treats negative charge inputs as zero.
func clampCharge(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// LineLedger maintains the receipt's line items and keeps Totals derived.
// It knows nothing about people or claims; the session layer composes the two.
// Not safe for concurrent use.
type LineLedger struct {
	lines    []models.LineItem
	tax      Charge
	service  Charge
	discount Charge
	totals   models.Totals
}

// New returns an empty ledger with zeroed totals.
func New() *LineLedger {
	l := &LineLedger{}
	l.recompute()
	return l
}

// Load builds a ledger from snapshot lines and totals. Lines are normalized
// (quantity defaults to 1) and totals are recomputed; percent-driven charges
// re-derive from the fresh subtotal while fixed amounts are kept as-is.
func Load(lines []models.LineSnapshot, totals models.TotalsSnapshot) *LineLedger {
	l := &LineLedger{
		tax:      chargeFromSnapshot(totals.TaxPercent, totals.Tax),
		service:  chargeFromSnapshot(totals.ServicePercent, totals.ServiceCharge),
		discount: chargeFromSnapshot(0, totals.Discount),
	}
	for _, ls := range lines {
		item := models.LineFromSnapshot(ls)
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		l.lines = append(l.lines, item)
	}
	l.recompute()
	return l
}

func chargeFromSnapshot(percent, amount float64) Charge {
	if percent > 0 {
		return Charge{Mode: ChargePercent, Value: percent}
	}
	return Charge{Mode: ChargeFixed, Value: clampCharge(amount)}
}

// Lines returns a copy of the current line items in receipt order.
func (l *LineLedger) Lines() []models.LineItem {
	out := make([]models.LineItem, len(l.lines))
	copy(out, l.lines)
	return out
}

// Line returns the item with the given ID.
func (l *LineLedger) Line(id string) (models.LineItem, bool) {
	for _, li := range l.lines {
		if li.ID == id {
			return li, true
		}
	}
	return models.LineItem{}, false
}

// Totals returns the current derived totals.
func (l *LineLedger) Totals() models.Totals {
	return l.totals
}

// AddItem appends a new line and recomputes totals. The name must be
// non-empty after trimming and the amount positive; quantities below 1
// default to 1.
func (l *LineLedger) AddItem(name string, unitAmount float64, quantity int) (models.LineItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.LineItem{}, fmt.Errorf("%w: item name is empty", ErrInvalidInput)
	}
	if unitAmount <= 0 {
		return models.LineItem{}, fmt.Errorf("%w: item amount must be positive", ErrInvalidInput)
	}
	if quantity < 1 {
		quantity = 1
	}
	item := models.LineItem{
		ID:         uuid.New().String(),
		Name:       name,
		UnitAmount: unitAmount,
		Quantity:   quantity,
	}
	l.lines = append(l.lines, item)
	l.recompute()
	return item, nil
}

// EditItem replaces the name, amount and quantity of an existing line in
// place and recomputes totals. Bundle flag and components are untouched.
func (l *LineLedger) EditItem(id, name string, unitAmount float64, quantity int) (models.LineItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.LineItem{}, fmt.Errorf("%w: item name is empty", ErrInvalidInput)
	}
	if unitAmount <= 0 {
		return models.LineItem{}, fmt.Errorf("%w: item amount must be positive", ErrInvalidInput)
	}
	if quantity < 1 {
		quantity = 1
	}
	for i := range l.lines {
		if l.lines[i].ID != id {
			continue
		}
		l.lines[i].Name = name
		l.lines[i].UnitAmount = unitAmount
		l.lines[i].Quantity = quantity
		l.recompute()
		return l.lines[i], nil
	}
	return models.LineItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SetItemAmount updates only the unit amount of an existing line. Used by the
// command path, where price edits address items by name.
func (l *LineLedger) SetItemAmount(id string, unitAmount float64) error {
	for i := range l.lines {
		if l.lines[i].ID == id {
			l.lines[i].UnitAmount = unitAmount
			l.recompute()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// DeleteItem removes a line and recomputes totals. The caller is responsible
// for dropping any person claims on the deleted line; the session layer does
// both in one operation.
func (l *LineLedger) DeleteItem(id string) error {
	for i := range l.lines {
		if l.lines[i].ID == id {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			l.recompute()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SetTaxPercent makes the tax percent-driven; the amount re-derives from the
// subtotal on every recompute. Negative rates are treated as zero.
func (l *LineLedger) SetTaxPercent(p float64) {
	l.tax = Charge{Mode: ChargePercent, Value: clampCharge(p)}
	l.recompute()
}

// SetTaxAmount fixes the tax to an exact figure and clears the percent.
func (l *LineLedger) SetTaxAmount(a float64) {
	l.tax = Charge{Mode: ChargeFixed, Value: clampCharge(a)}
	l.recompute()
}

// SetServicePercent makes the service charge percent-driven.
func (l *LineLedger) SetServicePercent(p float64) {
	l.service = Charge{Mode: ChargePercent, Value: clampCharge(p)}
	l.recompute()
}

// SetServiceAmount fixes the service charge and clears the percent.
func (l *LineLedger) SetServiceAmount(a float64) {
	l.service = Charge{Mode: ChargeFixed, Value: clampCharge(a)}
	l.recompute()
}

// SetDiscountPercent makes the discount percent-driven.
func (l *LineLedger) SetDiscountPercent(p float64) {
	l.discount = Charge{Mode: ChargePercent, Value: clampCharge(p)}
	l.recompute()
}

// SetDiscountAmount fixes the discount and clears the percent.
func (l *LineLedger) SetDiscountAmount(a float64) {
	l.discount = Charge{Mode: ChargeFixed, Value: clampCharge(a)}
	l.recompute()
}

// recompute derives the full Totals from the current lines and charges:
// subtotal, resolved charges, 5-sen rounding and grand total.
func (l *LineLedger) recompute() {
	subtotal := 0.0
	for _, li := range l.lines {
		subtotal += li.LineTotal()
	}

	tax := l.tax.resolve(subtotal)
	service := l.service.resolve(subtotal)
	discount := l.discount.resolve(subtotal)

	// Snap to whole sen before rounding so float accumulation noise cannot
	// produce a phantom adjustment on amounts already on a 5-sen boundary.
	beforeRounding := round2(subtotal + tax + service - discount)
	rounding := RoundingAdjustment(beforeRounding)

	l.totals = models.Totals{
		Subtotal:        subtotal,
		TaxPercent:      l.tax.percent(),
		TaxAmount:       tax,
		ServicePercent:  l.service.percent(),
		ServiceAmount:   service,
		DiscountPercent: l.discount.percent(),
		DiscountAmount:  discount,
		Rounding:        rounding,
		GrandTotal:      beforeRounding + rounding,
	}
}

// TotalsSnapshot returns the current totals in wire shape.
func (l *LineLedger) TotalsSnapshot() models.TotalsSnapshot {
	t := l.totals
	return models.TotalsSnapshot{
		Subtotal:       t.Subtotal,
		Tax:            t.TaxAmount,
		TaxPercent:     t.TaxPercent,
		ServiceCharge:  t.ServiceAmount,
		ServicePercent: t.ServicePercent,
		Discount:       t.DiscountAmount,
		Rounding:       t.Rounding,
		GrandTotal:     t.GrandTotal,
	}
}

// LinesSnapshot returns the current lines in wire shape.
func (l *LineLedger) LinesSnapshot() []models.LineSnapshot {
	out := make([]models.LineSnapshot, len(l.lines))
	for i, li := range l.lines {
		out[i] = models.SnapshotFromLine(li)
	}
	return out
}
