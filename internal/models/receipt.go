package models

// LineItem represents a single line on a receipt.
// Items can be shared among multiple people; the split is always equal.
type LineItem struct {
	// ID is the unique identifier for the line (UUID format), stable for the
	// lifetime of the receipt.
	ID string

	// Name is the display label (e.g., "Nasi Lemak", "Teh Tarik").
	Name string

	// UnitAmount is the unit price. For bundles it is the total bundle price.
	UnitAmount float64

	// Quantity is the number of units, always >= 1.
	Quantity int

	// IsBundle marks lines whose UnitAmount is already a total for several
	// components (e.g., a set meal). Quantity is informational for bundles.
	IsBundle bool

	// Components lists the sub-items of a bundle. Display only.
	Components []string
}

// LineTotal returns the monetary total for this line. Bundles are priced as a
// whole; everything else is unit price times quantity.
func (li LineItem) LineTotal() float64 {
	if li.IsBundle {
		return li.UnitAmount
	}
	return li.UnitAmount * float64(li.Quantity)
}

// Totals holds the derived bill totals. Every field is recomputed by the
// ledger whenever lines or charges change; nothing here is authoritative on
// its own.
type Totals struct {
	// Subtotal is the sum of all line totals.
	Subtotal float64

	// TaxPercent is the driving tax rate, or 0 when the tax amount was set
	// directly. TaxAmount is always the resolved figure.
	TaxPercent float64
	TaxAmount  float64

	// ServicePercent / ServiceAmount follow the same rule as tax.
	ServicePercent float64
	ServiceAmount  float64

	// DiscountPercent / DiscountAmount follow the same rule, but discount is
	// subtracted from the bill.
	DiscountPercent float64
	DiscountAmount  float64

	// Rounding is the signed 5-sen cash rounding adjustment applied after
	// tax, service charge and discount.
	Rounding float64

	// GrandTotal = Subtotal + TaxAmount + ServiceAmount + Rounding - DiscountAmount.
	GrandTotal float64
}

// Category is the parser's guess at the kind of establishment the receipt
// came from. Carried opaquely through snapshots for display.
type Category struct {
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning,omitempty"`
}
