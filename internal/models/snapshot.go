package models

// LineSnapshot is the wire shape of a single receipt line.
type LineSnapshot struct {
	LineID     string   `json:"line_id"`
	Name       string   `json:"name"`
	Amount     float64  `json:"amount"`
	Qty        int      `json:"qty"`
	IsBundle   bool     `json:"is_bundle,omitempty"`
	Components []string `json:"components,omitempty"`
}

// TotalsSnapshot is the wire shape of the bill totals. Optional fields are
// omitted when zero so stored documents match what the parser emits.
type TotalsSnapshot struct {
	Subtotal       float64 `json:"subtotal"`
	Tax            float64 `json:"tax,omitempty"`
	TaxPercent     float64 `json:"tax_percent,omitempty"`
	ServiceCharge  float64 `json:"service_charge,omitempty"`
	ServicePercent float64 `json:"service_percent,omitempty"`
	Discount       float64 `json:"discount,omitempty"`
	Rounding       float64 `json:"rounding,omitempty"`
	GrandTotal     float64 `json:"grand_total"`
}

// ReceiptSnapshot is the serializable form of a parsed receipt. It is
// consumed from the OCR/chat parser, edited via the API, and persisted.
type ReceiptSnapshot struct {
	ReceiptID  string         `json:"receipt_id"`
	GroupID    string         `json:"group_id,omitempty"`
	SourceFile string         `json:"source_file,omitempty"`
	Category   *Category      `json:"category,omitempty"`
	Lines      []LineSnapshot `json:"lines"`
	Totals     TotalsSnapshot `json:"totals"`
}

// PersonSnapshot is the wire shape of one participant and their claims.
type PersonSnapshot struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// AssignmentSnapshot is the serializable form of the people layer: who is
// splitting the receipt, which lines each person claims, and payment state.
type AssignmentSnapshot struct {
	ReceiptID     string                   `json:"receipt_id"`
	GroupID       string                   `json:"group_id,omitempty"`
	People        []PersonSnapshot         `json:"people"`
	PaymentStatus map[string]PaymentStatus `json:"payment_status,omitempty"`
}

// LineFromSnapshot converts a wire line into the domain model. Quantities
// below 1 default to 1, matching the lenient handling of parser output.
func LineFromSnapshot(ls LineSnapshot) LineItem {
	qty := ls.Qty
	if qty < 1 {
		qty = 1
	}
	return LineItem{
		ID:         ls.LineID,
		Name:       ls.Name,
		UnitAmount: ls.Amount,
		Quantity:   qty,
		IsBundle:   ls.IsBundle,
		Components: ls.Components,
	}
}

// SnapshotFromLine converts a domain line into its wire shape.
func SnapshotFromLine(li LineItem) LineSnapshot {
	return LineSnapshot{
		LineID:     li.ID,
		Name:       li.Name,
		Amount:     li.UnitAmount,
		Qty:        li.Quantity,
		IsBundle:   li.IsBundle,
		Components: li.Components,
	}
}
