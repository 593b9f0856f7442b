package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/owewow/owewow/internal/models"
)

const eps = 1e-9

func approx(t *testing.T, got, want float64, what string) {
	t.Helper()
	if math.Abs(got-want) > 0.001 {
		t.Errorf("%s = %v, want %v", what, got, want)
	}
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name     string
		itemName string
		amount   float64
		qty      int
		wantErr  error
		wantQty  int
	}{
		{name: "valid item", itemName: "Nasi Lemak", amount: 12.50, qty: 2, wantQty: 2},
		{name: "name trimmed", itemName: "  Teh Tarik  ", amount: 3.00, qty: 1, wantQty: 1},
		{name: "zero quantity defaults to 1", itemName: "Roti", amount: 1.50, qty: 0, wantQty: 1},
		{name: "negative quantity defaults to 1", itemName: "Roti", amount: 1.50, qty: -3, wantQty: 1},
		{name: "empty name rejected", itemName: "   ", amount: 5.00, qty: 1, wantErr: ErrInvalidInput},
		{name: "zero amount rejected", itemName: "Air Kosong", amount: 0, qty: 1, wantErr: ErrInvalidInput},
		{name: "negative amount rejected", itemName: "Refund", amount: -2, qty: 1, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			item, err := l.AddItem(tt.itemName, tt.amount, tt.qty)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddItem() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddItem() failed: %v", err)
			}
			if item.ID == "" {
				t.Error("expected generated item ID")
			}
			if item.Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", item.Quantity, tt.wantQty)
			}
			approx(t, l.Totals().Subtotal, tt.amount*float64(tt.wantQty), "subtotal")
		})
	}
}

func TestSubtotal_BundleAndQuantity(t *testing.T) {
	l := Load([]models.LineSnapshot{
		{LineID: "a", Name: "Satay", Amount: 1.20, Qty: 10},
		{LineID: "b", Name: "Set Meal", Amount: 25.00, Qty: 2, IsBundle: true, Components: []string{"Rice", "Chicken", "Drink"}},
		{LineID: "c", Name: "Water", Amount: 0.50}, // qty absent, defaults to 1
	}, models.TotalsSnapshot{})

	// Bundle price counts once regardless of quantity.
	approx(t, l.Totals().Subtotal, 12.00+25.00+0.50, "subtotal")

	line, ok := l.Line("c")
	if !ok {
		t.Fatal("line c not found")
	}
	if line.Quantity != 1 {
		t.Errorf("quantity defaulted to %d, want 1", line.Quantity)
	}
}

func TestEditItem(t *testing.T) {
	l := New()
	item, err := l.AddItem("Mee Goreng", 8.00, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	edited, err := l.EditItem(item.ID, "Mee Goreng Mamak", 9.50, 2)
	if err != nil {
		t.Fatalf("EditItem failed: %v", err)
	}
	if edited.Name != "Mee Goreng Mamak" {
		t.Errorf("name = %q", edited.Name)
	}
	approx(t, l.Totals().Subtotal, 19.00, "subtotal after edit")

	if _, err := l.EditItem("missing", "X", 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("EditItem on missing id: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteItem(t *testing.T) {
	l := New()
	a, _ := l.AddItem("A", 10.00, 1)
	b, _ := l.AddItem("B", 5.00, 1)

	if err := l.DeleteItem(a.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	approx(t, l.Totals().Subtotal, 5.00, "subtotal after delete")

	if err := l.DeleteItem(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: error = %v, want ErrNotFound", err)
	}
	if _, ok := l.Line(b.ID); !ok {
		t.Error("remaining line missing after delete")
	}
}

func TestTaxPercentTracksSubtotal(t *testing.T) {
	l := New()
	l.AddItem("A", 100.00, 1)
	l.SetTaxPercent(6)
	approx(t, l.Totals().TaxAmount, 6.00, "tax at 100")

	// Percent-driven tax re-derives when the subtotal changes.
	l.AddItem("B", 50.00, 1)
	approx(t, l.Totals().TaxAmount, 9.00, "tax at 150")
	approx(t, l.Totals().TaxPercent, 6, "tax percent")
}

func TestManualAmountPersists(t *testing.T) {
	l := New()
	l.AddItem("A", 100.00, 1)
	l.SetTaxAmount(4.20)

	// Manual override wins until a percent is re-asserted.
	l.AddItem("B", 50.00, 1)
	approx(t, l.Totals().TaxAmount, 4.20, "manual tax after subtotal change")
	approx(t, l.Totals().TaxPercent, 0, "percent cleared by manual amount")

	l.SetTaxPercent(10)
	approx(t, l.Totals().TaxAmount, 15.00, "tax after percent re-asserted")
}

func TestNegativeChargesClampToZero(t *testing.T) {
	l := New()
	l.AddItem("A", 50.00, 1)
	l.SetTaxPercent(-6)
	l.SetServiceAmount(-3)
	l.SetDiscountPercent(-10)

	totals := l.Totals()
	approx(t, totals.TaxAmount, 0, "negative tax percent")
	approx(t, totals.ServiceAmount, 0, "negative service amount")
	approx(t, totals.DiscountAmount, 0, "negative discount percent")
	approx(t, totals.GrandTotal, 50.00, "grand total")
}

func TestGrandTotal_EndToEnd(t *testing.T) {
	l := New()
	l.AddItem("Dinner", 100.00, 1)
	l.SetTaxPercent(6)
	l.SetServicePercent(10)

	totals := l.Totals()
	approx(t, totals.Subtotal, 100.00, "subtotal")
	approx(t, totals.TaxAmount, 6.00, "tax")
	approx(t, totals.ServiceAmount, 10.00, "service charge")
	// 116.00 ends in 0 sen, so the 5-sen rule is a no-op.
	if math.Abs(totals.Rounding) > eps {
		t.Errorf("rounding = %v, want 0", totals.Rounding)
	}
	approx(t, totals.GrandTotal, 116.00, "grand total")
}

func TestGrandTotal_WithRoundingAndDiscount(t *testing.T) {
	l := New()
	l.AddItem("A", 10.33, 1)
	l.SetDiscountAmount(0.30)

	totals := l.Totals()
	// before rounding = 10.03, rounds up to 10.05
	approx(t, totals.Rounding, 0.02, "rounding")
	approx(t, totals.GrandTotal, 10.05, "grand total")
}

func TestRecomputeIdempotent(t *testing.T) {
	l := New()
	l.AddItem("A", 33.33, 3)
	l.SetTaxPercent(6)
	l.SetServicePercent(10)

	first := l.Totals()
	second := l.Totals()
	if first != second {
		t.Errorf("totals changed without mutation: %+v vs %+v", first, second)
	}
}

func TestLoad_NormalizesTotals(t *testing.T) {
	// Parser claims tax 5.00 at 6%, but the lines only sum to 50: the
	// percent drives, so the loaded ledger re-derives tax from the real
	// subtotal.
	l := Load([]models.LineSnapshot{
		{LineID: "a", Name: "A", Amount: 50.00, Qty: 1},
	}, models.TotalsSnapshot{
		Subtotal:   83.00,
		Tax:        5.00,
		TaxPercent: 6,
		Discount:   1.00,
		GrandTotal: 90.00,
	})

	totals := l.Totals()
	approx(t, totals.Subtotal, 50.00, "subtotal recomputed from lines")
	approx(t, totals.TaxAmount, 3.00, "tax re-derived from percent")
	// Discount has no percent on the wire, so the amount is kept as fixed.
	approx(t, totals.DiscountAmount, 1.00, "fixed discount preserved")
	approx(t, totals.GrandTotal, 52.00, "grand total rebuilt")
}

func TestLoad_GeneratesMissingLineIDs(t *testing.T) {
	l := Load([]models.LineSnapshot{{Name: "A", Amount: 2.00, Qty: 1}}, models.TotalsSnapshot{})
	lines := l.Lines()
	if len(lines) != 1 || lines[0].ID == "" {
		t.Fatalf("expected generated line ID, got %+v", lines)
	}
}
