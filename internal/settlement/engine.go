// Package settlement computes how much each person owes for a receipt.
//
// Items claimed by several people split evenly among them. Bill-level charges
// (tax, service charge, rounding, discount) are not itemized per line, so each
// person carries them in proportion to their claimed share of the subtotal.
package settlement

import (
	"github.com/owewow/owewow/internal/models"
)

// CostOfItem returns one claimant's share of a line claimed by the given
// number of people. With no claimants the line is attributed to nobody: it
// still counts toward the subtotal but toward no person's total.
func CostOfItem(item models.LineItem, claimants int) float64 {
	if claimants <= 0 {
		return 0
	}
	return item.LineTotal() / float64(claimants)
}

// PersonShare is the full settlement breakdown for one person.
type PersonShare struct {
	PersonID   string
	Name       string
	ItemsTotal float64
	Tax        float64
	Service    float64
	Rounding   float64
	Discount   float64
	Total      float64
}

// Engine answers settlement queries over a ledger snapshot and a set of
// people. It keeps no derived state: every query walks the current lines and
// claims, so there is nothing to invalidate when either side mutates.
type Engine struct {
	lines  []models.LineItem
	totals models.Totals
	people []*models.Person
}

// New builds an engine over the given snapshot. The people slice is shared
// with the caller; bulk claim operations mutate the persons in place.
func New(lines []models.LineItem, totals models.Totals, people []*models.Person) *Engine {
	return &Engine{lines: lines, totals: totals, people: people}
}

func (e *Engine) line(id string) (models.LineItem, bool) {
	for _, li := range e.lines {
		if li.ID == id {
			return li, true
		}
	}
	return models.LineItem{}, false
}

func (e *Engine) person(id string) *models.Person {
	for _, p := range e.people {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ClaimantCount returns how many people claim the given line.
func (e *Engine) ClaimantCount(lineID string) int {
	n := 0
	for _, p := range e.people {
		if p.Claims(lineID) {
			n++
		}
	}
	return n
}

// itemsTotal sums the person's per-claimant shares over their claimed lines.
// Claims on lines no longer present are ignored.
func (e *Engine) itemsTotal(p *models.Person) float64 {
	total := 0.0
	for _, id := range p.Items {
		item, ok := e.line(id)
		if !ok {
			continue
		}
		total += CostOfItem(item, e.ClaimantCount(id))
	}
	return total
}

// apportion distributes the bill-level charges over the given claimed amount
// in proportion to its share of the subtotal, and returns the grossed-up
// total. A zero subtotal contributes nothing to shared charges.
func (e *Engine) apportion(claimed float64) (tax, service, rounding, discount, total float64) {
	proportion := 0.0
	if e.totals.Subtotal != 0 {
		proportion = claimed / e.totals.Subtotal
	}
	tax = e.totals.TaxAmount * proportion
	service = e.totals.ServiceAmount * proportion
	rounding = e.totals.Rounding * proportion
	discount = e.totals.DiscountAmount * proportion
	total = claimed + tax + service + rounding - discount
	return
}

// PersonTotal returns the amount the given person owes. Unknown person IDs
// and people with no claims owe nothing.
func (e *Engine) PersonTotal(personID string) float64 {
	return e.Breakdown(personID).Total
}

// Breakdown returns the full per-person settlement figures.
func (e *Engine) Breakdown(personID string) PersonShare {
	p := e.person(personID)
	if p == nil {
		return PersonShare{PersonID: personID}
	}
	share := PersonShare{PersonID: p.ID, Name: p.Name}
	share.ItemsTotal = e.itemsTotal(p)
	if share.ItemsTotal == 0 {
		return share
	}
	share.Tax, share.Service, share.Rounding, share.Discount, share.Total = e.apportion(share.ItemsTotal)
	return share
}

// Shares returns the breakdown for every person, in people order.
func (e *Engine) Shares() []PersonShare {
	out := make([]PersonShare, len(e.people))
	for i, p := range e.people {
		out[i] = e.Breakdown(p.ID)
	}
	return out
}

// AssignedItemCount returns how many distinct lines are claimed by at least
// one person.
func (e *Engine) AssignedItemCount() int {
	n := 0
	for _, li := range e.lines {
		if e.ClaimantCount(li.ID) > 0 {
			n++
		}
	}
	return n
}

// UnassignedCount returns how many lines nobody claims yet.
func (e *Engine) UnassignedCount() int {
	return len(e.lines) - e.AssignedItemCount()
}

// IsFullyAssigned reports whether every line has at least one claimant.
func (e *Engine) IsFullyAssigned() bool {
	return e.AssignedItemCount() == len(e.lines)
}

// TotalAssignedAmount returns the grossed-up value of everything claimed so
// far. When the receipt is fully assigned this is exactly the grand total,
// avoiding drift from re-summing rounded partial shares; otherwise the
// claimed line totals carry their proportional slice of the shared charges.
func (e *Engine) TotalAssignedAmount() float64 {
	if e.IsFullyAssigned() {
		return e.totals.GrandTotal
	}

	claimed := 0.0
	for _, li := range e.lines {
		if e.ClaimantCount(li.ID) > 0 {
			claimed += li.LineTotal()
		}
	}
	if claimed == 0 {
		return 0
	}
	_, _, _, _, total := e.apportion(claimed)
	return total
}

// SplitAllEqually makes every person claim every line.
func (e *Engine) SplitAllEqually() {
	for _, p := range e.people {
		for _, li := range e.lines {
			p.AddClaim(li.ID)
		}
	}
}

// SplitItemEqually makes every person claim the given line. People already
// claiming it are unaffected.
func (e *Engine) SplitItemEqually(lineID string) {
	for _, p := range e.people {
		p.AddClaim(lineID)
	}
}

// UnassignItem removes the given line from every person's claims.
func (e *Engine) UnassignItem(lineID string) {
	for _, p := range e.people {
		p.RemoveClaim(lineID)
	}
}

// ClearAllClaims empties every person's claim set.
func (e *Engine) ClearAllClaims() {
	for _, p := range e.people {
		p.Items = nil
	}
}
