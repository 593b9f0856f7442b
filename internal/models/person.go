package models

// Payment status values for a person's share of the bill.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Person represents one participant splitting a receipt.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// Name is the display name.
	Name string

	// Items is the set of line IDs this person claims responsibility for.
	// Order carries no meaning and IDs never repeat; use the claim helpers
	// below to keep it that way.
	Items []string
}

// Claims reports whether the person claims the given line.
func (p *Person) Claims(lineID string) bool {
	for _, id := range p.Items {
		if id == lineID {
			return true
		}
	}
	return false
}

// AddClaim adds a claim on the given line. Adding an existing claim is a no-op.
func (p *Person) AddClaim(lineID string) {
	if p.Claims(lineID) {
		return
	}
	p.Items = append(p.Items, lineID)
}

// RemoveClaim drops the claim on the given line, if present.
func (p *Person) RemoveClaim(lineID string) {
	for i, id := range p.Items {
		if id == lineID {
			p.Items = append(p.Items[:i], p.Items[i+1:]...)
			return
		}
	}
}

// PaymentStatus records whether a person has paid their share.
type PaymentStatus struct {
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updatedAt"`
}
