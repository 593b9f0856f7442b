// Package session binds one receipt's ledger to the people splitting it and
// keeps the two sides consistent: deleting a line also drops every claim on
// it, in the same call. A session is an explicit object passed by reference;
// there is no ambient shared state.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/owewow/owewow/internal/ledger"
	"github.com/owewow/owewow/internal/models"
	"github.com/owewow/owewow/internal/settlement"
)

// ErrNotFound is returned when an operation references a person ID that is
// not part of the session.
var ErrNotFound = errors.New("person not found")

// DefaultGroupID is used when the caller does not name a group.
const DefaultGroupID = "quick-split"

// Session is the single writer for one receipt's working state: the line
// ledger, the people with their claims, and per-person payment status.
// Not safe for concurrent use.
type Session struct {
	receiptID  string
	groupID    string
	sourceFile string
	category   *models.Category

	ledger   *ledger.LineLedger
	people   []*models.Person
	payments map[string]models.PaymentStatus
}

// New creates an empty session for a fresh receipt.
func New(receiptID string) *Session {
	if receiptID == "" {
		receiptID = uuid.New().String()
	}
	return &Session{
		receiptID: receiptID,
		groupID:   DefaultGroupID,
		ledger:    ledger.New(),
		payments:  make(map[string]models.PaymentStatus),
	}
}

// Load rebuilds a session from a receipt snapshot and an optional assignment
// snapshot. The ledger normalizes lines and recomputes totals on load.
func Load(receipt models.ReceiptSnapshot, assignment *models.AssignmentSnapshot) *Session {
	s := New(receipt.ReceiptID)
	if receipt.GroupID != "" {
		s.groupID = receipt.GroupID
	}
	s.sourceFile = receipt.SourceFile
	s.category = receipt.Category
	s.ledger = ledger.Load(receipt.Lines, receipt.Totals)

	if assignment != nil {
		for _, ps := range assignment.People {
			p := &models.Person{ID: ps.ID, Name: ps.Name}
			for _, lineID := range ps.Items {
				// Only claims on lines that still exist survive a load.
				if _, ok := s.ledger.Line(lineID); ok {
					p.AddClaim(lineID)
				}
			}
			s.people = append(s.people, p)
		}
		for personID, status := range assignment.PaymentStatus {
			s.payments[personID] = status
		}
		if assignment.GroupID != "" {
			s.groupID = assignment.GroupID
		}
	}
	return s
}

// ReceiptID returns the receipt this session works on.
func (s *Session) ReceiptID() string { return s.receiptID }

// Ledger exposes the underlying line ledger for read-only queries.
func (s *Session) Ledger() *ledger.LineLedger { return s.ledger }

// People returns the session's participants. Callers must not mutate claim
// sets directly; use the claim operations below.
func (s *Session) People() []*models.Person { return s.people }

// Engine returns a settlement engine over the current ledger and people.
func (s *Session) Engine() *settlement.Engine {
	return settlement.New(s.ledger.Lines(), s.ledger.Totals(), s.people)
}

// AddItem adds a line through the ledger.
func (s *Session) AddItem(name string, unitAmount float64, quantity int) (models.LineItem, error) {
	return s.ledger.AddItem(name, unitAmount, quantity)
}

// EditItem edits a line through the ledger.
func (s *Session) EditItem(id, name string, unitAmount float64, quantity int) (models.LineItem, error) {
	return s.ledger.EditItem(id, name, unitAmount, quantity)
}

// DeleteItem removes a line and every claim on it in one operation, so no
// dangling claim is ever observable.
func (s *Session) DeleteItem(id string) error {
	if err := s.ledger.DeleteItem(id); err != nil {
		return err
	}
	for _, p := range s.people {
		p.RemoveClaim(id)
	}
	return nil
}

// AddPerson adds a participant with a fresh ID and no claims.
func (s *Session) AddPerson(name string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: person name is empty", ledger.ErrInvalidInput)
	}
	p := &models.Person{ID: uuid.New().String(), Name: name}
	s.people = append(s.people, p)
	return p, nil
}

// RemovePerson removes a participant along with their claims and payment
// status.
func (s *Session) RemovePerson(personID string) error {
	for i, p := range s.people {
		if p.ID == personID {
			s.people = append(s.people[:i], s.people[i+1:]...)
			delete(s.payments, personID)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, personID)
}

func (s *Session) person(personID string) (*models.Person, error) {
	for _, p := range s.people {
		if p.ID == personID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, personID)
}

// ToggleClaim flips one person's claim on a line: claim it if they don't,
// release it if they do. Mirrors tapping an item in the assignment view.
func (s *Session) ToggleClaim(personID, lineID string) error {
	p, err := s.person(personID)
	if err != nil {
		return err
	}
	if _, ok := s.ledger.Line(lineID); !ok {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, lineID)
	}
	if p.Claims(lineID) {
		p.RemoveClaim(lineID)
	} else {
		p.AddClaim(lineID)
	}
	return nil
}

// SetPaymentStatus records whether a person has settled their share.
func (s *Session) SetPaymentStatus(personID, status string) error {
	if _, err := s.person(personID); err != nil {
		return err
	}
	s.payments[personID] = models.PaymentStatus{
		Status:    status,
		UpdatedAt: time.Now().Unix(),
	}
	return nil
}

// Receipt emits the session's receipt snapshot.
func (s *Session) Receipt() models.ReceiptSnapshot {
	return models.ReceiptSnapshot{
		ReceiptID:  s.receiptID,
		GroupID:    s.groupID,
		SourceFile: s.sourceFile,
		Category:   s.category,
		Lines:      s.ledger.LinesSnapshot(),
		Totals:     s.ledger.TotalsSnapshot(),
	}
}

// Assignment emits the session's assignment snapshot.
func (s *Session) Assignment() models.AssignmentSnapshot {
	people := make([]models.PersonSnapshot, len(s.people))
	for i, p := range s.people {
		items := make([]string, len(p.Items))
		copy(items, p.Items)
		people[i] = models.PersonSnapshot{ID: p.ID, Name: p.Name, Items: items}
	}
	var payments map[string]models.PaymentStatus
	if len(s.payments) > 0 {
		payments = make(map[string]models.PaymentStatus, len(s.payments))
		for k, v := range s.payments {
			payments[k] = v
		}
	}
	return models.AssignmentSnapshot{
		ReceiptID:     s.receiptID,
		GroupID:       s.groupID,
		People:        people,
		PaymentStatus: payments,
	}
}

// ShareSummary renders the plain-text bill split summary used by the share
// flow: one line per person plus the grand total.
func (s *Session) ShareSummary() string {
	engine := s.Engine()
	var b strings.Builder
	b.WriteString("Bill Split Summary\n\n")
	for _, share := range engine.Shares() {
		fmt.Fprintf(&b, "%s: RM%.2f\n", share.Name, share.Total)
	}
	fmt.Fprintf(&b, "\nTotal: RM%.2f", s.ledger.Totals().GrandTotal)
	return b.String()
}
