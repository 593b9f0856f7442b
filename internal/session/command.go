package session

import (
	"fmt"

	"github.com/owewow/owewow/internal/ledger"
)

// Command actions produced by the upstream voice/chat parser. The parser
// itself lives outside this service; commands arrive as structured JSON.
const (
	ActionEditPrice   = "edit_price"
	ActionAddItem     = "add_item"
	ActionDeleteItem  = "delete_item"
	ActionEditTax     = "edit_tax"
	ActionEditService = "edit_service"
	ActionBulk        = "bulk_commands"
)

// Command is one receipt edit addressed by item name rather than line ID,
// the way spoken commands refer to items.
type Command struct {
	Action     string    `json:"action"`
	ItemName   string    `json:"item_name,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Percentage float64   `json:"percentage,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Commands   []Command `json:"commands,omitempty"`
}

// Apply executes a command against the session. Bulk commands apply in order;
// a failing sub-command stops the batch and reports its position.
func (s *Session) Apply(cmd Command) error {
	switch cmd.Action {
	case ActionEditPrice:
		return s.editPriceByName(cmd.ItemName, cmd.Amount)

	case ActionAddItem:
		qty := cmd.Quantity
		if qty < 1 {
			qty = 1
		}
		_, err := s.AddItem(cmd.ItemName, cmd.Amount, qty)
		return err

	case ActionDeleteItem:
		return s.deleteByName(cmd.ItemName)

	case ActionEditTax:
		s.ledger.SetTaxPercent(cmd.Percentage)
		return nil

	case ActionEditService:
		s.ledger.SetServicePercent(cmd.Percentage)
		return nil

	case ActionBulk:
		for i, sub := range cmd.Commands {
			if err := s.Apply(sub); err != nil {
				return fmt.Errorf("command %d (%s): %w", i+1, sub.Action, err)
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown action %q", ledger.ErrInvalidInput, cmd.Action)
	}
}

// editPriceByName updates the unit amount of every line matching the name.
func (s *Session) editPriceByName(name string, amount float64) error {
	matched := false
	for _, li := range s.ledger.Lines() {
		if li.Name == name {
			if err := s.ledger.SetItemAmount(li.ID, amount); err != nil {
				return err
			}
			matched = true
		}
	}
	if !matched {
		return fmt.Errorf("%w: no item named %q", ledger.ErrNotFound, name)
	}
	return nil
}

// deleteByName removes every line matching the name, claims included.
func (s *Session) deleteByName(name string) error {
	matched := false
	for _, li := range s.ledger.Lines() {
		if li.Name == name {
			if err := s.DeleteItem(li.ID); err != nil {
				return err
			}
			matched = true
		}
	}
	if !matched {
		return fmt.Errorf("%w: no item named %q", ledger.ErrNotFound, name)
	}
	return nil
}
