package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/owewow/owewow/internal/ledger"
	"github.com/owewow/owewow/internal/models"
	"github.com/owewow/owewow/internal/obs"
	"github.com/owewow/owewow/internal/session"
)

// handleSaveReceipt ingests a receipt snapshot from the parser (or an edited
// one from the frontend), normalizes it through the ledger and persists it.
func (s *Service) handleSaveReceipt(w http.ResponseWriter, r *http.Request) {
	var snap models.ReceiptSnapshot
	if err := decodeJSON(r, &snap); err != nil {
		respondError(w, err)
		return
	}

	sess := session.Load(snap, nil)
	if err := s.store.SaveReceipt(r.Context(), sess.Receipt()); err != nil {
		respondError(w, err)
		return
	}
	obs.ReceiptsSaved.Inc()
	slog.Info("Receipt saved", "receipt_id", sess.ReceiptID(), "lines", len(snap.Lines))

	respondJSON(w, http.StatusOK, sess.Receipt())
}

func (s *Service) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.store.GetReceipt(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

type itemRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Qty    int     `json:"qty"`
}

func (s *Service) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	item, err := sess.AddItem(req.Name, req.Amount, req.Qty)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sess); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Item added", "receipt_id", sess.ReceiptID(), "line_id", item.ID, "name", item.Name)

	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Service) handleEditItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	lineID := chi.URLParam(r, "lineID")
	if _, err := sess.EditItem(lineID, req.Name, req.Amount, req.Qty); err != nil {
		respondError(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sess); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

// handleDeleteItem removes a line and every claim on it, then persists both
// snapshots so no dangling claim can be stored.
func (s *Service) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	lineID := chi.URLParam(r, "lineID")
	if err := sess.DeleteItem(lineID); err != nil {
		respondError(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sess); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Item deleted", "receipt_id", sess.ReceiptID(), "line_id", lineID)

	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

// totalsRequest carries tax/service/discount edits. Pointer fields
// distinguish "set to zero" from "leave alone"; a percent and an amount for
// the same charge are mutually exclusive, the percent wins.
type totalsRequest struct {
	TaxPercent      *float64 `json:"tax_percent,omitempty"`
	Tax             *float64 `json:"tax,omitempty"`
	ServicePercent  *float64 `json:"service_percent,omitempty"`
	ServiceCharge   *float64 `json:"service_charge,omitempty"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	Discount        *float64 `json:"discount,omitempty"`
}

func (s *Service) handleSetTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	l := sess.Ledger()
	switch {
	case req.TaxPercent != nil:
		l.SetTaxPercent(*req.TaxPercent)
	case req.Tax != nil:
		l.SetTaxAmount(*req.Tax)
	}
	switch {
	case req.ServicePercent != nil:
		l.SetServicePercent(*req.ServicePercent)
	case req.ServiceCharge != nil:
		l.SetServiceAmount(*req.ServiceCharge)
	}
	switch {
	case req.DiscountPercent != nil:
		l.SetDiscountPercent(*req.DiscountPercent)
	case req.Discount != nil:
		l.SetDiscountAmount(*req.Discount)
	}

	if err := s.store.SaveReceipt(r.Context(), sess.Receipt()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.Receipt())
}

func (s *Service) handleApplyCommands(w http.ResponseWriter, r *http.Request) {
	var cmd session.Command
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err)
		return
	}

	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if err := sess.Apply(cmd); err != nil {
		respondError(w, err)
		return
	}
	if err := s.saveSession(r.Context(), sess); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Commands applied", "receipt_id", sess.ReceiptID(), "action", cmd.Action)

	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

// handleSaveAssignment stores the people layer. Loading through the session
// drops claims on lines that no longer exist before anything is persisted.
func (s *Service) handleSaveAssignment(w http.ResponseWriter, r *http.Request) {
	var snap models.AssignmentSnapshot
	if err := decodeJSON(r, &snap); err != nil {
		respondError(w, err)
		return
	}
	snap.ReceiptID = receiptID(r)

	receipt, err := s.store.GetReceipt(r.Context(), snap.ReceiptID)
	if err != nil {
		respondError(w, err)
		return
	}
	sess := session.Load(receipt, &snap)
	if err := s.store.SaveAssignment(r.Context(), sess.Assignment()); err != nil {
		respondError(w, err)
		return
	}
	obs.AssignmentsSaved.Inc()
	slog.Info("Assignment saved", "receipt_id", snap.ReceiptID, "people", len(snap.People))

	respondJSON(w, http.StatusOK, sess.Assignment())
}

func (s *Service) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := s.store.GetAssignment(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assignment)
}

func (s *Service) handleSplitAll(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	sess.Engine().SplitAllEqually()
	if err := s.store.SaveAssignment(r.Context(), sess.Assignment()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(sess))
}

type paymentRequest struct {
	Status string `json:"status"`
}

func (s *Service) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Status != models.PaymentPending && req.Status != models.PaymentPaid {
		respondError(w, fmt.Errorf("%w: status must be %q or %q",
			ledger.ErrInvalidInput, models.PaymentPending, models.PaymentPaid))
		return
	}

	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	personID := chi.URLParam(r, "personID")
	if err := sess.SetPaymentStatus(personID, req.Status); err != nil {
		respondError(w, err)
		return
	}
	status := sess.Assignment().PaymentStatus[personID]
	if err := s.store.UpdatePaymentStatus(r.Context(), sess.ReceiptID(), personID, status); err != nil {
		respondError(w, err)
		return
	}
	slog.Info("Payment status updated", "receipt_id", sess.ReceiptID(), "person_id", personID, "status", req.Status)

	respondJSON(w, http.StatusOK, status)
}

// personShareJSON is one person's settlement breakdown on the wire.
type personShareJSON struct {
	PersonID      string  `json:"person_id"`
	Name          string  `json:"name"`
	ItemsTotal    float64 `json:"items_total"`
	Tax           float64 `json:"tax"`
	ServiceCharge float64 `json:"service_charge"`
	Rounding      float64 `json:"rounding"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
	PaymentStatus string  `json:"payment_status,omitempty"`
}

type settlementResponse struct {
	ReceiptID       string            `json:"receipt_id"`
	People          []personShareJSON `json:"people"`
	AssignedItems   int               `json:"assigned_items"`
	UnassignedItems int               `json:"unassigned_items"`
	FullyAssigned   bool              `json:"fully_assigned"`
	TotalAssigned   float64           `json:"total_assigned"`
	GrandTotal      float64           `json:"grand_total"`
	Summary         string            `json:"summary"`
}

func (s *Service) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r.Context(), receiptID(r))
	if err != nil {
		respondError(w, err)
		return
	}

	engine := sess.Engine()
	payments := sess.Assignment().PaymentStatus
	shares := engine.Shares()
	people := make([]personShareJSON, len(shares))
	for i, share := range shares {
		people[i] = personShareJSON{
			PersonID:      share.PersonID,
			Name:          share.Name,
			ItemsTotal:    share.ItemsTotal,
			Tax:           share.Tax,
			ServiceCharge: share.Service,
			Rounding:      share.Rounding,
			Discount:      share.Discount,
			Total:         share.Total,
			PaymentStatus: payments[share.PersonID].Status,
		}
	}

	obs.SettlementsComputed.Inc()
	respondJSON(w, http.StatusOK, settlementResponse{
		ReceiptID:       sess.ReceiptID(),
		People:          people,
		AssignedItems:   engine.AssignedItemCount(),
		UnassignedItems: engine.UnassignedCount(),
		FullyAssigned:   engine.IsFullyAssigned(),
		TotalAssigned:   engine.TotalAssignedAmount(),
		GrandTotal:      sess.Ledger().Totals().GrandTotal,
		Summary:         sess.ShareSummary(),
	})
}
