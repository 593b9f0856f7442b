// Package service exposes the settlement backend over a JSON HTTP API.
//
// Handlers are thin: each one loads the receipt (and assignment, when claims
// matter) into a session, applies the operation, persists the result and
// returns the updated snapshots. All computation lives in the ledger,
// settlement and session packages.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/owewow/owewow/internal/ledger"
	"github.com/owewow/owewow/internal/models"
	"github.com/owewow/owewow/internal/session"
	"github.com/owewow/owewow/internal/storage"
)

// Service wires the HTTP API to storage and the settlement core.
type Service struct {
	store storage.Store
}

// New creates a Service with the given storage backend.
func New(store storage.Store) *Service {
	return &Service{store: store}
}

// Routes returns the full router, middleware and operational endpoints
// included.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(CORS)
	r.Use(RequestLogger)
	r.Use(Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/receipts", func(r chi.Router) {
		r.Post("/", s.handleSaveReceipt)
		r.Route("/{receiptID}", func(r chi.Router) {
			r.Get("/", s.handleGetReceipt)
			r.Post("/items", s.handleAddItem)
			r.Put("/items/{lineID}", s.handleEditItem)
			r.Delete("/items/{lineID}", s.handleDeleteItem)
			r.Put("/totals", s.handleSetTotals)
			r.Post("/commands", s.handleApplyCommands)
			r.Put("/assignment", s.handleSaveAssignment)
			r.Get("/assignment", s.handleGetAssignment)
			r.Post("/assignment/split-all", s.handleSplitAll)
			r.Put("/payment/{personID}", s.handleUpdatePayment)
			r.Get("/settlement", s.handleGetSettlement)
		})
	})

	return r
}

// loadSession rebuilds the working session for a receipt. A missing
// assignment is fine (nobody has been added yet); a missing receipt is not.
func (s *Service) loadSession(ctx context.Context, receiptID string) (*session.Session, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.store.GetAssignment(ctx, receiptID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return session.Load(receipt, nil), nil
		}
		return nil, err
	}
	return session.Load(receipt, &assignment), nil
}

// saveSession persists both sides of a session.
func (s *Service) saveSession(ctx context.Context, sess *session.Session) error {
	if err := s.store.SaveReceipt(ctx, sess.Receipt()); err != nil {
		return err
	}
	return s.store.SaveAssignment(ctx, sess.Assignment())
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(ledger.ErrInvalidInput, err)
	}
	return nil
}

func receiptID(r *http.Request) string {
	return chi.URLParam(r, "receiptID")
}

// snapshotResponse bundles both snapshots, the usual mutation reply.
type snapshotResponse struct {
	Receipt    models.ReceiptSnapshot    `json:"receipt"`
	Assignment models.AssignmentSnapshot `json:"assignment"`
}

func sessionResponse(sess *session.Session) snapshotResponse {
	return snapshotResponse{Receipt: sess.Receipt(), Assignment: sess.Assignment()}
}
