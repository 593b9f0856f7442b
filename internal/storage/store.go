// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/owewow/owewow/internal/models"
)

// ErrNotFound is returned when the requested receipt or assignment does not
// exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations for receipts and assignments.
// The abstraction allows swapping storage backends (SQLite, PostgreSQL, ...)
// without changing the service layer.
type Store interface {
	// SaveReceipt creates or fully replaces a receipt snapshot.
	SaveReceipt(ctx context.Context, receipt models.ReceiptSnapshot) error

	// GetReceipt retrieves a receipt snapshot by ID.
	// Returns ErrNotFound when the receipt does not exist.
	GetReceipt(ctx context.Context, receiptID string) (models.ReceiptSnapshot, error)

	// SaveAssignment creates or fully replaces the assignment (people,
	// claims, payment status) for a receipt.
	SaveAssignment(ctx context.Context, assignment models.AssignmentSnapshot) error

	// GetAssignment retrieves the assignment for a receipt.
	// Returns ErrNotFound when no assignment has been saved.
	GetAssignment(ctx context.Context, receiptID string) (models.AssignmentSnapshot, error)

	// UpdatePaymentStatus records a person's payment state for a receipt.
	UpdatePaymentStatus(ctx context.Context, receiptID, personID string, status models.PaymentStatus) error

	// Close releases any resources held by the store.
	Close() error
}
