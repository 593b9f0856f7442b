// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/owewow/owewow/internal/models"
	"github.com/owewow/owewow/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveReceipt creates or fully replaces a receipt snapshot. Lines are
// rewritten wholesale; created_at survives updates.
func (s *SQLiteStore) SaveReceipt(ctx context.Context, receipt models.ReceiptSnapshot) error {
	if receipt.ReceiptID == "" {
		return fmt.Errorf("receipt id is required")
	}
	groupID := receipt.GroupID
	if groupID == "" {
		groupID = "quick-split"
	}
	var category, confidence string
	if receipt.Category != nil {
		category = receipt.Category.Category
		confidence = receipt.Category.Confidence
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	t := receipt.Totals
	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (id, group_id, source_file, category, category_confidence,
			subtotal, tax, tax_percent, service_charge, service_percent,
			discount, rounding, grand_total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id,
			source_file = excluded.source_file,
			category = excluded.category,
			category_confidence = excluded.category_confidence,
			subtotal = excluded.subtotal,
			tax = excluded.tax,
			tax_percent = excluded.tax_percent,
			service_charge = excluded.service_charge,
			service_percent = excluded.service_percent,
			discount = excluded.discount,
			rounding = excluded.rounding,
			grand_total = excluded.grand_total,
			updated_at = excluded.updated_at`,
		receipt.ReceiptID, groupID, receipt.SourceFile, category, confidence,
		t.Subtotal, t.Tax, t.TaxPercent, t.ServiceCharge, t.ServicePercent,
		t.Discount, t.Rounding, t.GrandTotal, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert receipt: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM receipt_lines WHERE receipt_id = ?", receipt.ReceiptID); err != nil {
		return fmt.Errorf("failed to clear lines: %w", err)
	}
	for i, line := range receipt.Lines {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO receipt_lines (id, receipt_id, position, name, amount, qty, is_bundle) VALUES (?, ?, ?, ?, ?, ?, ?)",
			line.LineID, receipt.ReceiptID, i, line.Name, line.Amount, line.Qty, boolToInt(line.IsBundle),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}
		for j, label := range line.Components {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO line_components (line_id, position, label) VALUES (?, ?, ?)",
				line.LineID, j, label,
			)
			if err != nil {
				return fmt.Errorf("failed to insert component: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt snapshot by ID, including all lines and
// bundle components.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (models.ReceiptSnapshot, error) {
	var (
		receipt              models.ReceiptSnapshot
		category, confidence string
	)
	t := &receipt.Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT id, group_id, source_file, category, category_confidence,
			subtotal, tax, tax_percent, service_charge, service_percent,
			discount, rounding, grand_total
		FROM receipts WHERE id = ?`, receiptID,
	).Scan(&receipt.ReceiptID, &receipt.GroupID, &receipt.SourceFile, &category, &confidence,
		&t.Subtotal, &t.Tax, &t.TaxPercent, &t.ServiceCharge, &t.ServicePercent,
		&t.Discount, &t.Rounding, &t.GrandTotal)
	if err == sql.ErrNoRows {
		return models.ReceiptSnapshot{}, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return models.ReceiptSnapshot{}, fmt.Errorf("failed to get receipt: %w", err)
	}
	if category != "" || confidence != "" {
		receipt.Category = &models.Category{Category: category, Confidence: confidence}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount, qty, is_bundle FROM receipt_lines WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return models.ReceiptSnapshot{}, fmt.Errorf("failed to get lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line   models.LineSnapshot
			bundle int
		)
		if err := rows.Scan(&line.LineID, &line.Name, &line.Amount, &line.Qty, &bundle); err != nil {
			return models.ReceiptSnapshot{}, fmt.Errorf("failed to scan line: %w", err)
		}
		line.IsBundle = bundle != 0

		compRows, err := s.db.QueryContext(ctx,
			"SELECT label FROM line_components WHERE line_id = ? ORDER BY position",
			line.LineID,
		)
		if err != nil {
			return models.ReceiptSnapshot{}, fmt.Errorf("failed to get components: %w", err)
		}
		for compRows.Next() {
			var label string
			if err := compRows.Scan(&label); err != nil {
				compRows.Close()
				return models.ReceiptSnapshot{}, fmt.Errorf("failed to scan component: %w", err)
			}
			line.Components = append(line.Components, label)
		}
		compRows.Close()
		if err := compRows.Err(); err != nil {
			return models.ReceiptSnapshot{}, fmt.Errorf("failed to iterate components: %w", err)
		}

		receipt.Lines = append(receipt.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return models.ReceiptSnapshot{}, fmt.Errorf("failed to iterate lines: %w", err)
	}

	return receipt, nil
}

// SaveAssignment replaces the people, claims and payment status for a receipt.
func (s *SQLiteStore) SaveAssignment(ctx context.Context, assignment models.AssignmentSnapshot) error {
	if assignment.ReceiptID == "" {
		return fmt.Errorf("receipt id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"people", "claims", "payment_status"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE receipt_id = ?", assignment.ReceiptID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, person := range assignment.People {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (id, receipt_id, position, name) VALUES (?, ?, ?, ?)",
			person.ID, assignment.ReceiptID, i, person.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
		for _, lineID := range person.Items {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO claims (receipt_id, person_id, line_id) VALUES (?, ?, ?)",
				assignment.ReceiptID, person.ID, lineID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert claim: %w", err)
			}
		}
	}

	for personID, status := range assignment.PaymentStatus {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO payment_status (receipt_id, person_id, status, updated_at) VALUES (?, ?, ?, ?)",
			assignment.ReceiptID, personID, status.Status, status.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAssignment retrieves the assignment for a receipt.
func (s *SQLiteStore) GetAssignment(ctx context.Context, receiptID string) (models.AssignmentSnapshot, error) {
	assignment := models.AssignmentSnapshot{ReceiptID: receiptID}

	err := s.db.QueryRowContext(ctx,
		"SELECT group_id FROM receipts WHERE id = ?", receiptID,
	).Scan(&assignment.GroupID)
	if err == sql.ErrNoRows {
		return models.AssignmentSnapshot{}, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return models.AssignmentSnapshot{}, fmt.Errorf("failed to get receipt: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM people WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return models.AssignmentSnapshot{}, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var person models.PersonSnapshot
		if err := rows.Scan(&person.ID, &person.Name); err != nil {
			return models.AssignmentSnapshot{}, fmt.Errorf("failed to scan person: %w", err)
		}

		claimRows, err := s.db.QueryContext(ctx,
			"SELECT line_id FROM claims WHERE receipt_id = ? AND person_id = ?",
			receiptID, person.ID,
		)
		if err != nil {
			return models.AssignmentSnapshot{}, fmt.Errorf("failed to get claims: %w", err)
		}
		for claimRows.Next() {
			var lineID string
			if err := claimRows.Scan(&lineID); err != nil {
				claimRows.Close()
				return models.AssignmentSnapshot{}, fmt.Errorf("failed to scan claim: %w", err)
			}
			person.Items = append(person.Items, lineID)
		}
		claimRows.Close()
		if err := claimRows.Err(); err != nil {
			return models.AssignmentSnapshot{}, fmt.Errorf("failed to iterate claims: %w", err)
		}
		if person.Items == nil {
			person.Items = []string{}
		}

		assignment.People = append(assignment.People, person)
	}
	if err := rows.Err(); err != nil {
		return models.AssignmentSnapshot{}, fmt.Errorf("failed to iterate people: %w", err)
	}

	statusRows, err := s.db.QueryContext(ctx,
		"SELECT person_id, status, updated_at FROM payment_status WHERE receipt_id = ?",
		receiptID,
	)
	if err != nil {
		return models.AssignmentSnapshot{}, fmt.Errorf("failed to get payment status: %w", err)
	}
	defer statusRows.Close()

	for statusRows.Next() {
		var (
			personID string
			status   models.PaymentStatus
		)
		if err := statusRows.Scan(&personID, &status.Status, &status.UpdatedAt); err != nil {
			return models.AssignmentSnapshot{}, fmt.Errorf("failed to scan payment status: %w", err)
		}
		if assignment.PaymentStatus == nil {
			assignment.PaymentStatus = make(map[string]models.PaymentStatus)
		}
		assignment.PaymentStatus[personID] = status
	}
	if err := statusRows.Err(); err != nil {
		return models.AssignmentSnapshot{}, fmt.Errorf("failed to iterate payment status: %w", err)
	}

	return assignment, nil
}

// UpdatePaymentStatus upserts one person's payment state for a receipt.
func (s *SQLiteStore) UpdatePaymentStatus(ctx context.Context, receiptID, personID string, status models.PaymentStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_status (receipt_id, person_id, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(receipt_id, person_id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at`,
		receiptID, personID, status.Status, status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
