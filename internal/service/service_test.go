package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owewow/owewow/internal/models"
	"github.com/owewow/owewow/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	server := httptest.NewServer(New(store).Routes())
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return server
}

// doJSON performs a request with a JSON body and decodes the JSON response.
func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func seedReceipt(t *testing.T, server *httptest.Server) models.ReceiptSnapshot {
	t.Helper()
	snap := models.ReceiptSnapshot{
		ReceiptID: "r1",
		Lines: []models.LineSnapshot{
			{LineID: "a", Name: "Nasi Goreng", Amount: 20.00, Qty: 1},
			{LineID: "b", Name: "Milo Ais", Amount: 10.00, Qty: 1},
		},
		Totals: models.TotalsSnapshot{TaxPercent: 6, ServicePercent: 10},
	}
	var saved models.ReceiptSnapshot
	status := doJSON(t, http.MethodPost, server.URL+"/receipts", snap, &saved)
	require.Equal(t, http.StatusOK, status)
	return saved
}

func seedAssignment(t *testing.T, server *httptest.Server) models.AssignmentSnapshot {
	t.Helper()
	assignment := models.AssignmentSnapshot{
		People: []models.PersonSnapshot{
			{ID: "p1", Name: "Alice", Items: []string{"a"}},
			{ID: "p2", Name: "Bob", Items: []string{"a", "b"}},
		},
	}
	var saved models.AssignmentSnapshot
	status := doJSON(t, http.MethodPut, server.URL+"/receipts/r1/assignment", assignment, &saved)
	require.Equal(t, http.StatusOK, status)
	return saved
}

func TestSaveReceipt_NormalizesTotals(t *testing.T) {
	server := setupTestServer(t)
	saved := seedReceipt(t, server)

	// Subtotal and percent-driven charges come from the ledger, not the
	// parser's claims: 30 + 6% + 10% = 34.80, already on a 5-sen boundary.
	assert.InDelta(t, 30.00, saved.Totals.Subtotal, 0.001)
	assert.InDelta(t, 1.80, saved.Totals.Tax, 0.001)
	assert.InDelta(t, 3.00, saved.Totals.ServiceCharge, 0.001)
	assert.InDelta(t, 34.80, saved.Totals.GrandTotal, 0.001)

	var got models.ReceiptSnapshot
	status := doJSON(t, http.MethodGet, server.URL+"/receipts/r1", nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, saved.Totals, got.Totals)
	assert.Len(t, got.Lines, 2)
}

func TestGetReceipt_NotFound(t *testing.T) {
	server := setupTestServer(t)
	status := doJSON(t, http.MethodGet, server.URL+"/receipts/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAddItem_RecomputesPercentCharges(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)

	var resp snapshotResponse
	status := doJSON(t, http.MethodPost, server.URL+"/receipts/r1/items",
		itemRequest{Name: "Cendol", Amount: 5.00, Qty: 2}, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.InDelta(t, 40.00, resp.Receipt.Totals.Subtotal, 0.001)
	assert.InDelta(t, 2.40, resp.Receipt.Totals.Tax, 0.001)
	assert.InDelta(t, 4.00, resp.Receipt.Totals.ServiceCharge, 0.001)
}

func TestAddItem_Invalid(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)

	status := doJSON(t, http.MethodPost, server.URL+"/receipts/r1/items",
		itemRequest{Name: "   ", Amount: 5.00}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteItem_ClearsStoredClaims(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)
	seedAssignment(t, server)

	var resp snapshotResponse
	status := doJSON(t, http.MethodDelete, server.URL+"/receipts/r1/items/a", nil, &resp)
	require.Equal(t, http.StatusOK, status)

	for _, p := range resp.Assignment.People {
		assert.NotContains(t, p.Items, "a", "%s kept a claim on the deleted line", p.Name)
	}

	// The cleanup is persisted, not just in the response.
	var stored models.AssignmentSnapshot
	status = doJSON(t, http.MethodGet, server.URL+"/receipts/r1/assignment", nil, &stored)
	require.Equal(t, http.StatusOK, status)
	for _, p := range stored.People {
		assert.NotContains(t, p.Items, "a")
	}
}

func TestSetTotals_ManualAmountClearsPercent(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)

	tax := 2.50
	var got models.ReceiptSnapshot
	status := doJSON(t, http.MethodPut, server.URL+"/receipts/r1/totals",
		totalsRequest{Tax: &tax}, &got)
	require.Equal(t, http.StatusOK, status)

	assert.InDelta(t, 2.50, got.Totals.Tax, 0.001)
	assert.Zero(t, got.Totals.TaxPercent)
	// Service stays percent-driven.
	assert.InDelta(t, 10, got.Totals.ServicePercent, 0.001)
}

func TestApplyCommands(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)

	cmd := map[string]any{
		"action": "bulk_commands",
		"commands": []map[string]any{
			{"action": "edit_price", "item_name": "Milo Ais", "amount": 4.00},
			{"action": "edit_tax", "percentage": 0},
		},
	}
	var resp snapshotResponse
	status := doJSON(t, http.MethodPost, server.URL+"/receipts/r1/commands", cmd, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.InDelta(t, 24.00, resp.Receipt.Totals.Subtotal, 0.001)
	assert.Zero(t, resp.Receipt.Totals.Tax)
}

func TestSplitAllAndSettlement(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)
	seedAssignment(t, server)

	var split snapshotResponse
	status := doJSON(t, http.MethodPost, server.URL+"/receipts/r1/assignment/split-all", nil, &split)
	require.Equal(t, http.StatusOK, status)
	for _, p := range split.Assignment.People {
		assert.Len(t, p.Items, 2)
	}

	var settlement settlementResponse
	status = doJSON(t, http.MethodGet, server.URL+"/receipts/r1/settlement", nil, &settlement)
	require.Equal(t, http.StatusOK, status)

	assert.True(t, settlement.FullyAssigned)
	assert.Zero(t, settlement.UnassignedItems)
	assert.InDelta(t, settlement.GrandTotal, settlement.TotalAssigned, 0.001)

	sum := 0.0
	for _, p := range settlement.People {
		sum += p.Total
	}
	assert.InDelta(t, settlement.GrandTotal, sum, 0.01)
	assert.Contains(t, settlement.Summary, "Alice: RM")
}

func TestUpdatePayment(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)
	seedAssignment(t, server)

	var status models.PaymentStatus
	code := doJSON(t, http.MethodPut, server.URL+"/receipts/r1/payment/p1",
		paymentRequest{Status: models.PaymentPaid}, &status)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.PaymentPaid, status.Status)
	assert.NotZero(t, status.UpdatedAt)

	var assignment models.AssignmentSnapshot
	code = doJSON(t, http.MethodGet, server.URL+"/receipts/r1/assignment", nil, &assignment)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.PaymentPaid, assignment.PaymentStatus["p1"].Status)
}

func TestUpdatePayment_Validation(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)
	seedAssignment(t, server)

	code := doJSON(t, http.MethodPut, server.URL+"/receipts/r1/payment/p1",
		paymentRequest{Status: "maybe"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = doJSON(t, http.MethodPut, server.URL+"/receipts/r1/payment/ghost",
		paymentRequest{Status: models.PaymentPaid}, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSaveAssignment_DropsDanglingClaims(t *testing.T) {
	server := setupTestServer(t)
	seedReceipt(t, server)

	assignment := models.AssignmentSnapshot{
		People: []models.PersonSnapshot{
			{ID: "p1", Name: "Alice", Items: []string{"a", "ghost-line"}},
		},
	}
	var saved models.AssignmentSnapshot
	status := doJSON(t, http.MethodPut, server.URL+"/receipts/r1/assignment", assignment, &saved)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, saved.People, 1)
	assert.Equal(t, []string{"a"}, saved.People[0].Items)
}

func TestHealthz(t *testing.T) {
	server := setupTestServer(t)
	var body map[string]string
	status := doJSON(t, http.MethodGet, server.URL+"/healthz", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
