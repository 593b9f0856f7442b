// Package models defines the core domain models for the OweWow settlement
// backend.
//
// # Current Models
//
//   - LineItem: one row of a receipt (product/service, unit price, quantity)
//   - Totals: derived bill totals (subtotal, tax, service charge, discount,
//     rounding, grand total)
//   - Person: a participant splitting the bill, with the set of line items
//     they claim
//   - PaymentStatus: per-person payment state ("pending"/"paid")
//
// Participants are identified by opaque string IDs generated when a person is
// added to a session; names are display labels only.
//
// # Wire Shapes
//
// The backend's boundary is a pair of serializable snapshots, defined in
// snapshot.go:
//
//   - ReceiptSnapshot: the parsed receipt (lines + totals), produced by the
//     upstream OCR/chat parser and edited by users.
//   - AssignmentSnapshot: people, their claims, and payment status.
//
// Snapshots use the external field names (line_id, qty, service_charge, ...)
// so stored documents stay compatible with the parser output and the frontend.
//
// # Design Principles
//
//  1. Domain models carry no JSON tags; the snapshot types own the wire format.
//  2. Relationships use ID strings, never pointers, to avoid circular references.
//  3. All derived figures (line totals, grand total, per-person shares) are
//     computed by the ledger and settlement packages, never stored on models.
package models
