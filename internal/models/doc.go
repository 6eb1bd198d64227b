// Package models defines the core domain models for splitledger.
//
// # Persisted Models
//
//   - Transaction: a raw pairwise payment record (payer is owed the amount
//     by the payee). Immutable once created; deletable by id.
//   - Obligation: a durable, user-actionable settlement entry between two
//     users, created either from a single transaction or from a netting
//     snapshot. The only mutation is the one-way settled transition.
//   - AuditEntry: append-only history of transaction creation/deletion and
//     settlement snapshots, with a structured JSON payload.
//   - User: a registered account, consulted only for registration status and
//     contact info.
//
// # Derived Models
//
//   - Balance: a participant's net owed-minus-owing amount. Recomputed from
//     the full transaction set on every query, never stored.
//   - SettlementEdge: a directed payment instruction produced by the netting
//     optimizer. Also never stored; snapshots persist Obligations instead.
//
// # Design Principles
//
//  1. Amounts are decimal.Decimal end to end; scale is preserved through
//     storage and back.
//  2. Participants are referenced by canonical usernames (trimmed,
//     lowercased at the write boundary), not by foreign keys, so
//     transactions can name people who have not registered yet.
//  3. All models are plain data with no transport or storage framework
//     types, so any shell can serialize them.
package models
