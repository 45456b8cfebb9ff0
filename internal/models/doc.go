// Package models defines the core domain records for roomledger.
//
// Records are plain structs with uuid-string IDs and unix-second timestamps.
// Relationships are expressed as ID strings rather than pointers to avoid
// circular references:
//   - Roommate.RoomID -> Room.ID (nullable; a roommate may be unaffiliated)
//   - Expense.RoomID -> Room.ID
//   - Expense.AddedByID / Expense.ApprovedByID -> Roommate.ID
//
// The roommate password is a tagged union (StoredPassword) so the legacy
// plaintext format and the bcrypt format are distinguished once, at scan
// time, instead of being re-sniffed by every consumer.
package models
