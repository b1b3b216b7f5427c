// Package updatebook implements the Update Book use case.
//
// All fields are optional: title, author and isbn are simple edits, while a
// quantity change is the sensitive transition. The borrowed count is derived
// from the record read in the same atomic attempt that commits the new
// quantity, so a concurrent borrow or return can never make the arithmetic
// observe stale counts: the conditional update loses, the handler re-reads,
// and the formula runs again against fresh state.
//
// Existing loans cannot be revoked retroactively - a new quantity below the
// borrowed count is rejected.
package updatebook
