// Package core holds the shared business vocabulary of the lending features:
// the typed rejections a lending operation can produce and small alias types.
//
// Every rejection is a sentinel error so that callers (the HTTP layer in
// particular) can classify outcomes with errors.Is without inspecting state.
package core
