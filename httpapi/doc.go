// Package httpapi exposes the lending use cases over HTTP.
//
// The handler wires the catalog routes under /api/library to the command
// and query handlers of the lending packages. Catalog mutations (add,
// update, remove) require the librarian role; borrowing and returning act
// on the authenticated caller's own identity.
//
// Session validation is an external collaborator: the handler depends on
// a SessionValidator that resolves a bearer token to a user identity and
// role. A static in-memory validator ships for demos and tests.
package httpapi
