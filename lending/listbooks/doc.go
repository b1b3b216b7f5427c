// Package listbooks implements the List Books query use case.
//
// This feature provides a pure read operation that returns every book record
// in the catalog together with its current lending state. It follows the
// query pattern without any command processing or state mutation.
//
// The query returns a Catalog struct containing the book summaries in stable
// catalog order plus the total count.
package listbooks
