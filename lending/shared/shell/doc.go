// Package shell provides the infrastructure shared by the lending feature
// slices: the store interface the command handlers depend on, and the bounded
// retry loop that turns store-level concurrency conflicts into either a late
// success or a contention rejection.
package shell
