// Package repository implements the concurrent in-memory resource store.
//
// Single-key mutations (Post, Put) use the atomic primitives of sync.Map:
// LoadOrStore for insert-if-absent and CompareAndSwap for replace. Compound
// read-check-write sequences (Delete, AddOrUpdate, Reset) run under one
// repository mutex so that a precondition hook and the mutation it guards
// cannot be interleaved with another compound writer. Reads never lock.
//
// Failures are returned as typed errors (ValidationError, NotFoundError,
// ConflictError, PreconditionFailedError, RaceLostError, InternalError)
// carrying their HTTP status and a hint. The repository never retries.
package repository
