// Package partner contains the delivery partner entity and the in-memory
// pool that tracks partner availability for the process lifetime.
//
// The pool size is fixed at startup; partners toggle between available and
// busy as trips are assigned and completed. Availability is reconciled
// lazily at selection time rather than by a background timer, which keeps
// the dispatch cycle deterministic. Pool state is intentionally not
// persisted: it is rebuilt (all partners available) on process restart.
package partner
