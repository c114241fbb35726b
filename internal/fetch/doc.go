// Package fetch implements batched, deduplicated entity fetching for one
// query execution.
//
// # Overview
//
// Field resolution discovers data dependencies one field at a time; naive
// resolution would issue one store call per field. This package collects
// those scattered requests into per-(kind, mode) buckets and resolves a
// whole resolution layer with a minimal number of consolidated store
// calls, following a register → flush → resume protocol:
//
//   - Register: ByIDs and ByRelation record the wanted keys in a pending
//     bucket and return a placeholder batch immediately. They never call
//     the store and never block the caller. Keys already resolved earlier
//     in the execution are served from the per-execution cache and are not
//     forwarded again.
//   - Flush: the execution engine calls Flush once per resolution layer.
//     Flush snapshots the pending buckets, issues one store call per
//     bucket — calls for distinct buckets run concurrently — waits for all
//     of them (barrier; no partial resumption), writes results into the
//     cache and fulfills every waiting batch.
//   - Resume: the engine reads fulfilled batches through Get, One and For
//     and continues resolution; newly discovered dependencies register
//     into fresh buckets for the next flush.
//
// # Buckets and modes
//
// Identity requests for one kind merge into a single key set: requesting
// {1,2} and {2,3} in the same layer produces one store call with {1,2,3}.
// Relation requests group per relation name; one call fetches the related
// entities for the union of pending source keys, and the relation's key
// extractor demultiplexes the flat result back into one list per source
// key. A source key with no matches resolves to an empty list. Identity
// and relation buckets for the same kind stay independent store calls,
// but share the identity cache: an entity discovered through a relation
// also satisfies later identity requests for its id without another
// round trip.
//
// # Errors and cancellation
//
// A store failure fails the whole flush: every batch registered in that
// flush reports the same *StoreError, since applying one bucket while
// another failed would leave the cache inconsistent. Missing ids are not
// errors; they resolve to nil. If the execution's context is cancelled,
// results of in-flight calls are discarded and not applied to the cache.
//
// # Contract violations
//
// Re-entering Flush while one is outstanding, reading a batch before its
// flush completed, and requesting an unregistered relation are programming
// errors and panic.
//
// A Fetcher belongs to exactly one execution. It is not safe for
// concurrent use and must be discarded when the execution completes;
// nothing is shared across executions.
package fetch
