// Package executor implements a breadth-first GraphQL executor built
// around deferred, batched entity fetching.
//
// # Execution Model
//
// Execution proceeds depth by depth. Expanding a selection set calls the
// Resolver for each field:
//
//   - A plain return value is completed immediately. Object results expand
//     their sub-selections synchronously within the same depth; lists,
//     leaves and nulls are written straight into the response tree.
//   - A fetch.Deferred return value suspends the field. The task (deferred
//     handle, response path, field type, AST fields) is queued for the
//     current depth, and the resolver's data need stays registered on the
//     execution's Fetcher.
//
// When the depth's synchronous expansion is exhausted, the executor calls
// Fetcher.Flush exactly once. The flush merges everything the depth
// registered into per-bucket store calls, so a query whose deferred depth
// is d performs d flushes regardless of how many fields deferred at each
// depth. After the flush, each queued task reads its Deferred value and
// completes; object completions expand into the next depth.
//
// # Errors
//
// Field errors are recorded as located GraphQL errors and produce null at
// the field's path. A null (from error or resolver) in a Non-Null position
// propagates to the nearest nullable ancestor; the nullified path becomes
// a tombstone and any queued tasks under it are dropped before the next
// flush. A failed flush is different: the store call error has already
// failed every deferred field at that depth, so the execution fails as a
// whole with a single execution-level error.
//
// # State
//
// Each ExecuteRequest builds a fresh Fetcher, so executions never share
// cached entities. The executor owns the flush barrier; resolvers only
// register reads and must not flush.
package executor
