package executor

import (
	"context"

	fetch "github.com/hanpama/newsgraph/internal/fetch"
)

// Resolver resolves a single field of a single object type.
//
// A resolver may return either a plain value, which the executor
// completes immediately and expands synchronously, or a fetch.Deferred,
// which the executor queues for the current depth and completes after
// that depth's flush. Resolvers register their data needs on fx and must
// not call fx.Flush themselves; the executor owns the flush barrier.
//
// Return (nil, nil) to produce a GraphQL null for nullable fields.
// Implementations must not mutate source or args.
type Resolver interface {
	Resolve(ctx context.Context, objectType, field string, source any, args map[string]any, fx *fetch.Fetcher) (any, error)
}
