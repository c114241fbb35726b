package executor

import (
	"context"
	"sync"

	fetch "github.com/hanpama/newsgraph/internal/fetch"
)

// MockResolver resolves a single field; MockResolverMap adapts a registry
// of them for tests.
type MockResolver func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error)

// NewMockValueResolver returns a MockResolver that always returns the provided value.
func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
		return val, nil
	}
}

// NewMockErrorResolver returns a MockResolver that always returns the provided error.
func NewMockErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
		return nil, err
	}
}

// ResolveCall records one resolver invocation.
type ResolveCall struct {
	ObjectType string
	Field      string
	Args       map[string]any
}

// MockResolverMap implements Resolver from a registry keyed "ObjectType.Field".
// Fields without a registered resolver resolve to nil.
type MockResolverMap struct {
	mu        sync.Mutex
	resolvers map[string]MockResolver
	calls     []ResolveCall
}

func NewMockResolverMap(resolvers map[string]MockResolver) *MockResolverMap {
	m := &MockResolverMap{resolvers: make(map[string]MockResolver, len(resolvers))}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

// SetResolver registers or replaces the resolver for objectType.field.
func (m *MockResolverMap) SetResolver(objectType, field string, resolver MockResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvers[objectType+"."+field] = resolver
}

func (m *MockResolverMap) Resolve(ctx context.Context, objectType, field string, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
	key := objectType + "." + field

	m.mu.Lock()
	r := m.resolvers[key]
	m.calls = append(m.calls, ResolveCall{ObjectType: objectType, Field: field, Args: args})
	m.mu.Unlock()

	if r == nil {
		return nil, nil
	}
	return r(ctx, source, args, fx)
}

// GetCalls returns a copy of the recorded calls in order.
func (m *MockResolverMap) GetCalls() []ResolveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ResolveCall, len(m.calls))
	copy(out, m.calls)
	return out
}
