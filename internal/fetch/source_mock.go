package fetch

import (
	"context"
	"sync"

	entity "github.com/hanpama/newsgraph/internal/entity"
	relation "github.com/hanpama/newsgraph/internal/relation"
)

// SourceCall records a single store invocation made by a flush.
type SourceCall struct {
	Mode     string // "ids" or "relation"
	Kind     entity.Kind
	Relation string
	Keys     []entity.ID
}

// MockSource implements Source over fixed entities and records every call.
// Individual lookups can be made to fail or block for barrier tests. Safe
// for the concurrent calls one flush issues.
type MockSource struct {
	mu      sync.Mutex
	tables  map[entity.Kind]map[entity.ID]entity.Entity
	order   map[entity.Kind][]entity.ID
	calls   []SourceCall
	idErrs  map[entity.Kind]error
	relErrs map[string]error
	barrier func(SourceCall) // runs before each lookup when set
}

func NewMockSource(entities ...entity.Entity) *MockSource {
	m := &MockSource{
		tables:  make(map[entity.Kind]map[entity.ID]entity.Entity),
		order:   make(map[entity.Kind][]entity.ID),
		idErrs:  make(map[entity.Kind]error),
		relErrs: make(map[string]error),
	}
	for _, e := range entities {
		kind := e.EntityKind()
		if m.tables[kind] == nil {
			m.tables[kind] = make(map[entity.ID]entity.Entity)
		}
		m.tables[kind][e.EntityID()] = e
		m.order[kind] = append(m.order[kind], e.EntityID())
	}
	return m
}

// FailIDs makes every GetByIDs call for kind return err.
func (m *MockSource) FailIDs(kind entity.Kind, err error) { m.idErrs[kind] = err }

// FailRelation makes every GetByRelation call for the named relation return err.
func (m *MockSource) FailRelation(name string, err error) { m.relErrs[name] = err }

// SetBarrier installs fn to run before each lookup, letting tests hold
// calls open to observe flush barrier behavior.
func (m *MockSource) SetBarrier(fn func(SourceCall)) { m.barrier = fn }

func (m *MockSource) record(c SourceCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
	if m.barrier != nil {
		m.barrier(c)
	}
}

func (m *MockSource) GetByIDs(ctx context.Context, kind entity.Kind, ids []entity.ID) (map[entity.ID]entity.Entity, error) {
	m.record(SourceCall{Mode: "ids", Kind: kind, Keys: ids})
	if err := m.idErrs[kind]; err != nil {
		return nil, err
	}
	out := make(map[entity.ID]entity.Entity, len(ids))
	for _, id := range ids {
		if e, ok := m.tables[kind][id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (m *MockSource) GetByRelation(ctx context.Context, rel relation.Relation, sourceKeys []entity.ID) ([]entity.Entity, error) {
	m.record(SourceCall{Mode: "relation", Kind: rel.Related, Relation: rel.Name, Keys: sourceKeys})
	if err := m.relErrs[rel.Name]; err != nil {
		return nil, err
	}
	wanted := make(map[entity.ID]struct{}, len(sourceKeys))
	for _, k := range sourceKeys {
		wanted[k] = struct{}{}
	}
	var out []entity.Entity
	for _, id := range m.order[rel.Related] {
		e := m.tables[rel.Related][id]
		for _, k := range rel.Keys(e) {
			if _, ok := wanted[k]; ok {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// Calls returns a copy of the recorded calls in invocation order.
func (m *MockSource) Calls() []SourceCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SourceCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the call log; tables and failure injections remain.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
