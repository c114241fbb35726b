// Package store provides the in-memory relational store backing the
// tutorial dataset. It satisfies the lookup contract the fetch layer
// consumes: identity lookups return only the keys that exist, and
// relation lookups return the flat entity list matching any of the given
// source keys.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	entity "github.com/hanpama/newsgraph/internal/entity"
	relation "github.com/hanpama/newsgraph/internal/relation"
)

// Memory is a mutex-guarded in-memory store. Entities are kept per kind
// in insertion order so listings and relation results are deterministic.
type Memory struct {
	mu     sync.RWMutex
	tables map[entity.Kind]map[entity.ID]entity.Entity
	order  map[entity.Kind][]entity.ID
	nextID map[entity.Kind]entity.ID
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[entity.Kind]map[entity.ID]entity.Entity),
		order:  make(map[entity.Kind][]entity.ID),
		nextID: make(map[entity.Kind]entity.ID),
		now:    time.Now,
	}
}

// NewSeeded returns a store populated with the tutorial dataset:
// a couple of users, three links and a handful of votes.
func NewSeeded() *Memory {
	m := NewMemory()
	ctx := context.Background()
	alice, _ := m.CreateUser(ctx, "alice", "alice@example.com")
	bob, _ := m.CreateUser(ctx, "bob", "bob@example.com")

	l1, _ := m.CreateLink(ctx, "http://howtographql.com", "Awesome community driven GraphQL tutorial", alice.ID)
	l2, _ := m.CreateLink(ctx, "http://graphql.org", "Official GraphQL web page", alice.ID)
	l3, _ := m.CreateLink(ctx, "https://graphql.org/learn/", "GraphQL learning resources", bob.ID)

	m.CreateVote(ctx, alice.ID, l2.ID)
	m.CreateVote(ctx, bob.ID, l1.ID)
	m.CreateVote(ctx, bob.ID, l3.ID)
	return m
}

func (m *Memory) insert(e entity.Entity) {
	kind := e.EntityKind()
	if m.tables[kind] == nil {
		m.tables[kind] = make(map[entity.ID]entity.Entity)
	}
	m.tables[kind][e.EntityID()] = e
	m.order[kind] = append(m.order[kind], e.EntityID())
}

func (m *Memory) allocID(kind entity.Kind) entity.ID {
	m.nextID[kind]++
	return m.nextID[kind]
}

// GetByIDs returns the entities of the given kind matching ids. Missing
// ids are simply absent from the result map.
func (m *Memory) GetByIDs(ctx context.Context, kind entity.Kind, ids []entity.ID) (map[entity.ID]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[entity.ID]entity.Entity, len(ids))
	table := m.tables[kind]
	for _, id := range ids {
		if e, ok := table[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

// GetByRelation returns, in insertion order, every entity of rel.Related
// whose extracted source keys intersect sourceKeys. The caller is
// responsible for demultiplexing the flat list back per source key.
func (m *Memory) GetByRelation(ctx context.Context, rel relation.Relation, sourceKeys []entity.ID) ([]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[entity.ID]struct{}, len(sourceKeys))
	for _, k := range sourceKeys {
		wanted[k] = struct{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
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

// All returns every entity of the given kind in insertion order.
func (m *Memory) All(ctx context.Context, kind entity.Kind) ([]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.Entity, 0, len(m.order[kind]))
	for _, id := range m.order[kind] {
		out = append(out, m.tables[kind][id])
	}
	return out, nil
}

// CreateUser inserts a new user and returns it.
func (m *Memory) CreateUser(ctx context.Context, name, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &entity.User{ID: m.allocID(entity.KindUser), Name: name, Email: email, CreatedAt: m.now()}
	m.insert(u)
	return u, nil
}

// CreateLink inserts a new link posted by an existing user.
func (m *Memory) CreateLink(ctx context.Context, url, description string, postedBy entity.ID) (*entity.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[entity.KindUser][postedBy]; !ok {
		return nil, fmt.Errorf("user %d not found", postedBy)
	}
	l := &entity.Link{ID: m.allocID(entity.KindLink), URL: url, Description: description, PostedByID: postedBy, CreatedAt: m.now()}
	m.insert(l)
	return l, nil
}

// CreateVote inserts a vote by an existing user for an existing link.
func (m *Memory) CreateVote(ctx context.Context, userID, linkID entity.ID) (*entity.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[entity.KindUser][userID]; !ok {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	if _, ok := m.tables[entity.KindLink][linkID]; !ok {
		return nil, fmt.Errorf("link %d not found", linkID)
	}
	v := &entity.Vote{ID: m.allocID(entity.KindVote), UserID: userID, LinkID: linkID, CreatedAt: m.now()}
	m.insert(v)
	return v, nil
}
