package fetch

import (
	"fmt"

	entity "github.com/hanpama/newsgraph/internal/entity"
	relation "github.com/hanpama/newsgraph/internal/relation"
)

// Deferred is a placeholder for a value that becomes readable once the
// flush that owns it has completed. Reading it earlier panics.
type Deferred interface {
	Value() (any, error)
}

// IDBatch is the placeholder returned by Fetcher.ByIDs. It is owned by
// the resolution site that created it until a flush fulfills it.
type IDBatch struct {
	f    *Fetcher
	kind entity.Kind
	ids  []entity.ID
	done bool
	err  error
}

func (b *IDBatch) mustBeDone() {
	if !b.done {
		panic(fmt.Sprintf("fetch: %s id batch read before its flush completed", b.kind))
	}
}

// Get returns the resolved entities keyed by id. Ids that do not exist
// are absent from the map.
func (b *IDBatch) Get() (map[entity.ID]entity.Entity, error) {
	b.mustBeDone()
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[entity.ID]entity.Entity, len(b.ids))
	for _, id := range b.ids {
		if e := b.f.resolved[idCacheKey{b.kind, id}]; e != nil {
			out[id] = e
		}
	}
	return out, nil
}

// Value implements Deferred; it yields the same map as Get.
func (b *IDBatch) Value() (any, error) { return b.Get() }

// One returns a deferred view of a single id within the batch. A missing
// id yields nil, not an error.
func (b *IDBatch) One(id entity.ID) Deferred { return oneView{b: b, id: id} }

type oneView struct {
	b  *IDBatch
	id entity.ID
}

func (v oneView) Value() (any, error) {
	v.b.mustBeDone()
	if v.b.err != nil {
		return nil, v.b.err
	}
	e := v.b.f.resolved[idCacheKey{v.b.kind, v.id}]
	if e == nil {
		return nil, nil
	}
	return e, nil
}

// RelationBatch is the placeholder returned by Fetcher.ByRelation.
type RelationBatch struct {
	f    *Fetcher
	rel  relation.Relation
	keys []entity.ID
	done bool
	err  error
}

func (b *RelationBatch) mustBeDone() {
	if !b.done {
		panic(fmt.Sprintf("fetch: relation %q batch read before its flush completed", b.rel.Name))
	}
}

// Get returns the resolved related entities per source key. Every
// requested source key is present; keys with no matches map to an empty
// list.
func (b *RelationBatch) Get() (map[entity.ID][]entity.Entity, error) {
	b.mustBeDone()
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[entity.ID][]entity.Entity, len(b.keys))
	for _, key := range b.keys {
		list := b.f.relResolved[relCacheKey{b.rel.Name, key}]
		if list == nil {
			list = []entity.Entity{}
		}
		out[key] = list
	}
	return out, nil
}

// Value implements Deferred; it yields the same map as Get.
func (b *RelationBatch) Value() (any, error) { return b.Get() }

// For returns a deferred view of one source key's related entities.
func (b *RelationBatch) For(sourceKey entity.ID) Deferred {
	return relView{b: b, key: sourceKey}
}

type relView struct {
	b   *RelationBatch
	key entity.ID
}

func (v relView) Value() (any, error) {
	v.b.mustBeDone()
	if v.b.err != nil {
		return nil, v.b.err
	}
	list := v.b.f.relResolved[relCacheKey{v.b.rel.Name, v.key}]
	if list == nil {
		list = []entity.Entity{}
	}
	return list, nil
}
