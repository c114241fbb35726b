package fetch

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	entity "github.com/hanpama/newsgraph/internal/entity"
	eventbus "github.com/hanpama/newsgraph/internal/eventbus"
	events "github.com/hanpama/newsgraph/internal/events"
	relation "github.com/hanpama/newsgraph/internal/relation"
)

// Source is the store contract the fetcher consumes.
//
// GetByIDs returns the entities matching ids; missing ids are simply
// absent from the result map, never an error. GetByRelation returns the
// flat list of rel.Related entities whose extracted keys intersect
// sourceKeys; the fetcher applies the extractor again to demultiplex.
// Implementations must be safe for concurrent calls: one flush may invoke
// both methods in parallel for different buckets.
type Source interface {
	GetByIDs(ctx context.Context, kind entity.Kind, ids []entity.ID) (map[entity.ID]entity.Entity, error)
	GetByRelation(ctx context.Context, rel relation.Relation, sourceKeys []entity.ID) ([]entity.Entity, error)
}

// StoreError reports a store call failure that failed a whole flush.
type StoreError struct {
	Kind     entity.Kind
	Relation string // empty for identity lookups
	Err      error
}

func (e *StoreError) Error() string {
	if e.Relation != "" {
		return fmt.Sprintf("store call for relation %q failed: %v", e.Relation, e.Err)
	}
	return fmt.Sprintf("store call for %s ids failed: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type idCacheKey struct {
	kind entity.Kind
	id   entity.ID
}

type relCacheKey struct {
	name string
	src  entity.ID
}

type idBucket struct {
	keys    map[entity.ID]struct{}
	waiters []*IDBatch
}

type relBucket struct {
	rel     relation.Relation
	keys    map[entity.ID]struct{}
	waiters []*RelationBatch
}

// Fetcher accumulates lookup requests for one query execution and
// resolves them in consolidated store calls. Build one per execution with
// New; see the package documentation for the full protocol.
type Fetcher struct {
	source    Source
	relations *relation.Registry

	flushing    bool
	pendingIDs  map[entity.Kind]*idBucket
	pendingRels map[string]*relBucket

	// per-execution result cache; a present key with a nil value records
	// a confirmed absence
	resolved    map[idCacheKey]entity.Entity
	relResolved map[relCacheKey][]entity.Entity
}

// New creates a fetcher bound to its store and relation registry. Both
// are explicit dependencies so tests can assemble isolated configurations.
func New(source Source, relations *relation.Registry) *Fetcher {
	return &Fetcher{
		source:      source,
		relations:   relations,
		pendingIDs:  make(map[entity.Kind]*idBucket),
		pendingRels: make(map[string]*relBucket),
		resolved:    make(map[idCacheKey]entity.Entity),
		relResolved: make(map[relCacheKey][]entity.Entity),
	}
}

// ByIDs registers an identity lookup for the given kind and returns its
// placeholder batch. Keys already resolved in this execution are served
// from the cache; if every key is cached the batch is fulfilled
// immediately and the next Flush will not touch the store for it.
func (f *Fetcher) ByIDs(kind entity.Kind, ids ...entity.ID) *IDBatch {
	b := &IDBatch{f: f, kind: kind}
	seen := make(map[entity.ID]struct{}, len(ids))
	pending := false
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		b.ids = append(b.ids, id)
		if _, ok := f.resolved[idCacheKey{kind, id}]; ok {
			continue
		}
		pending = true
		bucket := f.pendingIDs[kind]
		if bucket == nil {
			bucket = &idBucket{keys: make(map[entity.ID]struct{})}
			f.pendingIDs[kind] = bucket
		}
		bucket.keys[id] = struct{}{}
	}
	if !pending {
		b.done = true
		return b
	}
	f.pendingIDs[kind].waiters = append(f.pendingIDs[kind].waiters, b)
	return b
}

// ByRelation registers a relation lookup for the given source keys and
// returns its placeholder batch. The relation must have been registered;
// an unknown name is a wiring bug and panics.
func (f *Fetcher) ByRelation(name string, sourceKeys ...entity.ID) *RelationBatch {
	rel, ok := f.relations.Get(name)
	if !ok {
		panic(fmt.Sprintf("fetch: relation %q not registered", name))
	}
	b := &RelationBatch{f: f, rel: rel}
	seen := make(map[entity.ID]struct{}, len(sourceKeys))
	pending := false
	for _, key := range sourceKeys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		b.keys = append(b.keys, key)
		if _, ok := f.relResolved[relCacheKey{name, key}]; ok {
			continue
		}
		pending = true
		bucket := f.pendingRels[name]
		if bucket == nil {
			bucket = &relBucket{rel: rel, keys: make(map[entity.ID]struct{})}
			f.pendingRels[name] = bucket
		}
		bucket.keys[key] = struct{}{}
	}
	if !pending {
		b.done = true
		return b
	}
	f.pendingRels[name].waiters = append(f.pendingRels[name].waiters, b)
	return b
}

type idOutcome struct {
	kind   entity.Kind
	bucket *idBucket
	got    map[entity.ID]entity.Entity
	err    error
}

type relOutcome struct {
	bucket *relBucket
	got    []entity.Entity
	err    error
}

// Flush dispatches every pending bucket to the store, one call per
// bucket, concurrently across buckets. It returns once all calls finished
// and their results are applied and every waiting batch is fulfilled.
// Any store failure fails the flush as a whole. Flush must not be
// re-entered while a previous flush is outstanding.
func (f *Fetcher) Flush(ctx context.Context) error {
	if f.flushing {
		panic("fetch: Flush re-entered while a flush is outstanding")
	}
	f.flushing = true
	defer func() { f.flushing = false }()

	idBuckets := f.pendingIDs
	relBuckets := f.pendingRels
	f.pendingIDs = make(map[entity.Kind]*idBucket)
	f.pendingRels = make(map[string]*relBucket)

	total := len(idBuckets) + len(relBuckets)
	if total == 0 {
		return nil
	}
	start := time.Now()

	idOutcomes := make([]idOutcome, 0, len(idBuckets))
	for kind, bucket := range idBuckets {
		idOutcomes = append(idOutcomes, idOutcome{kind: kind, bucket: bucket})
	}
	relOutcomes := make([]relOutcome, 0, len(relBuckets))
	for _, bucket := range relBuckets {
		relOutcomes = append(relOutcomes, relOutcome{bucket: bucket})
	}

	runID := func(o *idOutcome) {
		keys := sortedKeys(o.bucket.keys)
		callStart := time.Now()
		o.got, o.err = f.source.GetByIDs(ctx, o.kind, keys)
		eventbus.Publish(ctx, events.StoreCall{
			Kind: string(o.kind), Mode: events.ModeByIDs,
			Keys: len(keys), Duration: time.Since(callStart), Err: o.err,
		})
	}
	runRel := func(o *relOutcome) {
		keys := sortedKeys(o.bucket.keys)
		callStart := time.Now()
		o.got, o.err = f.source.GetByRelation(ctx, o.bucket.rel, keys)
		eventbus.Publish(ctx, events.StoreCall{
			Kind: string(o.bucket.rel.Related), Mode: events.ModeByRelation,
			Relation: o.bucket.rel.Name, Keys: len(keys),
			Duration: time.Since(callStart), Err: o.err,
		})
	}

	if total > 1 {
		var wg sync.WaitGroup
		wg.Add(total)
		for i := range idOutcomes {
			go func(o *idOutcome) {
				defer wg.Done()
				runID(o)
			}(&idOutcomes[i])
		}
		for i := range relOutcomes {
			go func(o *relOutcome) {
				defer wg.Done()
				runRel(o)
			}(&relOutcomes[i])
		}
		wg.Wait()
	} else {
		for i := range idOutcomes {
			runID(&idOutcomes[i])
		}
		for i := range relOutcomes {
			runRel(&relOutcomes[i])
		}
	}

	fail := func(err error) error {
		for _, o := range idOutcomes {
			for _, w := range o.bucket.waiters {
				w.done, w.err = true, err
			}
		}
		for _, o := range relOutcomes {
			for _, w := range o.bucket.waiters {
				w.done, w.err = true, err
			}
		}
		eventbus.Publish(ctx, events.FetchFlush{Buckets: total, Duration: time.Since(start), Err: err})
		return err
	}

	// Cancelled executions must not have late results applied to the cache.
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	for _, o := range idOutcomes {
		if o.err != nil {
			return fail(&StoreError{Kind: o.kind, Err: o.err})
		}
	}
	for _, o := range relOutcomes {
		if o.err != nil {
			return fail(&StoreError{Kind: o.bucket.rel.Related, Relation: o.bucket.rel.Name, Err: o.err})
		}
	}

	for _, o := range idOutcomes {
		for id := range o.bucket.keys {
			f.resolved[idCacheKey{o.kind, id}] = o.got[id] // nil records absence
		}
		for _, w := range o.bucket.waiters {
			w.done = true
		}
	}
	for _, o := range relOutcomes {
		rel := o.bucket.rel
		lists := make(map[entity.ID][]entity.Entity, len(o.bucket.keys))
		for key := range o.bucket.keys {
			lists[key] = []entity.Entity{}
		}
		for _, e := range o.got {
			// An entity may satisfy several pending source keys; it joins
			// every matching list. It also satisfies later identity
			// lookups for its own id.
			for _, key := range rel.Keys(e) {
				if _, wanted := lists[key]; wanted {
					lists[key] = append(lists[key], e)
				}
			}
			idKey := idCacheKey{rel.Related, e.EntityID()}
			if _, ok := f.resolved[idKey]; !ok {
				f.resolved[idKey] = e
			}
		}
		for key, list := range lists {
			f.relResolved[relCacheKey{rel.Name, key}] = list
		}
		for _, w := range o.bucket.waiters {
			w.done = true
		}
	}

	eventbus.Publish(ctx, events.FetchFlush{Buckets: total, Duration: time.Since(start)})
	return nil
}

func sortedKeys(set map[entity.ID]struct{}) []entity.ID {
	keys := make([]entity.ID, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	// deterministic store calls make call logs comparable in tests
	slices.Sort(keys)
	return keys
}
