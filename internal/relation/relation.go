package relation

import (
	"fmt"

	entity "github.com/hanpama/newsgraph/internal/entity"
)

// Relation is a named one-to-many association from a source kind to a
// related kind. Keys maps a related entity to the source keys it
// satisfies; the same function drives both the store-side filter and the
// result demultiplexing, so an entity that satisfies several source keys
// lands in every matching result list.
//
// Keys must be pure: within one execution the same entity always yields
// the same source-key set.
type Relation struct {
	Name    string
	Source  entity.Kind
	Related entity.Kind
	Keys    func(e entity.Entity) []entity.ID
}

// DuplicateRelationError reports a second registration of a relation name.
// It indicates a wiring bug and is fatal at startup.
type DuplicateRelationError struct {
	Name string
}

func (e *DuplicateRelationError) Error() string {
	return fmt.Sprintf("relation %q registered twice", e.Name)
}

// Registry holds all relations known to one fetching configuration.
// Relations are looked up by name; there is no package-level registry, so
// tests can build isolated configurations.
type Registry struct {
	byName map[string]Relation
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Relation)}
}

// Register adds r to the registry. Registering the same name twice
// returns a DuplicateRelationError.
func (reg *Registry) Register(r Relation) error {
	if r.Name == "" {
		return fmt.Errorf("relation name must not be empty")
	}
	if r.Keys == nil {
		return fmt.Errorf("relation %q has no key extractor", r.Name)
	}
	if _, exists := reg.byName[r.Name]; exists {
		return &DuplicateRelationError{Name: r.Name}
	}
	reg.byName[r.Name] = r
	return nil
}

// MustRegister is Register for static wiring; it panics on error.
func (reg *Registry) MustRegister(r Relation) {
	if err := reg.Register(r); err != nil {
		panic(err)
	}
}

// Get returns the relation registered under name.
func (reg *Registry) Get(name string) (Relation, bool) {
	r, ok := reg.byName[name]
	return r, ok
}
