// Package roster provides a dual-indexed collection for mirrored remote
// entities. Entities are indexed by a unique id and by a display name that
// may collide; name lookups that match more than one entity are reported as
// ambiguous instead of picking one.
package roster

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID indicates an entity with the same unique id is already stored.
	ErrDuplicateID = errors.New("duplicate unique id")

	// ErrInvalidSelector indicates a selector that names no lookup key.
	ErrInvalidSelector = errors.New("selector must name exactly one of name, id or entity")

	// ErrAmbiguous indicates a name lookup matched more than one entity.
	ErrAmbiguous = errors.New("ambiguous name")

	// ErrNotFound indicates no entity matched the selector.
	ErrNotFound = errors.New("entity not found")
)

// Entity is anything that can be stored in a Roster.
type Entity interface {
	// Name returns the display name. It need not be unique.
	Name() string
	// UniqueID returns the identifier that is unique within the roster.
	UniqueID() string
	// Format returns a human readable description.
	Format() string
}

// Roster stores entities indexed by unique id and by name.
// It is not safe for concurrent use.
type Roster[T Entity] struct {
	byName map[string][]T
	byID   map[string]T
	order  []string // unique ids in insertion order
}

// New returns an empty roster.
func New[T Entity]() *Roster[T] {
	return &Roster[T]{
		byName: make(map[string][]T),
		byID:   make(map[string]T),
	}
}

// Add inserts e into both indexes.
func (r *Roster[T]) Add(e T) error {
	id := e.UniqueID()
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("adding %q: %w", id, ErrDuplicateID)
	}
	r.byID[id] = e
	r.byName[e.Name()] = append(r.byName[e.Name()], e)
	r.order = append(r.order, id)
	return nil
}

// Get returns the single entity matched by sel.
func (r *Roster[T]) Get(sel Selector[T]) (T, error) {
	var zero T
	switch sel.kind {
	case selectByID:
		e, ok := r.byID[sel.id]
		if !ok {
			return zero, fmt.Errorf("id %q: %w", sel.id, ErrNotFound)
		}
		return e, nil
	case selectByEntity:
		e, ok := r.byID[sel.entity.UniqueID()]
		if !ok {
			return zero, fmt.Errorf("id %q: %w", sel.entity.UniqueID(), ErrNotFound)
		}
		return e, nil
	case selectByName:
		named := r.byName[sel.name]
		switch len(named) {
		case 0:
			return zero, fmt.Errorf("name %q: %w", sel.name, ErrNotFound)
		case 1:
			return named[0], nil
		default:
			return zero, fmt.Errorf("%w: %d entities named %q, use an unambiguous identifier",
				ErrAmbiguous, len(named), sel.name)
		}
	default:
		return zero, ErrInvalidSelector
	}
}

// Lookup is the non-raising form of Get. Missing, ambiguous and invalid
// selections all report false.
func (r *Roster[T]) Lookup(sel Selector[T]) (T, bool) {
	e, err := r.Get(sel)
	if err != nil {
		var zero T
		return zero, false
	}
	return e, true
}

// Remove deletes the entity matched by sel from both indexes and returns it.
func (r *Roster[T]) Remove(sel Selector[T]) (T, error) {
	e, err := r.Get(sel)
	if err != nil {
		return e, err
	}
	id := e.UniqueID()
	delete(r.byID, id)

	name := e.Name()
	named := r.byName[name]
	if len(named) <= 1 {
		delete(r.byName, name)
	} else {
		kept := make([]T, 0, len(named)-1)
		for _, n := range named {
			if n.UniqueID() != id {
				kept = append(kept, n)
			}
		}
		r.byName[name] = kept
	}

	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, nil
}

// All returns every entity in insertion order.
func (r *Roster[T]) All() []T {
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of stored entities.
func (r *Roster[T]) Len() int {
	return len(r.byID)
}

// NameCount returns how many entities currently share name.
func (r *Roster[T]) NameCount(name string) int {
	return len(r.byName[name])
}

// Clear empties both indexes. Used as the first step of a reload.
func (r *Roster[T]) Clear() {
	r.byName = make(map[string][]T)
	r.byID = make(map[string]T)
	r.order = nil
}
