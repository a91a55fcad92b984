package roster

import "reflect"

type selectorKind int

const (
	selectInvalid selectorKind = iota
	selectByName
	selectByID
	selectByEntity
)

// Selector identifies one entity by exactly one of name, unique id or entity
// reference. The zero value selects nothing and is rejected with
// ErrInvalidSelector.
type Selector[T Entity] struct {
	kind   selectorKind
	name   string
	id     string
	entity T
}

// ByName selects by display name. Lookups fail with ErrAmbiguous when more
// than one entity carries the name.
func ByName[T Entity](name string) Selector[T] {
	if name == "" {
		return Selector[T]{}
	}
	return Selector[T]{kind: selectByName, name: name}
}

// ByID selects by unique id.
func ByID[T Entity](id string) Selector[T] {
	if id == "" {
		return Selector[T]{}
	}
	return Selector[T]{kind: selectByID, id: id}
}

// ByEntity selects the stored entity sharing e's unique id. A nil entity
// yields the invalid selector.
func ByEntity[T Entity](e T) Selector[T] {
	if isNil(e) {
		return Selector[T]{}
	}
	return Selector[T]{kind: selectByEntity, entity: e}
}

func isNil(e any) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Valid reports whether the selector names a lookup key.
func (s Selector[T]) Valid() bool {
	return s.kind != selectInvalid
}

// String describes the selector for error messages and logs.
func (s Selector[T]) String() string {
	switch s.kind {
	case selectByName:
		return "name=" + s.name
	case selectByID:
		return "id=" + s.id
	case selectByEntity:
		return "entity=" + s.entity.UniqueID()
	default:
		return "invalid"
	}
}
