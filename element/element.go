// Package element implements the data-element resolver: the
// fixed-point loader that turns a flat bag of heterogeneous,
// inter-referencing records into a typed object graph, per an
// include-function registry keyed by (concept, type).
package element

import (
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
)

// DataElement is one (concept, type, instance, value) record. Value
// carries the element's fields as an untyped map; scalar fields,
// nested values, and references to other elements (as
// identity.Reference) may all appear as map values.
type DataElement struct {
	Key   identity.ElementKey
	Value map[string]any
}

// ObjectMap holds every object produced by a successful resolve pass,
// keyed by the Id of the element it was built from. Objects are typed
// `any` here; callers type-assert to the concrete model type they
// expect at a given Id (mirroring how the registry's IncludeFunc
// writes into the map in the first place).
type ObjectMap struct {
	objects map[identity.Id]any
}

// NewObjectMap returns an empty ObjectMap.
func NewObjectMap() *ObjectMap {
	return &ObjectMap{objects: make(map[identity.Id]any)}
}

// Get looks up the object built from the element at id, if resolved.
func (m *ObjectMap) Get(id identity.Id) (any, bool) {
	v, ok := m.objects[id]
	return v, ok
}

// Put records the object resolved for id. Called by an IncludeFunc
// once it has everything it needs to build its object.
func (m *ObjectMap) Put(id identity.Id, obj any) {
	m.objects[id] = obj
}

// Len reports how many objects have been resolved so far.
func (m *ObjectMap) Len() int { return len(m.objects) }

// All returns every resolved object, in unspecified order. Callers that
// need a stable order (e.g. for deterministic cut-pool ids) should sort
// by identity.Id themselves.
func (m *ObjectMap) All() []any {
	out := make([]any, 0, len(m.objects))
	for _, obj := range m.objects {
		out = append(out, obj)
	}
	return out
}

// IncludeFunc builds one element's object and stores it in objects via
// Put. It returns ready=false (no error) when the element depends on
// another element's object that has not been resolved yet — the
// resolver retries such elements on the next fixed-point pass. Any
// non-nil error is terminal for that element (surfaced, not retried).
type IncludeFunc func(objects *ObjectMap, elem DataElement) (ready bool, err error)

// Registry maps each (concept, type) pair to the include function that
// knows how to build its objects. At most one include function may be
// registered per TypeKey; a second registration for the same key is a
// caller bug, not a data error, so Register panics rather than
// returning an error.
type Registry struct {
	funcs map[identity.TypeKey]IncludeFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[identity.TypeKey]IncludeFunc)}
}

// Register binds fn to key.
func (r *Registry) Register(key identity.TypeKey, fn IncludeFunc) {
	if _, exists := r.funcs[key]; exists {
		panic("element: duplicate include function registration for " + key.String())
	}
	r.funcs[key] = fn
}

func (r *Registry) lookup(key identity.TypeKey) (IncludeFunc, bool) {
	fn, ok := r.funcs[key]
	return fn, ok
}

// referenceField looks up a (WhichConcept, WhichInstance) field pair
// embedded in an element's value, if present, returning the element
// key it needs (concept + instance; the type is filled in by the
// caller matching it against the pending element list).
func referenceField(value map[string]any, conceptField, instanceField string) (identity.Reference, bool) {
	concept, ok := value[conceptField].(string)
	if !ok {
		return identity.Reference{}, false
	}
	instance, ok := value[instanceField].(string)
	if !ok {
		return identity.Reference{}, false
	}
	return identity.NewReference(concept, instance), true
}

// ReferenceField is the exported form of referenceField, for
// IncludeFunc implementations that read a WhichConcept/WhichInstance
// pair out of an element's value map under field names of their
// choosing (e.g. "WhichConcept"/"WhichInstance", or a commodity-
// specific pair like "CommodityConcept"/"CommodityInstance").
func ReferenceField(value map[string]any, conceptField, instanceField string) (identity.Reference, bool) {
	return referenceField(value, conceptField, instanceField)
}

// RequireField type-asserts a required field out of an element's
// value, returning MissingField if absent or WrongFieldType if present
// with the wrong Go type.
func RequireField[T any](elem DataElement, field string) (T, error) {
	var zero T
	raw, ok := elem.Value[field]
	if !ok {
		return zero, apperror.New(apperror.CodeMissingField, "missing required field").
			WithDetails("element", elem.Key.String()).WithDetails("field", field)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, apperror.New(apperror.CodeWrongFieldType, "field has unexpected type").
			WithDetails("element", elem.Key.String()).WithDetails("field", field)
	}
	return v, nil
}

// OptionalField is RequireField's non-erroring counterpart for fields
// that may be absent: it returns the zero value and ok=false rather
// than MissingField, but still surfaces WrongFieldType if the field is
// present with the wrong type.
func OptionalField[T any](elem DataElement, field string) (T, bool, error) {
	var zero T
	raw, present := elem.Value[field]
	if !present {
		return zero, false, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false, apperror.New(apperror.CodeWrongFieldType, "field has unexpected type").
			WithDetails("element", elem.Key.String()).WithDetails("field", field)
	}
	return v, true, nil
}
