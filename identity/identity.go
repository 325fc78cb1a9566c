// Package identity defines the stable handle types every model object,
// data element, and include-function registration is keyed by. Objects
// reference one another through these value types rather than pointers,
// so the object graph can be built incrementally by the resolver
// without forming reference cycles.
package identity

import "fmt"

// Id names a top-level or low-level model object: a concept paired
// with an instance name, both jointly unique within their namespace
// (top-level objects and low-level objects are separate namespaces).
type Id struct {
	Concept  string
	Instance string
}

// NewId builds an Id from its two parts.
func NewId(concept, instance string) Id {
	return Id{Concept: concept, Instance: instance}
}

func (id Id) String() string {
	return fmt.Sprintf("%s/%s", id.Concept, id.Instance)
}

// IsZero reports whether id is the zero value.
func (id Id) IsZero() bool {
	return id.Concept == "" && id.Instance == ""
}

// ElementKey names one data element: concept, type, and instance. Two
// elements sharing an ElementKey are a duplicate-element error.
type ElementKey struct {
	Concept  string
	Type     string
	Instance string
}

// NewElementKey builds an ElementKey from its three parts.
func NewElementKey(concept, typ, instance string) ElementKey {
	return ElementKey{Concept: concept, Type: typ, Instance: instance}
}

func (k ElementKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Concept, k.Type, k.Instance)
}

// Id projects an ElementKey down to the Id of the object it resolves to.
func (k ElementKey) Id() Id {
	return Id{Concept: k.Concept, Instance: k.Instance}
}

// TypeKey names a (concept, type) pair: the key the include-function
// registry is indexed by. At most one include-function may be
// registered per TypeKey.
type TypeKey struct {
	Concept string
	Type    string
}

// NewTypeKey builds a TypeKey from its two parts.
func NewTypeKey(concept, typ string) TypeKey {
	return TypeKey{Concept: concept, Type: typ}
}

func (k TypeKey) String() string {
	return fmt.Sprintf("%s/%s", k.Concept, k.Type)
}

// TypeKey projects an ElementKey down to the TypeKey of its include function.
func (k ElementKey) TypeKey() TypeKey {
	return TypeKey{Concept: k.Concept, Type: k.Type}
}

// Reference identifies another data element by its (concept, instance)
// pair, the shape a WhichConcept/WhichInstance field pair in a data
// element's value takes when it points at another element. It carries
// no Type because the referring element does not need to know the
// referent's registered type, only its identity.
type Reference struct {
	WhichConcept  string
	WhichInstance string
}

// NewReference builds a Reference from its two parts.
func NewReference(concept, instance string) Reference {
	return Reference{WhichConcept: concept, WhichInstance: instance}
}

// Id projects a Reference down to the Id of the object it points at.
func (r Reference) Id() Id {
	return Id{Concept: r.WhichConcept, Instance: r.WhichInstance}
}

func (r Reference) String() string {
	return fmt.Sprintf("%s/%s", r.WhichConcept, r.WhichInstance)
}
