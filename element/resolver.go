package element

import (
	"github.com/NVE/TuLiPa-sub002/identity"
	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
)

// withAnonymousInstances returns elements with a synthetic, collision-free
// instance name assigned to any element authored without one (Key.Instance
// == ""), the shape a low-level object inlined under its owner takes when
// the author only supplies a concept. The input slice is left untouched.
func withAnonymousInstances(elements []DataElement) []DataElement {
	out := make([]DataElement, len(elements))
	for i, e := range elements {
		if e.Key.Instance == "" {
			e.Key.Instance = identity.NewAnonymousInstance(e.Key.Concept).Instance
		}
		out[i] = e
	}
	return out
}

// maxAssembleIterations bounds the post-resolve assemble fixed-point
// pass: enough rounds for any realistic back-pointer chain to
// converge, while still catching a genuine cycle as AssembleStalled
// rather than looping forever.
const maxAssembleIterations = 64

// Resolve runs the fixed-point include loop over elements: each round,
// every still-unresolved element's IncludeFunc is invoked; elements
// whose IncludeFunc signals ready=false are retried next round.
// Resolution stops when a round makes no progress. Duplicate element
// keys and unknown types are reported immediately (not retried);
// elements still unresolved when progress stalls are reported as
// AssembleStalled. All structural errors are collected into one
// apperror.List rather than failing on the first.
func Resolve(elements []DataElement, registry *Registry) (*ObjectMap, error) {
	var errs apperror.List

	elements = withAnonymousInstances(elements)

	seen := make(map[identity.ElementKey]bool)
	seenId := make(map[identity.Id]identity.ElementKey)
	var pending []DataElement
	for _, e := range elements {
		if seen[e.Key] {
			errs.Add(apperror.New(apperror.CodeDuplicateElement, "duplicate element").
				WithDetails("element", e.Key.String()))
			continue
		}
		seen[e.Key] = true
		if prior, ok := seenId[e.Key.Id()]; ok {
			errs.Add(apperror.New(apperror.CodeDuplicateElement, "two elements of different types share an id").
				WithDetails("element", e.Key.String()).WithDetails("conflicts_with", prior.String()))
			continue
		}
		seenId[e.Key.Id()] = e.Key

		if _, ok := registry.lookup(e.Key.TypeKey()); !ok {
			errs.Add(apperror.New(apperror.CodeUnknownType, "no include function registered for type").
				WithDetails("element", e.Key.String()))
			continue
		}
		pending = append(pending, e)
	}

	objects := NewObjectMap()
	for {
		progressed := false
		var stillPending []DataElement
		for _, e := range pending {
			fn, _ := registry.lookup(e.Key.TypeKey())
			ready, err := fn(objects, e)
			if err != nil {
				errs.Add(annotateElement(err, e.Key))
				continue
			}
			if ready {
				progressed = true
				continue
			}
			stillPending = append(stillPending, e)
		}
		pending = stillPending
		if len(pending) == 0 || !progressed {
			break
		}
	}

	for _, e := range pending {
		errs.Add(apperror.New(apperror.CodeAssembleStalled, "element could not be resolved: unresolved dependency").
			WithDetails("element", e.Key.String()))
	}

	if errs.Len() > 0 {
		return nil, errs.Err()
	}
	return objects, nil
}

// toAppError coerces any error into an *apperror.Error, wrapping
// anything else as an internal error rather than discarding it.
func toAppError(err error) *apperror.Error {
	if ae, ok := err.(*apperror.Error); ok {
		return ae
	}
	return apperror.Wrap(err, apperror.CodeInternal, err.Error())
}

func annotateElement(err error, key identity.ElementKey) *apperror.Error {
	ae := toAppError(err)
	if ae.Field == "" {
		ae.WithField(key.String())
	}
	return ae
}

// Assembler is implemented by model objects that have a post-resolve
// assemble step (filling back-pointers, picking an inherited horizon,
// checking structural invariants) that may depend on another object
// having already been assembled. Assemble should return a
// MissingField/WrongFieldType/InvariantViolation-flavoured apperror.
// Error for a terminal, un-retriable failure, or an error wrapped with
// NotReady to ask for another fixed-point round.
type Assembler interface {
	Assemble() error
}

type notReadyError struct{ cause error }

func (e *notReadyError) Error() string { return e.cause.Error() }
func (e *notReadyError) Unwrap() error { return e.cause }

// NotReady wraps cause so AssembleAll retries the object on the next
// round instead of surfacing cause as terminal.
func NotReady(cause error) error { return &notReadyError{cause: cause} }

func isNotReady(err error) bool {
	_, ok := err.(*notReadyError)
	return ok
}

// AssembleAll runs the post-resolve assemble fixed-point pass over
// every object in m that implements Assembler: repeat until a round
// assembles nothing new, then report whatever remains (wrapped in
// NotReady) as AssembleStalled, and anything else as a terminal
// structural error.
func AssembleAll(m *ObjectMap) error {
	var errs apperror.List

	pending := make(map[identity.Id]Assembler)
	for id, obj := range m.objects {
		if a, ok := obj.(Assembler); ok {
			pending[id] = a
		}
	}

	for iter := 0; iter < maxAssembleIterations && len(pending) > 0; iter++ {
		progressed := false
		for id, a := range pending {
			err := a.Assemble()
			if err == nil {
				delete(pending, id)
				progressed = true
				continue
			}
			if !isNotReady(err) {
				errs.Add(annotateObjectErr(err, id))
				delete(pending, id)
			}
		}
		if !progressed {
			break
		}
	}

	for id := range pending {
		errs.Add(apperror.New(apperror.CodeAssembleStalled, "object could not be assembled").
			WithDetails("object", id.String()))
	}

	if errs.Len() > 0 {
		return errs.Err()
	}
	return nil
}

func annotateObjectErr(err error, id identity.Id) *apperror.Error {
	ae := toAppError(err)
	if ae.Field == "" {
		ae.WithField(id.String())
	}
	return ae
}
