package identity

import "github.com/google/uuid"

// NewAnonymousInstance generates a synthetic, collision-free instance
// name for a low-level element authored inline (e.g. a Cost embedded
// directly in a Flow's value rather than given its own element
// record). The concept is kept as supplied so the resulting Id still
// groups sensibly with its siblings in the low-level map.
func NewAnonymousInstance(concept string) Id {
	return Id{Concept: concept, Instance: uuid.NewString()}
}
