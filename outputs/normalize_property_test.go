package outputs

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestNormalizationIdempotentProperty verifies that list normalization is a
// fixed point: feeding an already-normalized tasks output back through
// Validate yields a deep-equal value, for arbitrary messy input lists.
func TestNormalizationIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	itemGen := gen.OneGenOf(
		gen.RegexMatch(`[a-z]{1,12}( [a-z]{1,12}){0,3}`),
		gen.RegexMatch(`\s{0,3}[a-z]{1,12}\s{0,3}`),
		gen.Const(""),
		gen.Const("   "),
	)

	properties.Property("validate(validate(x)) == validate(x)", prop.ForAll(
		func(items []string) bool {
			raw, err := json.Marshal(map[string]any{"kind": "tasks", "items": items})
			if err != nil {
				return false
			}
			first, err := Validate(KindTasks, raw)
			if err != nil {
				// Inputs that normalize to an empty list are rejected;
				// idempotence only concerns accepted values.
				return true
			}
			again, err := json.Marshal(map[string]any{"kind": "tasks", "items": first.(Tasks).Items})
			if err != nil {
				return false
			}
			second, err := Validate(KindTasks, again)
			if err != nil {
				return false
			}
			firstTasks := first.(Tasks)
			secondTasks := second.(Tasks)
			if len(firstTasks.Items) != len(secondTasks.Items) {
				return false
			}
			for i := range firstTasks.Items {
				if firstTasks.Items[i] != secondTasks.Items[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(itemGen),
	))

	properties.TestingRun(t)
}
