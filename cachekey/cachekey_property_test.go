package cachekey

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCacheKeyPermutationInvariance is a property test grounded in the
// testable-properties round-trip: "Canonical JSON of an object is invariant
// under key permutation, so cache keys are equal."
func TestCacheKeyPermutationInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("permuting object keys never changes the cache key", prop.ForAll(
		func(tool string, keys []string, values []float64) bool {
			n := len(keys)
			if len(values) < n {
				n = len(values)
			}
			original := make(map[string]any, n)
			for i := 0; i < n; i++ {
				original[keys[i]] = values[i]
			}

			// Build permuted with identical key->value pairs, constructed
			// by iterating a shuffled key order (Go maps carry no
			// insertion order themselves, but this still exercises the
			// canonicalizer's own sort independent of build order).
			permuted := make(map[string]any, n)
			shuffledKeys := append([]string(nil), keys[:n]...)
			rand.Shuffle(n, func(i, j int) { shuffledKeys[i], shuffledKeys[j] = shuffledKeys[j], shuffledKeys[i] })
			for _, k := range shuffledKeys {
				permuted[k] = original[k]
			}

			k1, err1 := Key(tool, original)
			k2, err2 := Key(tool, permuted)
			return err1 == nil && err2 == nil && k1 == k2
		},
		gen.AlphaString(),
		gen.SliceOfN(5, gen.Identifier()),
		gen.SliceOfN(5, gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}
