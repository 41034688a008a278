package abundance

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Distribution names accepted by Generate.
const (
	DistUniform               = "uniform"
	DistHalfNormal            = "halfnormal"
	DistExponential           = "exponential"
	DistLogNormal             = "lognormal"
	DistZeroInflatedLogNormal = "zero_inflated_lognormal"
)

// Distributions lists the generated abundance distributions.
var Distributions = []string{
	DistUniform, DistHalfNormal, DistExponential, DistLogNormal, DistZeroInflatedLogNormal,
}

// zeroInflation is the probability a genome is absent under the
// zero-inflated distribution.
const zeroInflation = 0.2

// Uniform gives every genome the same abundance.
func Uniform(ids []string) Table {
	t := make(Table, len(ids))
	for _, id := range ids {
		t[id] = 1 / float64(len(ids))
	}
	return t
}

// LogNormal draws abundances from a lognormal(0, 1) and normalizes them.
func LogNormal(ids []string, rng *rand.Rand) Table {
	t, _ := Generate(DistLogNormal, ids, rng)
	return t
}

// Generate draws an abundance table from a named distribution. Ids are
// drawn in the order given, so callers wanting reproducible tables should
// pass them sorted.
func Generate(dist string, ids []string, rng *rand.Rand) (Table, error) {
	if len(ids) == 0 {
		return Table{}, nil
	}

	var draw func() float64
	switch dist {
	case DistUniform:
		return Uniform(ids), nil
	case DistHalfNormal:
		draw = func() float64 { return math.Abs(rng.NormFloat64()) }
	case DistExponential:
		draw = rng.ExpFloat64
	case DistLogNormal:
		draw = func() float64 { return math.Exp(rng.NormFloat64()) }
	case DistZeroInflatedLogNormal:
		draw = func() float64 {
			v := math.Exp(rng.NormFloat64())
			if rng.Float64() < zeroInflation {
				return 0
			}
			return v
		}
	default:
		return nil, fmt.Errorf("unknown abundance distribution %q (valid: %v)", dist, Distributions)
	}

	t := make(Table, len(ids))
	for _, id := range ids {
		t[id] = draw()
	}
	if t.Sum() == 0 {
		// Every genome drew zero; fall back to keeping the first.
		t[ids[0]] = 1
	}
	return t.Normalize()
}
