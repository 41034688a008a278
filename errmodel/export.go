package errmodel

import (
	"fmt"
	"math"

	"github.com/justapithecus/readsim/profile"
	"github.com/justapithecus/readsim/types"
)

// Export converts an analytic model into a profile artifact the cdf model
// can load. Basic quality distributions are discretized over their clamp
// range.
func Export(m Model, name string) (*profile.Profile, error) {
	if name == "" {
		name = m.Name()
	}
	p := &profile.Profile{
		Header: profile.Header{
			Name:       name,
			ReadLength: m.ReadLength(),
			InsertMean: m.InsertSize().Mean,
			InsertSD:   m.InsertSize().StdDev,
		},
	}

	var build func(pos int, o types.Orientation) profile.Position
	switch mm := m.(type) {
	case *Basic:
		build = func(pos int, o types.Orientation) profile.Position {
			pp := discretizeNormal(mm.MeanQuality(pos, o), rampFor(o).sd)
			pp.Insertion = mm.insertionRate
			pp.Deletion = mm.deletionRate
			return pp
		}
	case *Perfect:
		build = func(int, types.Orientation) profile.Position {
			return profile.Position{
				Scores:        []uint8{PerfectQuality},
				CDF:           []float64{1},
				Substitutions: uniformSubstitutions(),
			}
		}
	case *CDF:
		return nil, fmt.Errorf("model %q is already profile-backed", m.Name())
	default:
		return nil, fmt.Errorf("model %q cannot be exported", m.Name())
	}

	for _, o := range []types.Orientation{types.Forward, types.Reverse} {
		t := p.Table(o)
		t.Orientation = o
		t.Positions = make([]profile.Position, m.ReadLength())
		for pos := range t.Positions {
			t.Positions[pos] = build(pos, o)
		}
	}
	return p, nil
}

func discretizeNormal(mean, sd float64) profile.Position {
	n := maxBasicQuality - minBasicQuality + 1
	pp := profile.Position{
		Scores:        make([]uint8, n),
		CDF:           make([]float64, n),
		Substitutions: uniformSubstitutions(),
	}
	for i := range n {
		q := minBasicQuality + i
		pp.Scores[i] = uint8(q)
		pp.CDF[i] = normalCDF((float64(q) + 0.5 - mean) / sd)
	}
	pp.CDF[n-1] = 1
	return pp
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func uniformSubstitutions() map[string][]float64 {
	subs := make(map[string][]float64, 4)
	for ref := range 4 {
		w := []float64{1, 1, 1, 1}
		w[ref] = 0
		subs[string(acgt[ref])] = w
	}
	return subs
}
