package errmodel

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/justapithecus/readsim/profile"
	"github.com/justapithecus/readsim/types"
)

// cdfTolerance is how far the last CDF entry may be from 1.
const cdfTolerance = 1e-6

type cdfSite struct {
	scores []uint8
	cdf    []float64
	// subs[ref] holds cumulative weights over the three non-ref bases in
	// ACGT order; targets[ref] the matching bases.
	subs    [4][3]float64
	targets [4][3]byte
	ins     float64
	del     float64
	mean    float64
}

// CDF is an empirical model backed by a profile artifact. Quality scores
// and substitutions are drawn by inverse-CDF lookup.
type CDF struct {
	name       string
	readLength int
	insert     InsertSize
	forward    []cdfSite
	reverse    []cdfSite
}

// LoadCDF resolves name against dirs, opens the artifact and validates it.
// Every failure is a *ModelLoadError.
func LoadCDF(name string, dirs []string) (*CDF, error) {
	path, err := profile.Resolve(name, dirs)
	if err != nil {
		return nil, &ModelLoadError{Name: name, Reason: "profile artifact not found", Err: err}
	}
	p, err := profile.Open(path)
	if err != nil {
		return nil, &ModelLoadError{Name: name, Path: path, Reason: "cannot decode profile artifact", Err: err}
	}
	m, err := NewCDF(p)
	if err != nil {
		var loadErr *ModelLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return m, nil
}

// NewCDF builds a model from a decoded profile.
func NewCDF(p *profile.Profile) (*CDF, error) {
	h := p.Header
	name := h.Name
	if name == "" {
		name = KindCDF
	}
	insert := InsertSize{Mean: h.InsertMean, StdDev: h.InsertSD}
	if err := validateParams(name, h.ReadLength, insert, 0, 0); err != nil {
		return nil, err
	}

	m := &CDF{name: name, readLength: h.ReadLength, insert: insert}
	var err error
	if m.forward, err = compileTable(name, &p.Forward, h.ReadLength); err != nil {
		return nil, err
	}
	if m.reverse, err = compileTable(name, &p.Reverse, h.ReadLength); err != nil {
		return nil, err
	}
	return m, nil
}

func compileTable(name string, t *profile.Table, readLength int) ([]cdfSite, error) {
	fail := func(pos int, format string, args ...any) error {
		return &ModelLoadError{
			Name:   name,
			Reason: fmt.Sprintf("%s table position %d: ", t.Orientation, pos) + fmt.Sprintf(format, args...),
		}
	}

	if len(t.Positions) == 0 {
		return nil, &ModelLoadError{Name: name, Reason: fmt.Sprintf("%s table is empty", t.Orientation)}
	}
	if len(t.Positions) < readLength {
		return nil, &ModelLoadError{
			Name:   name,
			Reason: fmt.Sprintf("%s table has %d positions, read length is %d", t.Orientation, len(t.Positions), readLength),
		}
	}

	sites := make([]cdfSite, readLength)
	for pos := range sites {
		src := &t.Positions[pos]
		s := &sites[pos]

		if len(src.Scores) == 0 || len(src.Scores) != len(src.CDF) {
			return nil, fail(pos, "%d scores with %d cdf entries", len(src.Scores), len(src.CDF))
		}
		prev := 0.0
		for i, c := range src.CDF {
			if math.IsNaN(c) || c < prev {
				return nil, fail(pos, "cdf not monotone at index %d", i)
			}
			if src.Scores[i] > MaxPhred {
				return nil, fail(pos, "score %d above %d", src.Scores[i], MaxPhred)
			}
			// Mean of the discrete distribution.
			s.mean += float64(src.Scores[i]) * (c - prev)
			prev = c
		}
		if math.Abs(prev-1) > cdfTolerance {
			return nil, fail(pos, "cdf ends at %g, want 1", prev)
		}
		s.scores = src.Scores
		s.cdf = src.CDF

		for ref := range 4 {
			weights := src.Substitutions[string(acgt[ref])]
			if len(weights) != 4 {
				return nil, fail(pos, "substitution weights for %c: got %d, want 4", acgt[ref], len(weights))
			}
			k, total := 0, 0.0
			for alt := range 4 {
				if alt == ref {
					continue
				}
				w := weights[alt]
				if w < 0 || math.IsNaN(w) {
					return nil, fail(pos, "negative substitution weight %c>%c", acgt[ref], acgt[alt])
				}
				total += w
				s.subs[ref][k] = total
				s.targets[ref][k] = acgt[alt]
				k++
			}
			if total <= 0 {
				return nil, fail(pos, "no substitution weight for %c", acgt[ref])
			}
			for k := range s.subs[ref] {
				s.subs[ref][k] /= total
			}
		}

		if src.Insertion < 0 || src.Insertion >= 1 || src.Deletion < 0 || src.Deletion >= 1 {
			return nil, fail(pos, "indel rates %g/%g outside [0, 1)", src.Insertion, src.Deletion)
		}
		s.ins = src.Insertion
		s.del = src.Deletion
	}
	return sites, nil
}

// Name returns the profile name.
func (m *CDF) Name() string { return m.name }

// ReadLength returns the profile read length.
func (m *CDF) ReadLength() int { return m.readLength }

// InsertSize returns the profile insert size distribution.
func (m *CDF) InsertSize() InsertSize { return m.insert }

// IntroduceErrors emits one read with profile-drawn errors.
func (m *CDF) IntroduceErrors(rng *rand.Rand, seq []byte, o types.Orientation) (Mutation, error) {
	return introduce(rng, m, m.readLength, seq, o)
}

// MeanQuality returns the expected quality at a read position.
func (m *CDF) MeanQuality(pos int, o types.Orientation) float64 {
	return m.site(pos, o).mean
}

func (m *CDF) site(pos int, o types.Orientation) *cdfSite {
	if o == types.Reverse {
		return &m.reverse[pos]
	}
	return &m.forward[pos]
}

func (m *CDF) quality(rng *rand.Rand, pos int, o types.Orientation) uint8 {
	s := m.site(pos, o)
	u := rng.Float64()
	i := sort.Search(len(s.cdf), func(i int) bool { return s.cdf[i] > u })
	if i == len(s.cdf) {
		i--
	}
	return s.scores[i]
}

func (m *CDF) substitute(rng *rand.Rand, pos, base int, o types.Orientation) byte {
	s := m.site(pos, o)
	u := rng.Float64()
	for k, c := range s.subs[base] {
		if u < c {
			return s.targets[base][k]
		}
	}
	return s.targets[base][2]
}

func (m *CDF) indelRates(pos int, o types.Orientation) (float64, float64) {
	s := m.site(pos, o)
	return s.ins, s.del
}
