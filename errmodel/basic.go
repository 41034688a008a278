package errmodel

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/justapithecus/readsim/types"
)

// Basic model defaults.
const (
	DefaultReadLength = 125
	DefaultInsertMean = 200
	DefaultInsertSD   = 20

	minBasicQuality = 2
	maxBasicQuality = 41
)

type qualityRamp struct {
	start, end float64
	sd         float64
}

var (
	forwardRamp = qualityRamp{start: 34, end: 28, sd: 3}
	reverseRamp = qualityRamp{start: 32, end: 24, sd: 4}
)

// Basic is an analytic model: mean quality falls linearly along the read,
// substitutions are uniform over the three other bases.
type Basic struct {
	readLength    int
	insert        InsertSize
	insertionRate float64
	deletionRate  float64
}

// NewBasic builds a basic model, filling defaults for zero options.
func NewBasic(opts Options) (*Basic, error) {
	m := &Basic{
		readLength:    DefaultReadLength,
		insert:        InsertSize{Mean: DefaultInsertMean, StdDev: DefaultInsertSD},
		insertionRate: opts.InsertionRate,
		deletionRate:  opts.DeletionRate,
	}
	if opts.ReadLength != 0 {
		m.readLength = opts.ReadLength
	}
	if opts.InsertMean != 0 {
		m.insert.Mean = opts.InsertMean
	}
	if opts.InsertSD != 0 {
		m.insert.StdDev = opts.InsertSD
	}
	if err := validateParams(KindBasic, m.readLength, m.insert, m.insertionRate, m.deletionRate); err != nil {
		return nil, err
	}
	return m, nil
}

func validateParams(name string, readLength int, insert InsertSize, ins, del float64) error {
	switch {
	case readLength <= 0:
		return &ModelLoadError{Name: name, Reason: fmt.Sprintf("read length must be > 0, got %d", readLength)}
	case insert.Mean <= 0:
		return &ModelLoadError{Name: name, Reason: fmt.Sprintf("insert size mean must be > 0, got %g", insert.Mean)}
	case insert.StdDev < 0:
		return &ModelLoadError{Name: name, Reason: fmt.Sprintf("insert size sd must be >= 0, got %g", insert.StdDev)}
	case ins < 0 || ins >= 1:
		return &ModelLoadError{Name: name, Reason: fmt.Sprintf("insertion rate must be in [0, 1), got %g", ins)}
	case del < 0 || del >= 1:
		return &ModelLoadError{Name: name, Reason: fmt.Sprintf("deletion rate must be in [0, 1), got %g", del)}
	}
	return nil
}

// Name returns "basic".
func (m *Basic) Name() string { return KindBasic }

// ReadLength returns the configured read length.
func (m *Basic) ReadLength() int { return m.readLength }

// InsertSize returns the configured insert size distribution.
func (m *Basic) InsertSize() InsertSize { return m.insert }

// IntroduceErrors emits one read with basic-model errors.
func (m *Basic) IntroduceErrors(rng *rand.Rand, seq []byte, o types.Orientation) (Mutation, error) {
	return introduce(rng, m, m.readLength, seq, o)
}

// MeanQuality returns the unclamped mean quality at a read position.
func (m *Basic) MeanQuality(pos int, o types.Orientation) float64 {
	r := rampFor(o)
	if m.readLength <= 1 {
		return r.start
	}
	return r.start + (r.end-r.start)*float64(pos)/float64(m.readLength-1)
}

func rampFor(o types.Orientation) qualityRamp {
	if o == types.Reverse {
		return reverseRamp
	}
	return forwardRamp
}

func (m *Basic) quality(rng *rand.Rand, pos int, o types.Orientation) uint8 {
	q := math.Round(m.MeanQuality(pos, o) + rng.NormFloat64()*rampFor(o).sd)
	return uint8(min(max(q, minBasicQuality), maxBasicQuality))
}

func (m *Basic) substitute(rng *rand.Rand, _, base int, _ types.Orientation) byte {
	n := rng.IntN(3)
	if n >= base {
		n++
	}
	return acgt[n]
}

func (m *Basic) indelRates(int, types.Orientation) (float64, float64) {
	return m.insertionRate, m.deletionRate
}
