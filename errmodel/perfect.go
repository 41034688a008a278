package errmodel

import (
	"fmt"
	"math/rand/v2"

	"github.com/justapithecus/readsim/types"
)

// PerfectQuality is the score assigned to every base by the perfect model.
const PerfectQuality = 40

// Perfect emits the input unchanged with a flat quality. It consumes no
// entropy.
type Perfect struct {
	readLength int
	insert     InsertSize
}

// NewPerfect builds a perfect model with basic-model defaults.
func NewPerfect(opts Options) (*Perfect, error) {
	m := &Perfect{
		readLength: DefaultReadLength,
		insert:     InsertSize{Mean: DefaultInsertMean, StdDev: DefaultInsertSD},
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
	if err := validateParams(KindPerfect, m.readLength, m.insert, 0, 0); err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns "perfect".
func (m *Perfect) Name() string { return KindPerfect }

// ReadLength returns the configured read length.
func (m *Perfect) ReadLength() int { return m.readLength }

// InsertSize returns the configured insert size distribution.
func (m *Perfect) InsertSize() InsertSize { return m.insert }

// IntroduceErrors copies the first ReadLength bases of seq.
func (m *Perfect) IntroduceErrors(_ *rand.Rand, seq []byte, o types.Orientation) (Mutation, error) {
	if !o.Valid() {
		return Mutation{}, fmt.Errorf("invalid orientation %d", int(o))
	}
	n := min(m.readLength, len(seq))
	mut := Mutation{
		Seq:      make([]byte, n),
		Qual:     make([]byte, n),
		Consumed: n,
	}
	copy(mut.Seq, seq[:n])
	for i := range mut.Qual {
		mut.Qual[i] = PerfectQuality
	}
	return mut, nil
}

// MeanQuality returns PerfectQuality.
func (m *Perfect) MeanQuality(int, types.Orientation) float64 { return PerfectQuality }
