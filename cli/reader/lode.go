package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/readsim/errmodel"
	readsimlode "github.com/justapithecus/readsim/lode"
	"github.com/justapithecus/readsim/types"
)

// LodeReader reads run metrics from a Lode dataset.
type LodeReader struct {
	ds lode.Dataset
}

// NewLodeReader creates a reader over ds. A nil dataset still serves
// InspectModel; StatsRun then fails.
func NewLodeReader(ds lode.Dataset) *LodeReader {
	return &LodeReader{ds: ds}
}

var _ Reader = (*LodeReader)(nil)

// InspectModel implements Reader.
func (r *LodeReader) InspectModel(kind string, opts errmodel.Options) (*ModelView, error) {
	return inspectModel(kind, opts)
}

// StatsRun implements Reader.
func (r *LodeReader) StatsRun(ctx context.Context, runID, day string) (*MetricsSnapshot, error) {
	if r.ds == nil {
		return nil, errors.New("no dataset configured")
	}
	record, err := readsimlode.QueryLatestMetrics(ctx, r.ds, runID, day)
	if err != nil {
		return nil, err
	}
	return ParseMetricsRecord(record)
}

// TruthReads implements Reader.
func (r *LodeReader) TruthReads(ctx context.Context, runID, genome string, limit int) ([]TruthRead, error) {
	if r.ds == nil {
		return nil, errors.New("no dataset configured")
	}
	records, err := readsimlode.QueryReads(ctx, r.ds, runID, genome)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]TruthRead, 0, len(records))
	for _, rec := range records {
		tr, err := ParseReadRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *tr)
	}
	return out, nil
}

func inspectModel(kind string, opts errmodel.Options) (*ModelView, error) {
	model, err := errmodel.New(kind, opts)
	if err != nil {
		return nil, err
	}
	summary, err := errmodel.Summarize(model)
	if err != nil {
		return nil, fmt.Errorf("summarize model: %w", err)
	}
	return &ModelView{
		Name:               summary.Name,
		ReadLength:         summary.ReadLength,
		InsertMean:         summary.Insert.Mean,
		InsertSD:           summary.Insert.StdDev,
		MeanQualityForward: summary.MeanQuality(types.Forward),
		MeanQualityReverse: summary.MeanQuality(types.Reverse),
		ExpectedSubsFwd:    summary.ExpectedSubstitutions(types.Forward),
		ExpectedSubsRev:    summary.ExpectedSubstitutions(types.Reverse),
		QualityForward:     summary.Quality(types.Forward),
		QualityReverse:     summary.Quality(types.Reverse),
	}, nil
}
