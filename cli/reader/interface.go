package reader

import (
	"context"

	"github.com/justapithecus/readsim/errmodel"
)

// Reader abstracts read-only data access for CLI commands.
// Implementations may read a Lode dataset or return stub data.
type Reader interface {
	// InspectModel builds a model and summarizes its quality profile.
	InspectModel(kind string, opts errmodel.Options) (*ModelView, error)

	// StatsRun returns the latest metrics record of a run. Empty runID
	// selects the most recent run; empty day matches any day.
	StatsRun(ctx context.Context, runID, day string) (*MetricsSnapshot, error)

	// TruthReads returns up to limit read records of a run in write order,
	// optionally for one genome. A limit <= 0 returns every record.
	TruthReads(ctx context.Context, runID, genome string, limit int) ([]TruthRead, error)
}
