package runtime

import (
	"context"
	"sync"

	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/generator"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

// pairBuffer bounds how far a worker may run ahead of the committer.
const pairBuffer = 256

// genomeJob carries one genome's pairs from its worker to the committer.
// The worker sends its terminal error on errc before closing pairs.
type genomeJob struct {
	entry PlanEntry
	ref   *types.Reference
	pairs chan types.ReadPair
	errc  chan error
}

func (j *genomeJob) finish(err error) {
	j.errc <- err
	close(j.pairs)
}

// genomeTally is what the committer recorded for one genome.
type genomeTally struct {
	pairs  int64
	bases  int64
	errors types.ErrorCounts
}

// pool generates genomes concurrently and commits their pairs to the
// policy strictly in plan order, so output is independent of Parallel.
type pool struct {
	parallel     int
	seed         int64
	model        errmodel.Model
	policy       policy.Policy
	collector    *metrics.Collector
	logger       *log.Logger
	strictLength bool

	skipped   []string
	truncated []string
}

// run processes every job. It returns the first failure, classified.
func (p *pool) run(ctx context.Context, jobs []*genomeJob) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Go(func() { p.dispatch(ctx, &wg, jobs) })

	err := p.commitAll(ctx, jobs)
	cancel()
	wg.Wait()
	return err
}

// dispatch starts workers in job order, at most parallel at a time.
// Jobs never started are finished with the context error.
func (p *pool) dispatch(ctx context.Context, wg *sync.WaitGroup, jobs []*genomeJob) {
	sem := make(chan struct{}, max(p.parallel, 1))
	for i, job := range jobs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			for _, rest := range jobs[i:] {
				rest.finish(ctx.Err())
			}
			return
		}
		wg.Go(func() {
			defer func() { <-sem }()
			p.work(ctx, job)
		})
	}
}

func (p *pool) work(ctx context.Context, job *genomeJob) {
	rng := generator.NewRand(p.seed, job.ref.ID)
	for pair, err := range generator.Reads(job.ref, job.entry.Pairs, p.model, rng) {
		if err != nil {
			job.finish(err)
			return
		}
		select {
		case job.pairs <- pair:
		case <-ctx.Done():
			job.finish(ctx.Err())
			return
		}
	}
	job.finish(nil)
}

func (p *pool) commitAll(ctx context.Context, jobs []*genomeJob) error {
	for _, job := range jobs {
		if err := p.commit(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

// commit drains one genome into the policy and flushes it.
func (p *pool) commit(ctx context.Context, job *genomeJob) error {
	genome := job.ref.ID
	logger := p.logger.WithGenome(genome)

	var tally genomeTally
	for pair := range job.pairs {
		if err := ctx.Err(); err != nil {
			return generationError(genome, err)
		}
		if err := p.policy.IngestPair(ctx, &pair); err != nil {
			return policyError(genome, err)
		}
		tally.pairs++
		tally.bases += int64(pair.Bases())
		tally.errors = tally.errors.Add(pair.Forward.Errors).Add(pair.Reverse.Errors)
	}

	if err := <-job.errc; err != nil {
		if !IsInsufficientLength(err) || p.strictLength {
			return generationError(genome, err)
		}
		if tally.pairs == 0 {
			p.collector.IncGenomeSkipped()
			p.skipped = append(p.skipped, genome)
			logger.Warn("skipping genome too short for its fragments", map[string]any{
				"length": job.ref.Len(),
				"error":  err.Error(),
			})
			return nil
		}
		// Pairs already ingested are valid reads; keep them and stop.
		p.truncated = append(p.truncated, genome)
		logger.Warn("genome truncated by fragment longer than reference", map[string]any{
			"length":  job.ref.Len(),
			"pairs":   tally.pairs,
			"planned": job.entry.Pairs,
			"error":   err.Error(),
		})
	}

	if err := p.policy.Flush(ctx); err != nil {
		return policyError(genome, err)
	}

	p.collector.IncGenomeSimulated()
	p.collector.AddPairs(genome, tally.pairs, tally.bases)
	p.collector.AddErrors(
		int64(tally.errors.Substitutions),
		int64(tally.errors.Insertions),
		int64(tally.errors.Deletions),
	)
	logger.Info("genome simulated", map[string]any{
		"pairs":    tally.pairs,
		"bases":    tally.bases,
		"errors":   tally.errors.Total(),
		"coverage": job.entry.Coverage,
	})
	return nil
}

func newJobs(in *Inputs, plan *Plan) []*genomeJob {
	refs := make(map[string]*types.Reference, len(in.Genomes))
	for _, g := range in.Genomes {
		refs[g.ID] = g
	}
	jobs := make([]*genomeJob, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		jobs = append(jobs, &genomeJob{
			entry: e,
			ref:   refs[e.Genome],
			pairs: make(chan types.ReadPair, pairBuffer),
			errc:  make(chan error, 1),
		})
	}
	return jobs
}
