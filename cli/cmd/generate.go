package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/readsim/cli/config"
	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/fastq"
	"github.com/justapithecus/readsim/iox"
	"github.com/justapithecus/readsim/lode"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/runtime"
	"github.com/justapithecus/readsim/types"
)

// GenerateCommand returns the generate command.
// This is the only command that writes reads.
func GenerateCommand() *cli.Command {
	flags := []cli.Flag{
		ConfigFlag,
		// Run identity
		&cli.StringFlag{
			Name:  "run-id",
			Usage: "Run ID (a UUID is generated when unset)",
		},
		&cli.IntFlag{
			Name:  "attempt",
			Usage: "Attempt number (starts at 1)",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "parent-run-id",
			Usage: "Parent run ID (required for attempt > 1)",
		},
		// Output
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output prefix for <prefix>_R1.fastq and <prefix>_R2.fastq",
			Value:   "reads",
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "Write gzip-compressed FASTQ",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Generate and count reads without writing them",
		},
		// Execution
		&cli.IntFlag{
			Name:    "parallel",
			Aliases: []string{"p"},
			Usage:   "Genomes generated concurrently",
			Value:   1,
		},
		&cli.BoolFlag{
			Name:  "strict-length",
			Usage: "Fail the run on genomes shorter than the read length instead of skipping them",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a JSON run report to this path (- for stderr)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Suppress the result summary",
		},
	}
	flags = append(flags, inputFlags()...)
	flags = append(flags, modelFlags()...)
	flags = append(flags, policyFlags()...)
	flags = append(flags, storageFlags()...)
	flags = append(flags, adapterFlags()...)

	return &cli.Command{
		Name:   "generate",
		Usage:  "Simulate paired-end reads from reference genomes",
		Flags:  flags,
		Action: generateAction,
	}
}

// generateChoice is the fully resolved generate configuration.
type generateChoice struct {
	runMeta      *types.RunMeta
	seedGiven    bool
	inputs       runtime.InputConfig
	totalReads   int
	coverage     float64
	model        string
	modelOpts    errmodel.Options
	output       string
	compress     bool
	dryRun       bool
	parallel     int
	strictLength bool
	logLevel     string
	report       string
	policy       policyChoice
	storage      storageChoice
	adapter      adapterChoice
}

func resolveGenerate(c *cli.Context, cfg *config.Config) (*generateChoice, error) {
	seed, ok := resolveSeed(c, cfg)
	if !ok {
		seed = rand.Int64()
	}

	runMeta := &types.RunMeta{
		RunID:   c.String("run-id"),
		Seed:    seed,
		Attempt: c.Int("attempt"),
	}
	if runMeta.RunID == "" {
		runMeta.RunID = uuid.NewString()
	}
	if parent := c.String("parent-run-id"); parent != "" {
		runMeta.ParentRunID = &parent
	}
	if err := runMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run identity: %w", err)
	}

	kind, modelOpts := resolveModel(c, cfg)
	adapterCfg, err := resolveAdapter(c, cfg)
	if err != nil {
		return nil, err
	}

	g := &generateChoice{
		runMeta:      runMeta,
		seedGiven:    ok,
		inputs:       resolveInputs(c, cfg, seed),
		totalReads:   resolveInt(c, "n-reads", configVal(cfg, func(c *config.Config) int { return c.Reads })),
		coverage:     resolveFloat64(c, "coverage", configVal(cfg, func(c *config.Config) float64 { return c.Coverage })),
		model:        kind,
		modelOpts:    modelOpts,
		output:       resolveString(c, "output", configVal(cfg, func(c *config.Config) string { return c.Output })),
		compress:     resolveBool(c, "compress", configVal(cfg, func(c *config.Config) bool { return c.Compress })),
		dryRun:       c.Bool("dry-run"),
		parallel:     resolveInt(c, "parallel", configVal(cfg, func(c *config.Config) int { return c.Parallel })),
		strictLength: resolveBool(c, "strict-length", configVal(cfg, func(c *config.Config) bool { return c.StrictLength })),
		logLevel:     resolveString(c, "log-level", configVal(cfg, func(c *config.Config) string { return c.LogLevel })),
		report:       c.String("report"),
		policy:       resolvePolicy(c, cfg),
		storage:      resolveStorage(c, cfg),
		adapter:      adapterCfg,
	}
	if g.dryRun {
		g.policy = policyChoice{name: policyNoop}
	}
	return g, g.validate()
}

func (g *generateChoice) validate() error {
	if g.inputs.GenomePath == "" {
		return fmt.Errorf("--genomes is required (or set genomes: in the config file)")
	}
	if g.totalReads < 0 {
		return fmt.Errorf("--n-reads must be >= 0, got %d", g.totalReads)
	}
	if g.coverage < 0 {
		return fmt.Errorf("--coverage must be >= 0, got %g", g.coverage)
	}
	if g.parallel < 1 {
		return fmt.Errorf("--parallel must be >= 1, got %d", g.parallel)
	}
	if !g.dryRun && g.output == "" {
		return fmt.Errorf("--output is required")
	}
	if _, err := log.ParseLevel(g.logLevel); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	return g.storage.validate()
}

func generateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	g, err := resolveGenerate(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeError)
	}

	warnings, err := validatePolicyConfig(g.policy)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid policy config: %v", err), runtime.ExitCodeError)
	}

	level, _ := log.ParseLevel(g.logLevel)
	logger := log.NewLogger(g.runMeta).WithOutput(c.App.ErrWriter).WithLevel(level)
	defer iox.DiscardErr(logger.Sync)
	for _, w := range warnings {
		logger.Sugar().Warnf("%s", w)
	}
	if !g.seedGiven {
		logger.Sugar().Infof("no seed given, using %d", g.runMeta.Seed)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start time is "now"; used to derive the partition day.
	startTime := time.Now()
	out, err := openOutputs(ctx, g, startTime, logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open outputs: %v", err), runtime.ExitCodeError)
	}

	collector := metrics.NewCollector(g.policy.name, g.model, g.storage.backendName(), g.runMeta.RunID)

	var sink policy.Sink = policy.NewMultiSink(out.sinks(collector)...)
	pol, err := buildPolicy(g.policy, sink, logger)
	if err != nil {
		iox.DiscardClose(sink)
		return cli.Exit(fmt.Sprintf("failed to create policy: %v", err), runtime.ExitCodeError)
	}

	notifier, err := buildAdapter(g.adapter)
	if err != nil {
		iox.DiscardClose(pol)
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), runtime.ExitCodeError)
	}
	if notifier != nil {
		defer iox.DiscardClose(notifier)
	}

	runCfg := &runtime.Config{
		RunMeta:       g.runMeta,
		GenomePath:    g.inputs.GenomePath,
		AbundancePath: g.inputs.AbundancePath,
		Distribution:  g.inputs.Distribution,
		TotalReads:    g.totalReads,
		Coverage:      g.coverage,
		Model:         g.model,
		ModelOptions:  g.modelOpts,
		Parallel:      g.parallel,
		StrictLength:  g.strictLength,
		Policy:        pol,
		Collector:     collector,
		Adapter:       notifier,
		Day:           lode.DeriveDay(startTime),
		Outputs:       out.paths(),
		Logger:        logger,
	}
	if out.client != nil {
		runCfg.MetricsWriter = out.client
		runCfg.FileWriter = out.client
		runCfg.StoragePath = g.storage.path
	}

	orchestrator, err := runtime.NewOrchestrator(runCfg)
	if err != nil {
		iox.DiscardClose(pol)
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	result, runErr := orchestrator.Execute(ctx)
	exitCode := runtime.ExitCodeFor(result.Outcome.Status)

	if g.report != "" {
		report := runtime.BuildRunReport(result, collector.Snapshot(), g.policy.name, exitCode)
		if err := runtime.WriteRunReport(report, g.report); err != nil {
			logger.Warn("failed to write run report", map[string]any{
				"path":  g.report,
				"error": err.Error(),
			})
		}
	}

	if !c.Bool("quiet") {
		printRunResult(c.App.Writer, result, g, out.paths())
	}

	if runErr != nil {
		if hint := retryHint(g.runMeta, runErr); hint != "" {
			logger.Sugar().Warnf("%s", hint)
		}
		return cli.Exit(fmt.Sprintf("run failed: %v", runErr), exitCode)
	}
	return nil
}

// retryHint suggests a lineage-linked rerun when the failure was a
// transient storage error.
func retryHint(meta *types.RunMeta, err error) string {
	if !lode.Retryable(err) {
		return ""
	}
	return fmt.Sprintf("storage failure looks transient; rerun with --seed %d --attempt %d --parent-run-id %s",
		meta.Seed, meta.Attempt+1, meta.RunID)
}

// outputs are the sinks a run writes to.
type outputs struct {
	fastq  *fastq.Writer
	client *lode.LodeClient
}

// openOutputs opens the FASTQ writer and, when configured, the dataset.
func openOutputs(ctx context.Context, g *generateChoice, startTime time.Time, logger *log.Logger) (*outputs, error) {
	out := &outputs{}
	if g.dryRun {
		return out, nil
	}

	if dir := filepath.Dir(g.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	w, err := fastq.NewWriter(g.output, fastq.Options{Compress: g.compress, Logger: logger})
	if err != nil {
		return nil, err
	}
	out.fastq = w

	if !g.storage.enabled() {
		return out, nil
	}
	if g.storage.backend != "s3" {
		if err := os.MkdirAll(g.storage.path, 0o755); err != nil {
			iox.DiscardClose(w)
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	client, err := buildLodeClient(ctx, g.storage, lode.Config{
		Dataset: g.storage.dataset,
		Day:     lode.DeriveDay(startTime),
		RunID:   g.runMeta.RunID,
		Seed:    g.runMeta.Seed,
		Policy:  g.policy.name,
	})
	if err != nil {
		iox.DiscardClose(w)
		return nil, err
	}
	out.client = client
	return out, nil
}

// sinks returns the open sinks in write order: FASTQ first, then the
// dataset.
func (o *outputs) sinks(collector *metrics.Collector) []policy.Sink {
	var sinks []policy.Sink
	if o.fastq != nil {
		sinks = append(sinks, o.fastq)
	}
	if o.client != nil {
		sinks = append(sinks, lode.NewInstrumentedSink(lode.NewSink(o.client), collector))
	}
	return sinks
}

func (o *outputs) paths() []string {
	if o.fastq == nil {
		return nil
	}
	r1, r2 := o.fastq.Paths()
	return []string{r1, r2}
}

func printRunResult(w io.Writer, result *runtime.RunResult, g *generateChoice, paths []string) {
	fmt.Fprintf(w, "\nrun_id=%s, attempt=%d, seed=%d, outcome=%s, duration=%s\n",
		result.RunMeta.RunID,
		result.RunMeta.Attempt,
		result.RunMeta.Seed,
		result.Outcome.Status,
		result.Duration.Round(time.Millisecond),
	)

	switch g.policy.name {
	case policyBuffered:
		fmt.Fprintf(w, "policy=%s, buffer_pairs=%d, buffer_bytes=%d\n",
			g.policy.name, g.policy.bufferPairs, g.policy.bufferBytes)
	case policyStreaming:
		fmt.Fprintf(w, "policy=%s, flush_count=%d, flush_interval=%s\n",
			g.policy.name, g.policy.flushCount, g.policy.flushInterval)
	default:
		fmt.Fprintf(w, "policy=%s\n", g.policy.name)
	}

	fmt.Fprintf(w, "\n=== Run Result ===\n")
	fmt.Fprintf(w, "Run ID:       %s\n", result.RunMeta.RunID)
	if result.RunMeta.ParentRunID != nil {
		fmt.Fprintf(w, "Parent Run:   %s\n", *result.RunMeta.ParentRunID)
	}
	fmt.Fprintf(w, "Outcome:      %s\n", result.Outcome.Status)
	if result.Outcome.Message != "" {
		fmt.Fprintf(w, "Message:      %s\n", result.Outcome.Message)
	}
	if result.Outcome.Genome != "" {
		fmt.Fprintf(w, "Genome:       %s\n", result.Outcome.Genome)
	}
	fmt.Fprintf(w, "Model:        %s\n", result.Model)
	if result.Plan != nil {
		fmt.Fprintf(w, "Genomes:      %d\n", len(result.Plan.Entries)-len(result.Skipped))
	}
	for _, id := range result.Skipped {
		fmt.Fprintf(w, "Skipped:      %s\n", id)
	}
	for _, id := range result.Truncated {
		fmt.Fprintf(w, "Truncated:    %s\n", id)
	}
	for _, p := range paths {
		fmt.Fprintf(w, "Output:       %s\n", p)
	}
	if g.storage.enabled() {
		fmt.Fprintf(w, "Dataset:      %s (%s)\n", g.storage.path, g.storage.backendName())
	}

	fmt.Fprintf(w, "\n=== Policy Stats ===\n")
	fmt.Fprintf(w, "Pairs Total:     %d\n", result.PolicyStats.TotalPairs)
	fmt.Fprintf(w, "Pairs Persisted: %d\n", result.PolicyStats.PairsPersisted)
	fmt.Fprintf(w, "Bases Persisted: %d\n", result.PolicyStats.BasesPersisted)
	fmt.Fprintf(w, "Flushes:         %d\n", result.PolicyStats.FlushCount)
	if result.PolicyStats.Errors > 0 {
		fmt.Fprintf(w, "Errors:          %d\n", result.PolicyStats.Errors)
	}
}
