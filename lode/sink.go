// Package lode persists ground-truth read records and run metrics to a Lode
// dataset.
//
// Records are JSONL, Hive-partitioned by genome/day/run_id/record_kind, on
// the local filesystem or S3.
package lode

import (
	"context"
	"sync"
	"time"

	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "readsim"

// DeriveDay computes the partition day from run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds Lode sink configuration.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Day is the partition key derived from run start time (YYYY-MM-DD UTC).
	Day string
	// RunID is the partition key for run identifier.
	RunID string
	// Seed is recorded on every read record.
	Seed int64
	// Policy is the output policy name, recorded on metrics records.
	Policy string
}

// Client abstracts the Lode storage client.
type Client interface {
	// WritePairs writes one record per mate. Must preserve batch order.
	WritePairs(ctx context.Context, pairs []*types.ReadPair) error

	// WriteMetrics writes the run-level metrics record.
	WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error

	// Close releases client resources.
	Close() error
}

// Sink is a Lode-backed implementation of policy.Sink.
type Sink struct {
	client Client
}

// NewSink creates a new Lode sink.
func NewSink(client Client) *Sink {
	return &Sink{client: client}
}

// WritePairs implements policy.Sink.
func (s *Sink) WritePairs(ctx context.Context, pairs []*types.ReadPair) error {
	return s.client.WritePairs(ctx, pairs)
}

// Close implements policy.Sink.
func (s *Sink) Close() error {
	return s.client.Close()
}

var _ policy.Sink = (*Sink)(nil)

// StubClient is a test client that accepts writes without persisting.
type StubClient struct {
	mu      sync.Mutex
	Batches [][]*types.ReadPair
	Metrics []metrics.Snapshot
	Closed  bool
}

// NewStubClient creates a new stub client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// WritePairs implements Client.
func (c *StubClient) WritePairs(_ context.Context, pairs []*types.ReadPair) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Batches = append(c.Batches, pairs)
	return nil
}

// WriteMetrics implements Client.
func (c *StubClient) WriteMetrics(_ context.Context, snap metrics.Snapshot, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Metrics = append(c.Metrics, snap)
	return nil
}

// Close implements Client.
func (c *StubClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

var _ Client = (*StubClient)(nil)
