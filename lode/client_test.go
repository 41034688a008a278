package lode

import (
	"errors"
	"testing"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/readsim/metrics"
	"github.com/justapithecus/readsim/types"
)

func TestLodeClient_WritePairsAndQueryReads(t *testing.T) {
	store := lode.NewMemory()
	factory := sharedFactory(store)
	cfg := testConfig()

	client, err := NewLodeClientWithFactory(cfg, factory)
	if err != nil {
		t.Fatalf("NewLodeClientWithFactory failed: %v", err)
	}

	if err := client.WritePairs(t.Context(), []*types.ReadPair{testPair("chrA", 0), testPair("chrA", 1)}); err != nil {
		t.Fatalf("WritePairs failed: %v", err)
	}
	if err := client.WritePairs(t.Context(), []*types.ReadPair{testPair("chrB", 0)}); err != nil {
		t.Fatalf("WritePairs failed: %v", err)
	}

	ds, err := NewReadDataset(cfg.Dataset, factory)
	if err != nil {
		t.Fatalf("NewReadDataset failed: %v", err)
	}

	all, err := QueryReads(t.Context(), ds, cfg.RunID, "")
	if err != nil {
		t.Fatalf("QueryReads failed: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("QueryReads returned %d records, want 6", len(all))
	}

	first := all[0]
	if toString(first["read_id"]) != "chrA_0/1" {
		t.Errorf("read_id = %v, want chrA_0/1", first["read_id"])
	}
	if toString(first["qual"]) != "II?5#" {
		t.Errorf("qual = %v, want II?5#", first["qual"])
	}
	if toString(first["strand"]) != "+" || toString(first["orientation"]) != "forward" {
		t.Errorf("strand/orientation = %v/%v", first["strand"], first["orientation"])
	}
	if toInt64(first["start"]) != 10 || toInt64(first["end"]) != 15 {
		t.Errorf("coordinates = [%v, %v), want [10, 15)", first["start"], first["end"])
	}
	if toInt64(first["substitutions"]) != 1 || toInt64(first["seed"]) != 42 {
		t.Errorf("substitutions/seed = %v/%v", first["substitutions"], first["seed"])
	}
	if toInt64(all[1]["mate"]) != 2 {
		t.Errorf("second record mate = %v, want 2", all[1]["mate"])
	}

	onlyB, err := QueryReads(t.Context(), ds, cfg.RunID, "chrB")
	if err != nil {
		t.Fatalf("QueryReads(chrB) failed: %v", err)
	}
	if len(onlyB) != 2 {
		t.Errorf("QueryReads(chrB) returned %d records, want 2", len(onlyB))
	}

	none, err := QueryReads(t.Context(), ds, "run-other", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("QueryReads(other run) returned %d records, want 0", len(none))
	}
}

func TestLodeClient_WritePairsEmptyBatch(t *testing.T) {
	store := &FailingStore{PutErr: errors.New("should not be called")}
	client, err := NewLodeClientWithFactory(testConfig(), sharedFactory(store))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.WritePairs(t.Context(), nil); err != nil {
		t.Errorf("empty batch error = %v", err)
	}
	if store.PutCalls != 0 {
		t.Errorf("PutCalls = %d, want 0", store.PutCalls)
	}
}

func TestLodeClient_WriteFailureIsClassified(t *testing.T) {
	store := &FailingStore{PutErr: errors.New("write /data: no space left on device")}
	client, err := NewLodeClientWithFactory(testConfig(), sharedFactory(store))
	if err != nil {
		t.Fatal(err)
	}

	err = client.WritePairs(t.Context(), []*types.ReadPair{testPair("chrA", 0)})
	if err == nil {
		t.Fatal("expected write error")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %T: %v", err, err)
	}
	if storageErr.Op != OpWriteReads {
		t.Errorf("Op = %q, want %q", storageErr.Op, OpWriteReads)
	}
	if !errors.Is(err, ErrDiskFull) {
		t.Errorf("expected ErrDiskFull, got kind %v", storageErr.Kind)
	}
}

func TestLodeClient_DefaultDataset(t *testing.T) {
	cfg := testConfig()
	cfg.Dataset = ""
	client, err := NewLodeClientWithFactory(cfg, lode.NewMemoryFactory())
	if err != nil {
		t.Fatal(err)
	}
	if client.config.Dataset != DefaultDataset {
		t.Errorf("Dataset = %q, want %q", client.config.Dataset, DefaultDataset)
	}
}

func TestLodeClient_PutFile(t *testing.T) {
	store := lode.NewMemory()
	client, err := NewLodeClientWithFactory(testConfig(), sharedFactory(store))
	if err != nil {
		t.Fatal(err)
	}

	if err := client.PutFile(t.Context(), "abundance.tsv", "text/tab-separated-values", []byte("g\t1\n")); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}

	want := "datasets/readsim/partitions/day=2026-10-18/run_id=run-001/files/abundance.tsv"
	ok, err := store.Exists(t.Context(), want)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Errorf("expected sidecar at %s", want)
	}
}

func TestLodeClient_PutFileRejectsBadNames(t *testing.T) {
	client, err := NewLodeClientWithFactory(testConfig(), lode.NewMemoryFactory())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "a/b", "..", `a\b`} {
		if err := client.PutFile(t.Context(), name, "", nil); err == nil {
			t.Errorf("PutFile(%q) expected error", name)
		}
	}
}

func TestLodeClient_PutFileStoreInitFailure(t *testing.T) {
	initErr := errors.New("permission denied")
	client := newClient(nil, testConfig(), func() (lode.Store, error) { return nil, initErr })

	err := client.PutFile(t.Context(), "manifest.json", "application/json", []byte("{}"))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("PutFile error = %v, want ErrPermissionDenied", err)
	}
}

func TestQueryLatestMetrics_WriteAndRead(t *testing.T) {
	store := lode.NewMemory()
	factory := sharedFactory(store)
	cfg := testConfig()

	client, err := NewLodeClientWithFactory(cfg, factory)
	if err != nil {
		t.Fatal(err)
	}

	snap := metrics.Snapshot{
		RunsStarted:      1,
		RunsCompleted:    1,
		GenomesSimulated: 2,
		PairsGenerated:   500,
		PairsPersisted:   500,
		PairsByGenome:    map[string]int64{"chrA": 300, "chrB": 200},
		FlushTriggers:    map[string]int64{"count": 5},
		Policy:           "streaming",
		Model:            "basic",
		StorageBackend:   "fs",
		RunID:            cfg.RunID,
	}
	completedAt := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)
	if err := client.WriteMetrics(t.Context(), snap, completedAt); err != nil {
		t.Fatalf("WriteMetrics failed: %v", err)
	}

	ds, err := NewReadDataset(cfg.Dataset, factory)
	if err != nil {
		t.Fatal(err)
	}
	record, err := QueryLatestMetrics(t.Context(), ds, cfg.RunID, "")
	if err != nil {
		t.Fatalf("QueryLatestMetrics failed: %v", err)
	}

	if v := toInt64(record["pairs_generated_total"]); v != 500 {
		t.Errorf("pairs_generated_total = %d, want 500", v)
	}
	if v := toInt64(record["genomes_simulated_total"]); v != 2 {
		t.Errorf("genomes_simulated_total = %d, want 2", v)
	}
	if v := toString(record["policy"]); v != "streaming" {
		t.Errorf("policy = %q, want streaming", v)
	}
	if v := toString(record["model"]); v != "basic" {
		t.Errorf("model = %q, want basic", v)
	}
	if v := toString(record["ts"]); v != "2026-10-18T15:00:00Z" {
		t.Errorf("ts = %q", v)
	}
	if record["pairs_by_genome"] == nil {
		t.Error("pairs_by_genome should be present")
	}
}

func TestQueryLatestMetrics_LatestWinsAndFilters(t *testing.T) {
	store := lode.NewMemory()
	factory := sharedFactory(store)

	for i, runID := range []string{"run-1", "run-10", "run-1"} {
		cfg := testConfig()
		cfg.RunID = runID
		client, err := NewLodeClientWithFactory(cfg, factory)
		if err != nil {
			t.Fatal(err)
		}
		snap := metrics.Snapshot{PairsGenerated: int64(i + 1), RunID: runID}
		if err := client.WriteMetrics(t.Context(), snap, time.Now()); err != nil {
			t.Fatal(err)
		}
	}

	ds, err := NewReadDataset("readsim", factory)
	if err != nil {
		t.Fatal(err)
	}

	record, err := QueryLatestMetrics(t.Context(), ds, "run-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if v := toInt64(record["pairs_generated_total"]); v != 3 {
		t.Errorf("latest run-1 pairs_generated_total = %d, want 3", v)
	}

	record, err = QueryLatestMetrics(t.Context(), ds, "run-10", "")
	if err != nil {
		t.Fatal(err)
	}
	if v := toInt64(record["pairs_generated_total"]); v != 2 {
		t.Errorf("run-10 pairs_generated_total = %d, want 2", v)
	}
}

func TestQueryLatestMetrics_NoneFound(t *testing.T) {
	store := lode.NewMemory()
	factory := sharedFactory(store)

	client, err := NewLodeClientWithFactory(testConfig(), factory)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.WritePairs(t.Context(), []*types.ReadPair{testPair("chrA", 0)}); err != nil {
		t.Fatal(err)
	}

	ds, err := NewReadDataset("readsim", factory)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := QueryLatestMetrics(t.Context(), ds, "", ""); !errors.Is(err, ErrNoMetricsFound) {
		t.Errorf("error = %v, want ErrNoMetricsFound", err)
	}
}

func TestNewReadDatasetFS(t *testing.T) {
	ds, err := NewReadDatasetFS("readsim", t.TempDir())
	if err != nil {
		t.Fatalf("NewReadDatasetFS failed: %v", err)
	}
	if ds.ID() != "readsim" {
		t.Errorf("Dataset ID = %q, want %q", ds.ID(), "readsim")
	}
}
