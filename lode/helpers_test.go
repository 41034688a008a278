package lode

import (
	"context"
	"errors"
	"io"

	"github.com/justapithecus/lode/lode"

	"github.com/justapithecus/readsim/types"
)

// toInt64 converts a value to int64 for test assertions on raw map fields.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// sharedFactory returns a StoreFactory that always returns the given store.
// This allows write and read datasets to share the same in-memory state.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

func testConfig() Config {
	return Config{
		Dataset: "readsim",
		Day:     "2026-10-18",
		RunID:   "run-001",
		Seed:    42,
		Policy:  "strict",
	}
}

func testPair(refID string, i int) *types.ReadPair {
	return &types.ReadPair{
		Index: i,
		Forward: types.Read{
			ID:     refID + "_" + string(rune('0'+i)) + "/1",
			Seq:    []byte("ACGTA"),
			Qual:   []byte{40, 40, 30, 20, 2},
			Origin: types.Origin{RefID: refID, Start: 10, End: 15, Strand: types.Plus, Orientation: types.Forward},
			Errors: types.ErrorCounts{Substitutions: 1},
		},
		Reverse: types.Read{
			ID:     refID + "_" + string(rune('0'+i)) + "/2",
			Seq:    []byte("TTGCA"),
			Qual:   []byte{35, 35, 35, 35, 35},
			Origin: types.Origin{RefID: refID, Start: 40, End: 45, Strand: types.Minus, Orientation: types.Reverse},
		},
		Fragment: types.Fragment{Start: 10, Length: 35, Strand: types.Plus},
	}
}

// FailingStore is a lode.Store that returns configurable errors.
type FailingStore struct {
	PutErr  error
	GetErr  error
	ListErr error

	PutCalls int
	PutPaths []string
}

func (s *FailingStore) Put(_ context.Context, path string, _ io.Reader) error {
	s.PutCalls++
	s.PutPaths = append(s.PutPaths, path)
	return s.PutErr
}

func (s *FailingStore) Get(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, s.GetErr
}

func (s *FailingStore) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (s *FailingStore) List(_ context.Context, _ string) ([]string, error) {
	return nil, s.ListErr
}

func (s *FailingStore) Delete(_ context.Context, _ string) error {
	return nil
}

func (s *FailingStore) ReadRange(_ context.Context, _ string, _, _ int64) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *FailingStore) ReaderAt(_ context.Context, _ string) (io.ReaderAt, error) {
	return nil, errors.New("not implemented")
}

var _ lode.Store = (*FailingStore)(nil)
