package abundance

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abundance.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	path := writeFile(t, "genomeA\t0.3\ngenomeB\t0.7\n")
	got, err := ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	want := Table{"genomeA": 0.3, "genomeB": 0.7}
	if len(got) != len(want) {
		t.Fatalf("ParseFile() = %v, want %v", got, want)
	}
	for id, v := range want {
		if got[id] != v {
			t.Errorf("%s = %g, want %g", id, got[id], v)
		}
	}
}

func TestParseFile_SkipsMalformedLines(t *testing.T) {
	path := writeFile(t, strings.Join([]string{
		"# generated by hand",
		"genomeA 0.3",
		"",
		"lonely",
		"genomeB  0.5  extra-column",
		"genomeC notanumber",
		"genomeD -1",
		"genomeE 0.2",
	}, "\n"))

	var buf bytes.Buffer
	logger := log.NewLogger(&types.RunMeta{RunID: "run-1", Attempt: 1}).WithOutput(&buf)

	got, err := ParseFile(path, logger)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(got) != 3 || got["genomeA"] != 0.3 || got["genomeB"] != 0.5 || got["genomeE"] != 0.2 {
		t.Errorf("ParseFile() = %v", got)
	}

	logs := buf.String()
	if n := strings.Count(logs, "skipping abundance record"); n != 3 {
		t.Errorf("logged %d skip warnings, want 3:\n%s", n, logs)
	}
	if !strings.Contains(logs, `"level":"warn"`) {
		t.Errorf("skip warnings not logged at warn level:\n%s", logs)
	}
}

func TestParseFile_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   func(t *testing.T) string
		wantIs error
	}{
		{
			name:   "missing",
			path:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.txt") },
			wantIs: os.ErrNotExist,
		},
		{
			name: "empty",
			path: func(t *testing.T) string { return writeFile(t, "") },
		},
		{
			name: "directory",
			path: func(t *testing.T) string { return t.TempDir() },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(tt.path(t), nil)
			var inErr *InputFileError
			if !errors.As(err, &inErr) {
				t.Fatalf("ParseFile() error = %v, want *InputFileError", err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("ParseFile() error = %v, want wrapping %v", err, tt.wantIs)
			}
		})
	}
}

func TestParse_ReportsRecordErrors(t *testing.T) {
	var skipped []*RecordParseError
	got, err := Parse(strings.NewReader("a 1\nb\nc x\n"), func(e *RecordParseError) {
		skipped = append(skipped, e)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("Parse() = %v, want one record", got)
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped %d records, want 2", len(skipped))
	}
	if skipped[0].Line != 2 || skipped[0].Text != "b" {
		t.Errorf("first skip = %+v", skipped[0])
	}
	if skipped[1].Err == nil {
		t.Error("invalid float should carry the parse error")
	}
}

func TestTable_NormalizeAndSorted(t *testing.T) {
	tbl := Table{"z": 2, "a": 6, "m": 2}
	norm, err := tbl.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(norm.Sum()-1) > 1e-12 {
		t.Errorf("Sum() = %g, want 1", norm.Sum())
	}
	if norm["a"] != 0.6 {
		t.Errorf("a = %g, want 0.6", norm["a"])
	}
	if tbl["a"] != 6 {
		t.Error("Normalize modified the receiver")
	}

	sorted := norm.Sorted()
	ids := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	if strings.Join(ids, ",") != "a,m,z" {
		t.Errorf("Sorted() ids = %v", ids)
	}

	if _, err := (Table{"a": 0}).Normalize(); err == nil {
		t.Error("Normalize() of all-zero table error = nil, want error")
	}
}

func TestTable_WriteParses(t *testing.T) {
	var buf bytes.Buffer
	if err := (Table{"g2": 0.25, "g1": 0.75}).Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "g1\t0.75\ng2\t0.25\n" {
		t.Errorf("Write() = %q", buf.String())
	}
}
