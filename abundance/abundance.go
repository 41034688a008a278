// Package abundance loads and generates per-genome relative abundances and
// converts them into coverage and read pair counts.
package abundance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/justapithecus/readsim/iox"
	"github.com/justapithecus/readsim/log"
)

// Table maps genome id to relative abundance.
type Table map[string]float64

// Entry is one row of a Table.
type Entry struct {
	ID        string  `json:"genome_id" yaml:"genome_id"`
	Abundance float64 `json:"abundance" yaml:"abundance"`
}

// ParseFile reads a whitespace-separated "genome_id abundance" file.
// Blank lines and lines starting with '#' are ignored. Malformed lines are
// logged as warnings and skipped. A missing, empty or unreadable file
// returns *InputFileError.
func ParseFile(path string, logger *log.Logger) (Table, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &InputFileError{Path: path, Reason: "cannot open", Err: err}
	}
	defer iox.DiscardClose(f)

	info, err := f.Stat()
	if err != nil {
		return nil, &InputFileError{Path: path, Reason: "cannot stat", Err: err}
	}
	if info.Size() == 0 {
		return nil, &InputFileError{Path: path, Reason: "file is empty"}
	}

	table, skipped, err := parse(path, f, func(recErr *RecordParseError) {
		logger.Warn("skipping abundance record", map[string]any{
			"path":   recErr.Path,
			"line":   recErr.Line,
			"reason": recErr.Reason,
		})
	})
	if err != nil {
		return nil, &InputFileError{Path: path, Reason: "read failed", Err: err}
	}

	logger.Info("loaded abundance file", map[string]any{
		"path":    path,
		"genomes": len(table),
		"skipped": skipped,
	})
	return table, nil
}

// Parse reads abundance records from r. Malformed records are passed to
// onSkip, which may be nil.
func Parse(r io.Reader, onSkip func(*RecordParseError)) (Table, error) {
	table, _, err := parse("<input>", r, onSkip)
	return table, err
}

func parse(path string, r io.Reader, onSkip func(*RecordParseError)) (Table, int, error) {
	table := Table{}
	skipped := 0
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		id, value, recErr := parseRecord(text)
		if recErr != nil {
			recErr.Path, recErr.Line, recErr.Text = path, lineNo, text
			skipped++
			if onSkip != nil {
				onSkip(recErr)
			}
			continue
		}
		table[id] = value
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, err
	}
	return table, skipped, nil
}

func parseRecord(text string) (string, float64, *RecordParseError) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", 0, &RecordParseError{Reason: "missing abundance column"}
	}
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", 0, &RecordParseError{Reason: "invalid abundance", Err: err}
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return "", 0, &RecordParseError{Reason: fmt.Sprintf("abundance %s out of range", fields[1])}
	}
	return fields[0], value, nil
}

// Sum returns the total abundance.
func (t Table) Sum() float64 {
	var sum float64
	for _, v := range t {
		sum += v
	}
	return sum
}

// Normalize returns a copy scaled to sum to 1.
func (t Table) Normalize() (Table, error) {
	sum := t.Sum()
	if sum <= 0 {
		return nil, errors.New("abundances sum to zero")
	}
	out := make(Table, len(t))
	for id, v := range t {
		out[id] = v / sum
	}
	return out, nil
}

// Sorted returns the entries ordered by genome id.
func (t Table) Sorted() []Entry {
	entries := make([]Entry, 0, len(t))
	for id, v := range t {
		entries = append(entries, Entry{ID: id, Abundance: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// Write stores the table in the same format ParseFile reads.
func (t Table) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range t.Sorted() {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", e.ID, strconv.FormatFloat(e.Abundance, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
