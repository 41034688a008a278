package fastq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

// Record is one decoded FASTQ entry. Qual holds raw Phred scores.
type Record struct {
	ID   string
	Seq  []byte
	Qual []byte
}

// ReadFile decodes every record in a FASTQ file, gunzipping when the file
// starts with the gzip magic.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return Read(r)
}

// Read decodes four-line FASTQ records from r.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	var (
		out   []Record
		lines [4][]byte
		n     int
		line  int
	)
	for sc.Scan() {
		line++
		lines[n] = bytes.Clone(sc.Bytes())
		n++
		if n < 4 {
			continue
		}
		n = 0
		rec, err := decode(lines)
		if err != nil {
			return nil, fmt.Errorf("record ending at line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if n != 0 {
		return nil, fmt.Errorf("truncated record at line %d", line)
	}
	return out, nil
}

func decode(lines [4][]byte) (Record, error) {
	if len(lines[0]) == 0 || lines[0][0] != '@' {
		return Record{}, fmt.Errorf("header must start with '@'")
	}
	if len(lines[2]) == 0 || lines[2][0] != '+' {
		return Record{}, fmt.Errorf("separator must start with '+'")
	}
	if len(lines[1]) != len(lines[3]) {
		return Record{}, fmt.Errorf("sequence length %d != quality length %d", len(lines[1]), len(lines[3]))
	}
	qual := lines[3]
	for i, c := range qual {
		if c < PhredOffset {
			return Record{}, fmt.Errorf("quality byte %q below offset", c)
		}
		qual[i] = c - PhredOffset
	}
	return Record{ID: string(lines[0][1:]), Seq: lines[1], Qual: qual}, nil
}
