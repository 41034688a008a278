// Package fastq writes paired reads as R1/R2 FASTQ files.
package fastq

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"code.cloudfoundry.org/bytefmt"
	"github.com/klauspost/pgzip"

	"github.com/justapithecus/readsim/iox"
	"github.com/justapithecus/readsim/log"
	"github.com/justapithecus/readsim/policy"
	"github.com/justapithecus/readsim/types"
)

// PhredOffset is added to each quality score when encoding.
const PhredOffset = 33

// ErrClosed is returned by WritePairs after Close.
var ErrClosed = errors.New("fastq writer closed")

// Options configures a Writer.
type Options struct {
	// Compress writes gzip members with pgzip and adds a .gz suffix.
	Compress bool
	// Logger receives a summary line on Close. Nil disables logging.
	Logger *log.Logger
}

// Paths returns the R1 and R2 file names for a prefix.
func Paths(prefix string, compress bool) (r1, r2 string) {
	ext := ".fastq"
	if compress {
		ext += ".gz"
	}
	return prefix + "_R1" + ext, prefix + "_R2" + ext
}

// mate is one output file with its buffering stack.
type mate struct {
	path    string
	file    *os.File
	gz      *pgzip.Writer
	counter *iox.CountingWriter
	buf     *bufio.Writer
}

func openMate(path string, compress bool) (*mate, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	m := &mate{path: path, file: f, counter: &iox.CountingWriter{W: f}}
	var w io.Writer = m.counter
	if compress {
		gz, err := pgzip.NewWriterLevel(m.counter, pgzip.BestCompression)
		if err != nil {
			iox.DiscardClose(f)
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		m.gz = gz
		w = gz
	}
	m.buf = bufio.NewWriterSize(w, 1<<20)
	return m, nil
}

func (m *mate) close() error {
	var errs []error
	errs = append(errs, m.buf.Flush())
	if m.gz != nil {
		errs = append(errs, m.gz.Close())
	}
	errs = append(errs, m.file.Close())
	return errors.Join(errs...)
}

// Writer writes forward reads to R1 and reverse reads to R2.
// It implements policy.Sink and is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	r1, r2 *mate
	logger *log.Logger
	pairs  int64
	closed bool
	line   []byte
}

// NewWriter creates the R1/R2 files for prefix. Existing files are truncated.
func NewWriter(prefix string, opts Options) (*Writer, error) {
	p1, p2 := Paths(prefix, opts.Compress)
	r1, err := openMate(p1, opts.Compress)
	if err != nil {
		return nil, err
	}
	r2, err := openMate(p2, opts.Compress)
	if err != nil {
		iox.DiscardErr(r1.close)
		return nil, err
	}
	return &Writer{r1: r1, r2: r2, logger: opts.Logger}, nil
}

// WritePairs appends each pair to both files, preserving batch order.
func (w *Writer) WritePairs(ctx context.Context, pairs []*types.ReadPair) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.line = AppendRecord(w.line[:0], &p.Forward)
		if _, err := w.r1.buf.Write(w.line); err != nil {
			return fmt.Errorf("write %s: %w", w.r1.path, err)
		}
		w.line = AppendRecord(w.line[:0], &p.Reverse)
		if _, err := w.r2.buf.Write(w.line); err != nil {
			return fmt.Errorf("write %s: %w", w.r2.path, err)
		}
		w.pairs++
	}
	return nil
}

// Close flushes and closes both files. Close is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	err := errors.Join(w.r1.close(), w.r2.close())
	if w.logger != nil {
		w.logger.Info("fastq output closed", map[string]any{
			"r1":    w.r1.path,
			"r2":    w.r2.path,
			"pairs": w.pairs,
			"size":  bytefmt.ByteSize(uint64(w.r1.counter.N + w.r2.counter.N)),
		})
	}
	return err
}

// Paths returns the R1 and R2 file paths.
func (w *Writer) Paths() (r1, r2 string) {
	return w.r1.path, w.r2.path
}

// Pairs returns the number of pairs written.
func (w *Writer) Pairs() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pairs
}

// AppendRecord appends the four-line FASTQ record for r to dst.
func AppendRecord(dst []byte, r *types.Read) []byte {
	dst = append(dst, '@')
	dst = append(dst, r.ID...)
	dst = append(dst, '\n')
	dst = append(dst, r.Seq...)
	dst = append(dst, "\n+\n"...)
	for _, q := range r.Qual {
		dst = append(dst, encodeQual(q))
	}
	return append(dst, '\n')
}

func encodeQual(q byte) byte {
	if q > 93 {
		q = 93
	}
	return q + PhredOffset
}

var _ policy.Sink = (*Writer)(nil)
