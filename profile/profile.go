package profile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/pgzip"

	"github.com/justapithecus/readsim/iox"
	"github.com/justapithecus/readsim/types"
)

// Format is the header format discriminator.
const Format = "readsim-profile"

// Extension is the file extension used for named lookup.
const Extension = ".rsp"

// Bases is the order of substitution weight vectors.
const Bases = "ACGT"

// ErrNotFound is returned by Resolve when no artifact matches a name.
var ErrNotFound = errors.New("profile not found")

var gzipMagic = []byte{0x1f, 0x8b}

// Header is the first frame of an artifact.
type Header struct {
	Format     string  `msgpack:"format"`
	Version    int     `msgpack:"version"`
	Name       string  `msgpack:"name"`
	ReadLength int     `msgpack:"read_length"`
	InsertMean float64 `msgpack:"insert_mean"`
	InsertSD   float64 `msgpack:"insert_sd"`
}

// Position holds the distributions for one read position.
type Position struct {
	// Scores are the Phred scores that can be drawn, ascending.
	Scores []uint8 `msgpack:"scores"`
	// CDF is cumulative probability aligned with Scores, ending at 1.
	CDF []float64 `msgpack:"cdf"`
	// Substitutions maps a reference base to weights over ACGT.
	// The weight of the base itself is ignored.
	Substitutions map[string][]float64 `msgpack:"substitutions"`
	// Insertion is the per-position insertion rate.
	Insertion float64 `msgpack:"insertion"`
	// Deletion is the per-position deletion rate.
	Deletion float64 `msgpack:"deletion"`
}

// Table is the per-orientation body of an artifact.
type Table struct {
	Orientation types.Orientation `msgpack:"orientation"`
	Positions   []Position        `msgpack:"positions"`
}

// Profile is a decoded artifact.
type Profile struct {
	Header  Header
	Forward Table
	Reverse Table
}

// Table returns the table for an orientation.
func (p *Profile) Table(o types.Orientation) *Table {
	if o == types.Reverse {
		return &p.Reverse
	}
	return &p.Forward
}

// Decode reads an uncompressed artifact stream.
func Decode(r io.Reader) (*Profile, error) {
	dec := NewFrameDecoder(r)

	var p Profile
	if err := dec.Decode("header", &p.Header); err != nil {
		return nil, err
	}
	if p.Header.Format != Format {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unexpected format %q, want %q", p.Header.Format, Format),
		}
	}
	if p.Header.Version != types.ProfileFormatVersion {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("unsupported version %d, want %d", p.Header.Version, types.ProfileFormatVersion),
		}
	}

	if err := dec.Decode("forward table", &p.Forward); err != nil {
		return nil, err
	}
	if err := dec.Decode("reverse table", &p.Reverse); err != nil {
		return nil, err
	}
	if p.Forward.Orientation != types.Forward || p.Reverse.Orientation != types.Reverse {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg: fmt.Sprintf("table orientations %d/%d, want %d/%d",
				p.Forward.Orientation, p.Reverse.Orientation, types.Forward, types.Reverse),
		}
	}

	if _, err := dec.ReadFrame(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "unexpected trailing frame"}
	}

	return &p, nil
}

// Encode writes p as an uncompressed artifact stream.
// Header format and version are filled in.
func Encode(w io.Writer, p *Profile) error {
	h := p.Header
	h.Format = Format
	h.Version = types.ProfileFormatVersion

	fwd := p.Forward
	fwd.Orientation = types.Forward
	rev := p.Reverse
	rev.Orientation = types.Reverse

	enc := NewFrameEncoder(w)
	for _, v := range []any{&h, &fwd, &rev} {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// Open loads an artifact from path. Gzip input is detected by magic bytes
// and streamed through pgzip; plain files are memory-mapped read-only.
func Open(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer iox.DiscardClose(f)

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat profile: %w", err)
	}
	if info.Size() == 0 {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "empty profile", Err: io.ErrUnexpectedEOF}
	}

	var magic [2]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	if n == len(magic) && bytes.Equal(magic[:], gzipMagic) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind profile: %w", err)
		}
		zr, err := pgzip.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("gzip profile: %w", err)
		}
		defer iox.DiscardClose(zr)
		return Decode(zr)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap profile: %w", err)
	}
	defer iox.DiscardErr(m.Unmap)
	return Decode(bytes.NewReader(m))
}

// Write stores p at path, gzip-compressed when compress is set.
func Write(path string, p *Profile, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close profile: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if compress {
		zw, zerr := pgzip.NewWriterLevel(bw, pgzip.BestCompression)
		if zerr != nil {
			return fmt.Errorf("gzip profile: %w", zerr)
		}
		if err := Encode(zw, p); err != nil {
			iox.DiscardClose(zw)
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("gzip profile: %w", err)
		}
	} else if err := Encode(bw, p); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush profile: %w", err)
	}
	return nil
}

// Resolve maps a profile name to a file. A name that is an existing file
// resolves to itself; otherwise each dir is searched for <name>.rsp and
// <name>.rsp.gz in order.
func Resolve(name string, dirs []string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}
	if isFile(name) {
		return name, nil
	}

	base := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), Extension)
	for _, dir := range dirs {
		for _, candidate := range []string{base + Extension, base + Extension + ".gz"} {
			path := filepath.Join(dir, candidate)
			if isFile(path) {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q (searched %d directories)", ErrNotFound, name, len(dirs))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
