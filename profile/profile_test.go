package profile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/justapithecus/readsim/types"
)

func sampleProfile() *Profile {
	pos := Position{
		Scores: []uint8{20, 30, 40},
		CDF:    []float64{0.1, 0.4, 1.0},
		Substitutions: map[string][]float64{
			"A": {0, 1, 1, 1},
			"C": {1, 0, 1, 1},
			"G": {1, 1, 0, 1},
			"T": {1, 1, 1, 0},
		},
		Insertion: 0.001,
		Deletion:  0.002,
	}
	return &Profile{
		Header:  Header{Name: "tiny", ReadLength: 2, InsertMean: 300, InsertSD: 20},
		Forward: Table{Positions: []Position{pos, pos}},
		Reverse: Table{Positions: []Position{pos, pos}},
	}
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tiny.rsp")
			if err := Write(path, sampleProfile(), compress); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if got := bytes.HasPrefix(raw, gzipMagic); got != compress {
				t.Errorf("gzip magic present = %v, want %v", got, compress)
			}

			p, err := Open(path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if p.Header.Format != Format {
				t.Errorf("Format = %q, want %q", p.Header.Format, Format)
			}
			if p.Header.Version != types.ProfileFormatVersion {
				t.Errorf("Version = %d, want %d", p.Header.Version, types.ProfileFormatVersion)
			}
			if p.Header.Name != "tiny" || p.Header.ReadLength != 2 {
				t.Errorf("Header = %+v", p.Header)
			}
			if p.Forward.Orientation != types.Forward || p.Reverse.Orientation != types.Reverse {
				t.Errorf("orientations = %d/%d", p.Forward.Orientation, p.Reverse.Orientation)
			}
			if len(p.Table(types.Reverse).Positions) != 2 {
				t.Fatalf("reverse positions = %d, want 2", len(p.Reverse.Positions))
			}
			got := p.Forward.Positions[1]
			if got.Deletion != 0.002 || got.CDF[2] != 1.0 || got.Substitutions["G"][3] != 1 {
				t.Errorf("position = %+v", got)
			}
		})
	}
}

func TestDecode_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleProfile()); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	data := buf.Bytes()

	_, err := Decode(bytes.NewReader(data[:len(data)-3]))
	if !IsFrameError(err, FrameErrorPartial) {
		t.Errorf("Decode(truncated) error = %v, want partial frame error", err)
	}
}

func TestDecode_MissingTables(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFrameEncoder(&buf).Encode(&Header{Format: Format, Version: types.ProfileFormatVersion}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_, err := Decode(&buf)
	if !IsFrameError(err, FrameErrorPartial) {
		t.Fatalf("Decode() error = %v, want partial frame error", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Decode() error = %v, want wrapping io.ErrUnexpectedEOF", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], MaxPayloadSize+1)
	_, err := Decode(bytes.NewReader(prefix[:]))
	if !IsFrameError(err, FrameErrorTooLarge) {
		t.Errorf("Decode() error = %v, want too-large frame error", err)
	}
}

func TestDecode_WrongFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFrameEncoder(&buf).Encode(&Header{Format: "something-else", Version: 1}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_, err := Decode(&buf)
	if !IsFrameError(err, FrameErrorDecode) {
		t.Errorf("Decode() error = %v, want decode frame error", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	var buf bytes.Buffer
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], 3)
	buf.Write(prefix[:])
	buf.Write([]byte{0xc1, 0xc1, 0xc1})
	_, err := Decode(&buf)
	if !IsFrameError(err, FrameErrorDecode) {
		t.Errorf("Decode() error = %v, want decode frame error", err)
	}
}

func TestDecode_TrailingFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleProfile()); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := NewFrameEncoder(&buf).Encode(map[string]int{"extra": 1}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := Decode(&buf); !IsFrameError(err, FrameErrorDecode) {
		t.Errorf("Decode() error = %v, want decode frame error", err)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.rsp")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !IsFrameError(err, FrameErrorPartial) {
		t.Errorf("Open(empty) error = %v, want partial frame error", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.rsp"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestResolve(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	if err := Write(filepath.Join(dirB, "novaseq.rsp.gz"), sampleProfile(), true); err != nil {
		t.Fatal(err)
	}
	direct := filepath.Join(dirA, "custom.bin")
	if err := Write(direct, sampleProfile(), false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: direct, want: direct},
		{name: "novaseq", want: filepath.Join(dirB, "novaseq.rsp.gz")},
		{name: "novaseq.rsp", want: filepath.Join(dirB, "novaseq.rsp.gz")},
		{name: "miseq", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.name, []string{dirA, dirB})
		if tt.wantErr {
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Resolve(%q) error = %v, want ErrNotFound", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Resolve(%q) error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
