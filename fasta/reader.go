// Package fasta streams reference genomes from FASTA files.
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/justapithecus/readsim/iox"
	"github.com/justapithecus/readsim/types"
)

// ErrStop may be returned by a Stream callback to end streaming early
// without error.
var ErrStop = errors.New("stop streaming")

// ParseError reports malformed FASTA input.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Stream calls fn for every record in the file at path. Sequences are
// upper-cased; records with empty sequence are skipped. The context is
// checked between records.
func Stream(ctx context.Context, path string, fn func(*types.Reference) error) error {
	rc, err := Open(path)
	if err != nil {
		return fmt.Errorf("open fasta: %w", err)
	}
	defer iox.DiscardClose(rc)

	if err := Parse(ctx, path, rc, fn); err != nil && !errors.Is(err, ErrStop) {
		return err
	}
	return nil
}

// ReadAll loads every record in the file at path.
func ReadAll(ctx context.Context, path string) ([]*types.Reference, error) {
	var refs []*types.Reference
	err := Stream(ctx, path, func(ref *types.Reference) error {
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// Parse reads FASTA records from r. name labels parse errors.
func Parse(ctx context.Context, name string, r io.Reader, fn func(*types.Reference) error) error {
	br := bufio.NewReader(r)

	var (
		cur    *types.Reference
		lineNo int
	)
	emit := func() error {
		if cur == nil || len(cur.Seq) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(cur)
	}

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read fasta: %w", err)
		}
		eof := err == io.EOF
		if len(line) > 0 {
			lineNo++
		}
		line = bytes.TrimRight(line, "\r\n")

		switch {
		case len(line) == 0:
		case line[0] == '>':
			if err := emit(); err != nil {
				return err
			}
			header := strings.TrimSpace(string(line[1:]))
			id, desc := header, ""
			if i := strings.IndexFunc(header, unicode.IsSpace); i >= 0 {
				id, desc = header[:i], header[i+1:]
			}
			if id == "" {
				return &ParseError{Path: name, Line: lineNo, Msg: "header without id"}
			}
			cur = &types.Reference{ID: id, Description: strings.TrimSpace(desc)}
		case line[0] == ';':
			// Legacy comment line.
		default:
			if cur == nil {
				return &ParseError{Path: name, Line: lineNo, Msg: "sequence before first header"}
			}
			cur.Seq = append(cur.Seq, bytes.ToUpper(bytes.TrimSpace(line))...)
		}

		if eof {
			break
		}
	}
	return emit()
}
