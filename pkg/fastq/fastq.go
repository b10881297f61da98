// Package fastq counts bases and reads of four-line FASTQ files.
package fastq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"SeqCoverage/pkg/seqio"
)

// ErrMalformedRecord is wrapped by *MalformedRecordError in strict mode.
var ErrMalformedRecord = errors.New("malformed FASTQ record")

// MalformedRecordError locates a record rejected by strict validation.
type MalformedRecordError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, ErrMalformedRecord, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// Options for one pass.
type Options struct {
	Reader seqio.Options
	// Strict checks the "+" separator and the quality length.
	Strict bool
}

// DefaultOptions accepts everything the four-line grouping accepts.
func DefaultOptions() Options {
	return Options{Reader: seqio.DefaultOptions()}
}

// Stats is the outcome of one read file.
type Stats struct {
	Path  string
	Bases int64
	Reads int64
}

// LineSource is a line stream that knows its position, such as *seqio.Reader.
type LineSource interface {
	seqio.Lines
	Line() int
}

// Count streams path once and returns its base and read totals.
func Count(ctx context.Context, path string, opts Options) (stats Stats, err error) {
	var r *seqio.Reader
	if r, err = seqio.Open(path, opts.Reader); err != nil {
		return Stats{}, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	slog.Info("ReadFq", "fq", path, "codec", r.Codec())
	if stats, err = CountLines(ctx, r, opts.Strict); err != nil {
		return Stats{}, err
	}
	stats.Path = path
	slog.Info("ReadFq done", "fq", path, "reads", stats.Reads, "bases", stats.Bases)
	return stats, nil
}

// CountLines groups lines by four: header, sequence, separator, quality. Only
// complete groups count; a trailing partial group adds neither bases nor a read.
func CountLines(ctx context.Context, src LineSource, strict bool) (Stats, error) {
	var (
		stats Stats
		seq   int
		plus  bool
		i     int
	)
	for {
		var line, err = src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Stats{}, err
		}

		switch i {
		case 1:
			seq = len(line)
		case 2:
			plus = len(line) > 0 && line[0] == '+'
		}
		if i < 3 {
			i++
			continue
		}
		i = 0

		if strict {
			if reason := validate(plus, seq, len(line)); reason != "" {
				return Stats{}, &MalformedRecordError{Path: pathOf(src), Line: src.Line(), Reason: reason}
			}
		}
		stats.Bases += int64(seq)
		stats.Reads++

		if stats.Reads&0xffff == 0 {
			if err := ctx.Err(); err != nil {
				return Stats{}, err
			}
		}
	}
	if i != 0 {
		slog.Warn("discard partial record", "fq", pathOf(src), "lines", i, "line", src.Line())
	}
	return stats, nil
}

func validate(plus bool, seqLen, qualLen int) string {
	if !plus {
		return "separator line does not start with '+'"
	}
	if seqLen != qualLen {
		return fmt.Sprintf("quality length %d differs from sequence length %d", qualLen, seqLen)
	}
	return ""
}

func pathOf(src LineSource) string {
	if p, ok := src.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}
