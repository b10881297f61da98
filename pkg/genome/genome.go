// Package genome measures the length of a reference genome in FASTA or GenBank
// format. All records of a file are summed into one total.
package genome

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"SeqCoverage/pkg/seqio"
)

// ErrUnknownFormat means the leading content is neither FASTA nor GenBank.
var ErrUnknownFormat = errors.New("could not determine format (expected FASTA or GenBank)")

// Format is fixed by the first meaningful line of a file.
type Format int

const (
	Undetected Format = iota
	// SequenceRecord is FASTA: ">" headers followed by sequence lines.
	SequenceRecord
	// AnnotatedFlat is GenBank: LOCUS header, sequence between ORIGIN and "//".
	AnnotatedFlat
)

func (f Format) String() string {
	switch f {
	case Undetected:
		return "undetected"
	case SequenceRecord:
		return "FASTA"
	case AnnotatedFlat:
		return "GenBank"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Section tracks the ORIGIN .. "//" span of an AnnotatedFlat file.
type Section int

const (
	OutOfSequence Section = iota
	InSequence
)

// markers
var (
	tokenLocus  = []byte("LOCUS")
	tokenOrigin = []byte("ORIGIN")
	tokenEnd    = []byte("//")
)

// Counter is the line-by-line state machine behind Measure. The zero value is
// ready to use.
type Counter struct {
	format  Format
	section Section
	bases   int64
	records int64
}

// Format returns the detected format, Undetected before the first meaningful line.
func (c *Counter) Format() Format { return c.format }

// Section is only meaningful for AnnotatedFlat.
func (c *Counter) Section() Section { return c.section }

// Bases returns the letters counted so far.
func (c *Counter) Bases() int64 { return c.bases }

// Records counts FASTA headers or GenBank LOCUS lines seen so far.
func (c *Counter) Records() int64 { return c.records }

// Feed consumes one line, terminator already stripped.
func (c *Counter) Feed(line []byte) error {
	var p = trimIndent(line)

	switch c.format {
	case Undetected:
		return c.detect(p)
	case SequenceRecord:
		if len(p) > 0 && (p[0] == '>' || p[0] == ';') {
			if p[0] == '>' {
				c.records++
			}
			return nil
		}
		c.bases += countLetters(p)
	case AnnotatedFlat:
		switch {
		case bytes.HasPrefix(p, tokenOrigin):
			c.section = InSequence
		case bytes.HasPrefix(p, tokenEnd):
			c.section = OutOfSequence
		case c.section == InSequence:
			c.bases += countLetters(skipPosition(p))
		case bytes.HasPrefix(p, tokenLocus):
			c.records++
		}
	}
	return nil
}

// detect runs until the first line that is neither blank nor a ';' / '#' comment.
func (c *Counter) detect(p []byte) error {
	if len(p) == 0 || p[0] == ';' || p[0] == '#' {
		return nil
	}
	switch {
	case p[0] == '>':
		c.format = SequenceRecord
	case bytes.HasPrefix(p, tokenLocus):
		c.format = AnnotatedFlat
	default:
		return ErrUnknownFormat
	}
	c.records++
	return nil
}

// Finish reports the total, or ErrUnknownFormat if nothing was detected.
func (c *Counter) Finish() (int64, error) {
	if c.format == Undetected {
		return 0, ErrUnknownFormat
	}
	return c.bases, nil
}

// Stats is the result of one genome pass.
type Stats struct {
	Path    string
	Format  Format
	Length  int64
	Records int64
}

// Measure streams path once and returns its letter count. A zero Length is not
// an error here; callers decide whether an empty genome is fatal.
func Measure(ctx context.Context, path string, opts seqio.Options) (Stats, error) {
	var (
		counter Counter
		n       int
	)
	var err = seqio.Each(path, opts, func(line []byte) error {
		if n++; n&0xffff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return counter.Feed(line)
	})
	if err == nil {
		_, err = counter.Finish()
	}
	if err != nil {
		if errors.Is(err, ErrUnknownFormat) {
			return Stats{}, fmt.Errorf("%s: %w", path, err)
		}
		return Stats{}, err
	}

	var stats = Stats{
		Path:    path,
		Format:  counter.Format(),
		Length:  counter.Bases(),
		Records: counter.Records(),
	}
	slog.Debug("genome", "path", path, "format", stats.Format, "records", stats.Records, "length", stats.Length)
	return stats, nil
}

// Length is Measure without the context and metadata.
func Length(path string, opts seqio.Options) (int64, error) {
	var stats, err = Measure(context.Background(), path, opts)
	return stats.Length, err
}

func trimIndent(p []byte) []byte {
	var i = 0
	for i < len(p) && (p[i] == ' ' || p[i] == '\t') {
		i++
	}
	return p[i:]
}

// skipPosition drops the leading base number and the spaces after it.
func skipPosition(p []byte) []byte {
	var i = 0
	for i < len(p) && p[i] >= '0' && p[i] <= '9' {
		i++
	}
	for i < len(p) && p[i] == ' ' {
		i++
	}
	return p[i:]
}

func countLetters(p []byte) int64 {
	var n int64
	for _, b := range p {
		if ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') {
			n++
		}
	}
	return n
}
