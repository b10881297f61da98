// Package seqio presents plain or compressed sequence files as a stream of lines.
//
// The codec is chosen from the leading magic bytes (gzip, zstd, lz4), never from
// the file name. Lines longer than Options.MaxLine are handled by the configured
// LinePolicy instead of being split into continuation lines.
package seqio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
)

const (
	// DefaultBufferSize amortizes syscalls on large genomic files.
	DefaultBufferSize = 16 * 1024 * 1024
	// DefaultMaxLine is the longest accepted line, terminator excluded.
	DefaultMaxLine = 65536

	minBufferSize = 4096
)

// LinePolicy decides what happens to a line longer than Options.MaxLine.
type LinePolicy int

const (
	// Reject fails the read with *LineTooLongError.
	Reject LinePolicy = iota
	// Truncate keeps the first MaxLine bytes and drops the rest of the line.
	Truncate
)

func (p LinePolicy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Truncate:
		return "truncate"
	default:
		return fmt.Sprintf("LinePolicy(%d)", int(p))
	}
}

// ParseLinePolicy accepts "reject" or "truncate", case-insensitively.
func ParseLinePolicy(s string) (LinePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return Reject, nil
	case "truncate":
		return Truncate, nil
	default:
		return Reject, fmt.Errorf("unknown line policy %q (want reject or truncate)", s)
	}
}

// Options tunes a Reader. MaxLine <= 0 disables the line cap.
type Options struct {
	BufferSize int
	MaxLine    int
	Policy     LinePolicy
}

// DefaultOptions mirrors the reference limits: 16 MiB buffer, 64 KiB lines, reject.
func DefaultOptions() Options {
	return Options{
		BufferSize: DefaultBufferSize,
		MaxLine:    DefaultMaxLine,
		Policy:     Reject,
	}
}

// Lines is the line source consumed by the counters.
type Lines interface {
	Next() ([]byte, error)
}

// Reader yields newline-delimited lines from a possibly compressed file.
type Reader struct {
	path   string
	codec  Codec
	src    *decoder
	br     *bufio.Reader
	opts   Options
	line   []byte
	lineNo int
	err    error

	truncated int
}

// Open opens path for line reading. The caller must Close the Reader.
func Open(path string, opts Options) (*Reader, error) {
	if opts.BufferSize < minBufferSize {
		if opts.BufferSize <= 0 {
			opts.BufferSize = DefaultBufferSize
		} else {
			opts.BufferSize = minBufferSize
		}
	}

	var src, codec, br, err = openDecoder(path, opts.BufferSize)
	if err != nil {
		return nil, err
	}
	if br == nil {
		br = bufio.NewReaderSize(src, opts.BufferSize)
	}
	if codec == Plain && HasCompressedSuffix(path) {
		slog.Debug("compressed suffix on plain input", "path", path)
	}
	slog.Debug("open", "path", path, "codec", codec)

	return &Reader{
		path:  path,
		codec: codec,
		src:   src,
		br:    br,
		opts:  opts,
	}, nil
}

// Path returns the path given to Open.
func (r *Reader) Path() string { return r.path }

// Codec returns the detected compression.
func (r *Reader) Codec() Codec { return r.codec }

// Line returns the 1-based number of the last line returned by Next.
func (r *Reader) Line() int { return r.lineNo }

// Truncated returns how many lines were cut under the Truncate policy.
func (r *Reader) Truncated() int { return r.truncated }

// Next returns the next line without its "\n" or "\r\n" terminator. A last line
// lacking a newline is still returned. At end of input it returns io.EOF. The
// returned slice is only valid until the following call.
func (r *Reader) Next() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	var (
		total   int // bytes consumed, terminator included
		keep    = r.keepLimit()
		newline bool
		cr      bool
		last    byte
	)
	r.line = r.line[:0]
	for {
		var frag, err = r.br.ReadSlice('\n')
		if n := len(frag); n > 0 {
			total += n
			newline = frag[n-1] == '\n'
			if newline {
				if n > 1 {
					cr = frag[n-2] == '\r'
				} else {
					cr = last == '\r'
				}
			}
			last = frag[n-1]
			if room := keep - len(r.line); room > 0 {
				r.line = append(r.line, frag[:min(room, n)]...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if total == 0 {
				r.err = io.EOF
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			r.err = &IOError{Path: r.path, Op: "read", Err: err}
			return nil, r.err
		}
		break
	}
	r.lineNo++

	var size = total
	if newline {
		size--
		if cr {
			size--
		}
	}
	if r.opts.MaxLine > 0 && size > r.opts.MaxLine {
		if r.opts.Policy == Reject {
			r.err = &LineTooLongError{Path: r.path, Line: r.lineNo, Length: size, Max: r.opts.MaxLine}
			return nil, r.err
		}
		r.truncated++
		if r.truncated == 1 {
			slog.Warn("line truncated", "path", r.path, "line", r.lineNo, "length", size, "max", r.opts.MaxLine)
		}
		return r.line[:r.opts.MaxLine], nil
	}
	return r.line[:size], nil
}

// keepLimit is the number of bytes worth buffering for one line: the cap plus a
// "\r\n" terminator.
func (r *Reader) keepLimit() int {
	if r.opts.MaxLine <= 0 {
		return math.MaxInt
	}
	return r.opts.MaxLine + 2
}

// Close releases the decoder and the file handle.
func (r *Reader) Close() error {
	if r.truncated > 1 {
		slog.Warn("lines truncated", "path", r.path, "count", r.truncated, "max", r.opts.MaxLine)
	}
	if err := r.src.Close(); err != nil {
		return &IOError{Path: r.path, Op: "close", Err: err}
	}
	return nil
}

// Each opens path, calls fn for every line and closes the file on all paths.
func Each(path string, opts Options, fn func(line []byte) error) (err error) {
	var r *Reader
	if r, err = Open(path, opts); err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for {
		var line, nerr = r.Next()
		if errors.Is(nerr, io.EOF) {
			return nil
		}
		if nerr != nil {
			return nerr
		}
		if err = fn(line); err != nil {
			return err
		}
	}
}
