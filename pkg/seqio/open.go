package seqio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
)

// Codec is the compression detected on an input.
type Codec int

const (
	Plain Codec = iota
	Gzip
	Zstd
	LZ4
)

var codecNames = [...]string{"plain", "gzip", "zstd", "lz4"}

func (c Codec) String() string {
	if c < 0 || int(c) >= len(codecNames) {
		return fmt.Sprintf("Codec(%d)", int(c))
	}
	return codecNames[c]
}

// magic numbers
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Sniff reports the codec whose magic number prefixes head.
func Sniff(head []byte) Codec {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return Gzip
	case bytes.HasPrefix(head, magicZstd):
		return Zstd
	case bytes.HasPrefix(head, magicLZ4):
		return LZ4
	default:
		return Plain
	}
}

// decoder wraps the decompressed stream together with everything that has to be
// released when the input is closed, innermost first.
type decoder struct {
	io.Reader
	closers []func() error
}

func (d *decoder) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openDecoder opens path and selects a decoder from the leading bytes. The
// returned bufio.Reader is non-nil only for plain input, where it doubles as the
// line buffer.
func openDecoder(path string, bufferSize int) (*decoder, Codec, *bufio.Reader, error) {
	var fh, err = os.Open(path)
	if err != nil {
		return nil, Plain, nil, &IOError{Path: path, Op: "open", Err: unwrapPathError(err)}
	}

	var (
		raw           = bufio.NewReaderSize(fh, bufferSize)
		head, peekErr = raw.Peek(len(magicZstd))
	)
	if peekErr != nil && !errors.Is(peekErr, io.EOF) {
		_ = fh.Close()
		return nil, Plain, nil, &IOError{Path: path, Op: "read", Err: peekErr}
	}
	var codec = Sniff(head)

	var d = &decoder{closers: []func() error{fh.Close}}
	switch codec {
	case Gzip:
		var gr, err = gzip.NewReader(raw)
		if err != nil {
			_ = fh.Close()
			return nil, codec, nil, &IOError{Path: path, Op: "decompress", Err: err}
		}
		d.Reader = gr
		d.closers = append([]func() error{gr.Close}, d.closers...)
	case Zstd:
		var zr, err = zstd.NewReader(raw)
		if err != nil {
			_ = fh.Close()
			return nil, codec, nil, &IOError{Path: path, Op: "decompress", Err: err}
		}
		d.Reader = zr
		d.closers = append([]func() error{func() error { zr.Close(); return nil }}, d.closers...)
	case LZ4:
		d.Reader = lz4.NewReader(raw)
	default:
		d.Reader = raw
		return d, codec, raw, nil
	}
	return d, codec, nil, nil
}

// unwrapPathError keeps the OS text only; the path is carried by IOError.
func unwrapPathError(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// HasCompressedSuffix is used only for log hints: detection is content based.
func HasCompressedSuffix(path string) bool {
	for _, s := range []string{".gz", ".bgz", ".zst", ".lz4"} {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}
