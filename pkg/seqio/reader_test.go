package seqio

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SeqCoverage/internal/fixture"
)

func readAll(t *testing.T, path string, opts Options) ([]string, *Reader) {
	t.Helper()
	var r, err = Open(path, opts)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close()) }()

	var lines []string
	for {
		var line, err = r.Next()
		if errors.Is(err, io.EOF) {
			return lines, r
		}
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
}

func TestOpenDetectsCodec(t *testing.T) {
	var (
		dir     = t.TempDir()
		content = ">chr1\nACGT\nacgt\n"
		want    = map[string]Codec{
			fixture.Plain: Plain,
			fixture.Gzip:  Gzip,
			fixture.Zstd:  Zstd,
			fixture.LZ4:   LZ4,
		}
	)
	for _, codec := range fixture.Codecs {
		t.Run(codec, func(t *testing.T) {
			var path = fixture.Write(t, dir, "ref."+codec, codec, content)
			var lines, r = readAll(t, path, DefaultOptions())
			assert.Equal(t, want[codec], r.Codec())
			assert.Equal(t, []string{">chr1", "ACGT", "acgt"}, lines)
			assert.Equal(t, 3, r.Line())
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "missing.fa")
	var _, err = Open(path, DefaultOptions())
	require.Error(t, err)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, path, ioErr.Path)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "no such file")
}

func TestNextTerminators(t *testing.T) {
	var path = fixture.WritePlain(t, "crlf.txt", "a\r\nbb\n\nccc")
	var lines, _ = readAll(t, path, DefaultOptions())
	assert.Equal(t, []string{"a", "bb", "", "ccc"}, lines)
}

func TestNextEmptyFile(t *testing.T) {
	var path = fixture.WritePlain(t, "empty.txt", "")
	var lines, _ = readAll(t, path, DefaultOptions())
	assert.Empty(t, lines)
}

func TestNextLongLineAcrossBuffer(t *testing.T) {
	var long = strings.Repeat("A", 3*minBufferSize+7)
	var path = fixture.WritePlain(t, "long.txt", long+"\r\nC\n")
	var lines, _ = readAll(t, path, Options{BufferSize: minBufferSize, MaxLine: 0})
	require.Len(t, lines, 2)
	assert.Equal(t, long, lines[0])
	assert.Equal(t, "C", lines[1])
}

func TestNextLineCap(t *testing.T) {
	var content = "ACGT\n" + strings.Repeat("G", 12) + "\nTT\n"

	t.Run("reject", func(t *testing.T) {
		var path = fixture.WritePlain(t, "r.txt", content)
		var r, err = Open(path, Options{MaxLine: 10, Policy: Reject})
		require.NoError(t, err)
		defer r.Close()

		var line, _ = r.Next()
		assert.Equal(t, "ACGT", string(line))
		_, err = r.Next()
		require.ErrorIs(t, err, ErrLineTooLong)

		var tooLong *LineTooLongError
		require.ErrorAs(t, err, &tooLong)
		assert.Equal(t, 2, tooLong.Line)
		assert.Equal(t, 12, tooLong.Length)
		assert.Equal(t, 10, tooLong.Max)

		_, err = r.Next()
		assert.ErrorIs(t, err, ErrLineTooLong, "errors are sticky")
	})

	t.Run("truncate", func(t *testing.T) {
		var path = fixture.WritePlain(t, "t.txt", content)
		var lines, r = readAll(t, path, Options{MaxLine: 10, Policy: Truncate})
		assert.Equal(t, []string{"ACGT", strings.Repeat("G", 10), "TT"}, lines)
		assert.Equal(t, 1, r.Truncated())
	})

	t.Run("exact limit", func(t *testing.T) {
		var path = fixture.WritePlain(t, "e.txt", strings.Repeat("C", 10)+"\r\n")
		var lines, r = readAll(t, path, Options{MaxLine: 10, Policy: Reject})
		assert.Equal(t, []string{strings.Repeat("C", 10)}, lines)
		assert.Zero(t, r.Truncated())
	})
}

func TestCorruptGzip(t *testing.T) {
	var path = fixture.WritePlain(t, "bad.gz", "\x1f\x8b\x08\x00garbage")
	var err = Each(path, DefaultOptions(), func([]byte) error { return nil })
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, path, ioErr.Path)
}

func TestEachStopsOnCallbackError(t *testing.T) {
	var (
		path = fixture.WritePlain(t, "x.txt", "1\n2\n3\n")
		stop = errors.New("stop")
		seen int
	)
	var err = Each(path, DefaultOptions(), func([]byte) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}

func TestParseLinePolicy(t *testing.T) {
	for in, want := range map[string]LinePolicy{"": Reject, "reject": Reject, "TRUNCATE": Truncate} {
		var got, err = ParseLinePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	var _, err = ParseLinePolicy("split")
	assert.Error(t, err)
}

func TestSniff(t *testing.T) {
	assert.Equal(t, Gzip, Sniff([]byte{0x1f, 0x8b, 0x08}))
	assert.Equal(t, Zstd, Sniff([]byte{0x28, 0xb5, 0x2f, 0xfd}))
	assert.Equal(t, LZ4, Sniff([]byte{0x04, 0x22, 0x4d, 0x18}))
	assert.Equal(t, Plain, Sniff([]byte(">c")))
	assert.Equal(t, Plain, Sniff(nil))
}
