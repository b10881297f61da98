// Package fixture writes plain and compressed input files for tests.
package fixture

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

// Codec names accepted by Write.
const (
	Plain = "plain"
	Gzip  = "gzip"
	Zstd  = "zstd"
	LZ4   = "lz4"
)

// Codecs lists every codec Write understands.
var Codecs = []string{Plain, Gzip, Zstd, LZ4}

// Write stores content under dir/name, compressed with codec, and returns the path.
func Write(t testing.TB, dir, name, codec, content string) string {
	t.Helper()
	var path = filepath.Join(dir, name)
	var fh, err = os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, fh.Close()) }()

	var w io.WriteCloser
	switch codec {
	case Plain:
		_, err = io.WriteString(fh, content)
		require.NoError(t, err)
		return path
	case Gzip:
		w = gzip.NewWriter(fh)
	case Zstd:
		w, err = zstd.NewWriter(fh)
		require.NoError(t, err)
	case LZ4:
		w = lz4.NewWriter(fh)
	default:
		t.Fatalf("unknown codec %q", codec)
	}
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

// WritePlain writes an uncompressed fixture into a fresh temp dir.
func WritePlain(t testing.TB, name, content string) string {
	t.Helper()
	return Write(t, t.TempDir(), name, Plain, content)
}
