// Package coverage turns a genome length and per-file read totals into an
// average sequencing depth.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"SeqCoverage/pkg/fastq"
	"SeqCoverage/pkg/genome"
	"SeqCoverage/pkg/seqio"
)

var (
	// ErrEmptyGenome is returned when the reference parses to zero bases.
	ErrEmptyGenome = errors.New("genome length is zero")
	// ErrNoReads is returned when no read file was given.
	ErrNoReads = errors.New("at least one FASTQ file is required")
)

// ReadFileStats is one read file's contribution, kept in input order.
type ReadFileStats = fastq.Stats

// Result is the aggregate of one run.
type Result struct {
	GenomePath   string
	GenomeFormat genome.Format
	GenomeLength int64
	TotalBases   int64
	TotalReads   int64
	Coverage     float64
	Files        []ReadFileStats
}

// Name returns the base name shown in summaries.
func Name(stats ReadFileStats) string {
	return filepath.Base(stats.Path)
}

// Aggregate sums files and divides by genomeLength. No file is skipped.
func Aggregate(genomeLength int64, files []ReadFileStats) (*Result, error) {
	if genomeLength <= 0 {
		return nil, ErrEmptyGenome
	}
	if len(files) == 0 {
		return nil, ErrNoReads
	}

	var res = &Result{
		GenomeLength: genomeLength,
		Files:        files,
	}
	for _, f := range files {
		res.TotalBases += f.Bases
		res.TotalReads += f.Reads
	}
	res.Coverage = float64(res.TotalBases) / float64(genomeLength)
	return res, nil
}

// Options drives Run.
type Options struct {
	Genome string
	Reads  []string

	Reader seqio.Options
	Strict bool
	// Threads > 1 counts read files concurrently; 0 or 1 keeps the sequential
	// one-handle-at-a-time behavior.
	Threads int
}

// Run measures the genome, then every read file, and aggregates. Any failure
// aborts the whole run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	var t0 = time.Now()
	if len(opts.Reads) == 0 {
		return nil, ErrNoReads
	}

	var ref, err = genome.Measure(ctx, opts.Genome, opts.Reader)
	if err != nil {
		return nil, err
	}
	if ref.Length == 0 {
		return nil, fmt.Errorf("%s: %w", opts.Genome, ErrEmptyGenome)
	}
	slog.Info("genome", "path", ref.Path, "format", ref.Format, "length", ref.Length)

	var files []ReadFileStats
	if opts.Threads > 1 && len(opts.Reads) > 1 {
		files, err = countParallel(ctx, opts)
	} else {
		files, err = countSequential(ctx, opts)
	}
	if err != nil {
		return nil, err
	}

	var res *Result
	if res, err = Aggregate(ref.Length, files); err != nil {
		return nil, err
	}
	res.GenomePath = ref.Path
	res.GenomeFormat = ref.Format
	slog.Info("Done", "reads", res.TotalReads, "bases", res.TotalBases, "coverage", res.Coverage, "time", time.Since(t0))
	return res, nil
}

func readOptions(opts Options) fastq.Options {
	return fastq.Options{Reader: opts.Reader, Strict: opts.Strict}
}

func countSequential(ctx context.Context, opts Options) ([]ReadFileStats, error) {
	var files = make([]ReadFileStats, 0, len(opts.Reads))
	for _, fq := range opts.Reads {
		var stats, err = fastq.Count(ctx, fq, readOptions(opts))
		if err != nil {
			return nil, err
		}
		files = append(files, stats)
	}
	return files, nil
}

// countParallel stores each result at its input index so the order of the
// summary does not depend on scheduling.
func countParallel(ctx context.Context, opts Options) ([]ReadFileStats, error) {
	var (
		files   = make([]ReadFileStats, len(opts.Reads))
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(opts.Threads)
	for i, fq := range opts.Reads {
		i, fq := i, fq
		g.Go(func() error {
			var stats, err = fastq.Count(gctx, fq, readOptions(opts))
			if err != nil {
				return err
			}
			files[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
