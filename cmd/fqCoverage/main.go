// fqCoverage calculates average sequencing read depth from FASTQ files against a
// reference genome.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/spf13/cobra"

	"SeqCoverage/pkg/config"
	"SeqCoverage/pkg/coverage"
	"SeqCoverage/pkg/report"
)

// usageError is printed together with the usage text.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

type options struct {
	genome  string
	verbose bool
	cfgFile string
	xlsx    string
	html    string
	png     string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	var cmd = newCommand(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(stderr, "\n%s", cmd.UsageString())
		}
		return 1
	}
	return 0
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	var cmd = &cobra.Command{
		Use:   "fqCoverage -g <genome.(fasta|gbk)(.gz)> [options] <reads.fq(.gz)> [<reads2.fq(.gz)> ...]",
		Short: "Calculates average sequencing read depth from FASTQ files against a reference genome.",
		Long: `Calculates average sequencing read depth from FASTQ files against a reference genome.

Default output: coverage as a single number (e.g., 45.23)
Verbose output: formatted summary of reads and bases per file

Inputs may be plain text or gzip, zstd or lz4 compressed.`,
		Example: `  fqCoverage -g ref.fasta reads_R1.fq.gz reads_R2.fq.gz
  fqCoverage -g ref.gbk.gz -v sample1.fq sample2.fq sample3.fq`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	var flags = cmd.Flags()
	flags.StringVarP(&opts.genome, "genome", "g", "", "reference genome (FASTA or GenBank, optionally compressed)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show detailed statistics")
	flags.StringVar(&opts.cfgFile, "config", "", "config file (yaml, toml or json) with tuning options")
	flags.StringVar(&opts.xlsx, "xlsx", "", "also write the summary to this .xlsx workbook")
	flags.StringVar(&opts.html, "html", "", "also write a bar chart of bases per file to this .html page")
	flags.StringVar(&opts.png, "png", "", "also plot each file's depth to this image (.png, .svg or .pdf)")
	config.AddFlags(flags)
	return cmd
}

func run(cmd *cobra.Command, opts options, reads []string, stdout, stderr io.Writer) error {
	var cfg, err = config.Load(opts.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if err = validate(opts.genome, reads, stderr); err != nil {
		return err
	}

	readerOpts, err := cfg.ReaderOptions()
	if err != nil {
		return err
	}
	var res *coverage.Result
	res, err = coverage.Run(context.Background(), coverage.Options{
		Genome:  opts.genome,
		Reads:   reads,
		Reader:  readerOpts,
		Strict:  cfg.Strict,
		Threads: cfg.Workers(),
	})
	if err != nil {
		return err
	}

	if opts.verbose {
		err = report.WriteSummary(stdout, res)
	} else {
		err = report.WriteCoverage(stdout, res)
	}
	if err != nil {
		return err
	}
	return writeExtras(opts, res)
}

// validate checks the arguments before any file is parsed. A read file given
// more than once is only warned about, once for every later repeat of it, and
// is counted every time.
func validate(genome string, reads []string, stderr io.Writer) error {
	if genome == "" {
		return usageError{"Genome file is required (-g)"}
	}
	if len(reads) == 0 {
		return usageError{"At least one FASTQ file is required"}
	}
	if !fileExists(genome) {
		return fmt.Errorf("Genome file not found: %s", genome)
	}

	for i, fq := range reads {
		if !fileExists(fq) {
			return fmt.Errorf("FASTQ file not found: %s", fq)
		}
		for _, other := range reads[i+1:] {
			if other == fq {
				fmt.Fprintf(stderr, "Warning: File '%s' appears multiple times in input\n", fq)
			}
		}
	}
	return nil
}

// fileExists reports whether path is a regular, reachable file. osUtil.FileExists
// only copes with ENOENT, so any other stat failure is caught first.
func fileExists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return osUtil.FileExists(path)
}

func writeExtras(opts options, res *coverage.Result) error {
	if opts.xlsx != "" {
		if err := report.SaveXlsx(opts.xlsx, res); err != nil {
			return err
		}
	}
	if opts.html != "" {
		if err := saveHTML(opts.html, res); err != nil {
			return err
		}
	}
	if opts.png != "" {
		if err := report.SavePNG(opts.png, res); err != nil {
			return err
		}
	}
	return nil
}

func saveHTML(path string, res *coverage.Result) (err error) {
	var out *os.File
	if out, err = os.Create(path); err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return report.RenderHTML(out, res)
}
