package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/sitstand.report/internal/config"
	"github.com/banshee-data/sitstand.report/internal/db"
	"github.com/banshee-data/sitstand.report/internal/imu"
	"github.com/banshee-data/sitstand.report/internal/pipeline"
	"github.com/banshee-data/sitstand.report/internal/report"
)

// batchOptions configures one batch invocation. Subject is applied to
// every recording.
type batchOptions struct {
	Subject    pipeline.Request
	Config     *config.TuningConfig
	Workers    int
	ParquetDir string
	PlotDir    string
	Report     *db.DB
}

// outcome is the result of one recording. Err is set instead of Result
// when the file could not be analysed.
type outcome struct {
	Path   string
	Result *pipeline.ResultSummary
	Err    error
}

func analyzeFile(ctx context.Context, path string, opts batchOptions) (*pipeline.ResultSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := imu.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	req := opts.Subject
	req.Samples = records
	res, err := pipeline.Run(ctx, req, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// stem is the file name of path without its extension, reduced to ASCII
// letters, digits, dot, underscore and dash so it is safe to reuse for
// export file names.
func stem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range base {
		switch {
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	if out := strings.Trim(b.String(), "._"); out != "" {
		return out
	}
	return "recording"
}

func exportFile(path string, res *pipeline.ResultSummary, opts batchOptions) error {
	if opts.ParquetDir != "" {
		out := filepath.Join(opts.ParquetDir, stem(path)+".parquet")
		b, err := report.MarshalPitchParquet(res)
		if err != nil {
			return fmt.Errorf("%s: %w", out, err)
		}
		if err := os.WriteFile(out, b, 0o644); err != nil {
			return err
		}
	}
	if opts.PlotDir != "" {
		out := filepath.Join(opts.PlotDir, stem(path)+".png")
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := report.WritePitchPNG(f, stem(path), res); err != nil {
			f.Close()
			return fmt.Errorf("%s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// runBatch analyses paths with at most opts.Workers recordings in flight.
// Per-file failures are reported in the outcomes; only cancellation aborts
// the batch. Outcomes keep the order of paths.
func runBatch(ctx context.Context, paths []string, opts batchOptions) ([]outcome, error) {
	outcomes := make([]outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i].Path = path
			res, err := analyzeFile(gctx, path, opts)
			if err == nil {
				err = exportFile(path, res, opts)
			}
			outcomes[i].Result, outcomes[i].Err = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Report != nil {
		for _, o := range outcomes {
			if o.Result == nil {
				continue
			}
			if err := opts.Report.RecordRun(ctx, db.RunFromResult(o.Path, opts.Subject, o.Result)); err != nil {
				return outcomes, fmt.Errorf("record %s: %w", o.Path, err)
			}
		}
	}
	return outcomes, nil
}

func printSummary(w io.Writer, outcomes []outcome) (failed int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tREPS\tPOWER (W)\tTIME (s)\tCLASSIFICATION\tRUN")
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t-\t-\t-\terror: %v\t-\n", o.Path, o.Err)
			continue
		}
		t := o.Result.Totals.Rounded()
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%s\t%s\n",
			o.Path, t.Repetitions, t.MeanPower, t.TotalTime, o.Result.Classification, o.Result.ID)
	}
	tw.Flush()
	return failed
}
