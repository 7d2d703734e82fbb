package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-slides/internal/dataverse"
	"github.com/benjaminschreck/go-slides/internal/records"
	"github.com/benjaminschreck/go-slides/pkg/slides"
	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

type renderOptions struct {
	template  string
	records   string
	dataverse bool
	jobID     string
	outDir    string
	output    string
	split     bool
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the template for one job",
		Long: `Fetches the job's rows and renders the template.

Rows come from a local file (--records, .json or .xlsx) or from the
configured Dataverse entity filtered by the job id (--dataverse).

Example:
  slidestencil render --dataverse --job-id 10960a97-4621-f011-8c4d-7c1e5283aeb9
  slidestencil render --records rows.json --split --out-dir out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.template, "template", "t", "", "template PPTX (default from config)")
	f.StringVarP(&opts.records, "records", "r", "", "read rows from a .json or .xlsx file")
	f.BoolVar(&opts.dataverse, "dataverse", false, "read rows from Dataverse")
	f.StringVar(&opts.jobID, "job-id", "", "job id injected as {{jobid}} and used as the Dataverse filter (default: random UUID)")
	f.StringVarP(&opts.outDir, "out-dir", "o", "", "output directory (default from config)")
	f.StringVar(&opts.output, "output", "", "output file name (default from config)")
	f.BoolVar(&opts.split, "split", false, "write one document per row")
	cmd.MarkFlagsMutuallyExclusive("records", "dataverse")

	return cmd
}

func (a *app) runRender(cmd *cobra.Command, opts *renderOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg
	flags := cmd.Flags()

	if opts.template != "" {
		cfg.Template = opts.template
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.output != "" {
		cfg.Output.File = opts.output
	}
	if flags.Changed("split") {
		cfg.Output.Split = opts.split
	}

	jobID := opts.jobID
	src, err := a.recordSource(ctx, opts, jobID)
	if err != nil {
		return err
	}
	if jobID == "" {
		jobID = uuid.NewString()
	}
	log := a.logger.With(zap.String("job_id", jobID))

	rows, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rows: %w", err)
	}
	if len(rows) == 0 {
		log.Info("no records retrieved")
		fmt.Fprintln(cmd.OutOrStdout(), "No records retrieved.")
		return nil
	}

	engine, err := slides.New(slides.WithConfig(&cfg.Render), slides.WithLogger(a.logger))
	if err != nil {
		return err
	}
	tmpl, err := engine.PrepareFile(cfg.Template)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	job := engine.NewJob(jobID)
	var written []string
	var reports []*slides.Report

	if cfg.Output.Split {
		paths := make([]string, len(rows))
		reports, err = engine.RenderEach(ctx, tmpl, job, rows, func(i int) (io.WriteCloser, error) {
			paths[i] = filepath.Join(cfg.Output.Dir, fmt.Sprintf("%s_%03d.pptx", jobID, i+1))
			return os.Create(paths[i])
		})
		if err != nil {
			return err
		}
		for i, r := range reports {
			if r != nil && r.Rendered > 0 {
				written = append(written, paths[i])
			}
		}
	} else {
		path := filepath.Join(cfg.Output.Dir, cfg.Output.File)
		report, err := renderToFile(ctx, engine, tmpl, job, rows, path)
		if err != nil {
			return err
		}
		reports = []*slides.Report{report}
		written = append(written, path)
	}

	total := slides.Summarize(reports)
	for _, path := range written {
		log.Info("generated presentation", zap.String("path", path))
		fmt.Fprintf(cmd.OutOrStdout(), "Generated presentation: %s\n", path)
	}
	if n := len(total.Skipped); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d of %d rows with malformed content\n", n, total.Rows)
	}
	return nil
}

// recordSource resolves where rows come from.
func (a *app) recordSource(ctx context.Context, opts *renderOptions, jobID string) (records.Source, error) {
	switch {
	case opts.records != "":
		return records.Open(opts.records)
	case opts.dataverse:
		if jobID == "" && a.cfg.Dataverse.FilterColumn != "" {
			return nil, errors.New("--job-id is required to filter Dataverse rows")
		}
		client, err := dataverse.NewClient(ctx, a.cfg.Dataverse, a.logger)
		if err != nil {
			return nil, err
		}
		return &dataverse.Source{Client: client, JobID: jobID}, nil
	default:
		return nil, errors.New("either --records or --dataverse is required")
	}
}

// renderToFile writes the document to path, removing the file when rendering fails.
func renderToFile(ctx context.Context, engine *slides.Engine, tmpl *slides.Template, job content.Job, rows []content.Row, path string) (*slides.Report, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	report, err := engine.Render(ctx, tmpl, job, rows, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return report, nil
}
