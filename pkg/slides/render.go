package slides

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
	"github.com/benjaminschreck/go-slides/pkg/slides/pptx"
	"github.com/benjaminschreck/go-slides/pkg/slides/render"
)

// RenderDocument applies every row to pres in order. All rows write into the same
// document, so a placeholder consumed by an earlier row is gone for later ones.
// Rows with malformed content are skipped and listed in the report. A structural
// failure aborts with a *DocumentError.
func (e *Engine) RenderDocument(ctx context.Context, pres *pptx.Presentation, job content.Job, rows []content.Row) (*Report, error) {
	log := e.logger.With(zap.String("job_id", job.ID))
	report := &Report{JobID: job.ID, Rows: len(rows)}
	norm := e.config.normalizer()

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		m, err := norm.Normalize(row, job)
		if err != nil {
			report.Skipped = append(report.Skipped, &RecordError{Index: i, Cause: err})
			log.Warn("skipping row with malformed content", zap.Int("row", i), zap.Error(err))
			continue
		}

		if err := e.renderRow(pres, m, i, report, log); err != nil {
			return report, err
		}
		report.Rendered++
	}

	logSummary(log, report)
	return report, nil
}

func logSummary(log *zap.Logger, report *Report) {
	log.Info("document rendered",
		zap.Int("rows", report.Rows),
		zap.Int("rendered", report.Rendered),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("substitutions", report.Substitutions),
		zap.Int("fallbacks", report.Fallbacks),
		zap.Int("tables_expanded", report.TablesExpanded),
		zap.Int("tables_degraded", report.TablesDegraded))
}

// renderRow resolves text, then tables, slide by slide.
func (e *Engine) renderRow(pres *pptx.Presentation, m *content.Map, row int, report *Report, log *zap.Logger) error {
	for _, slide := range pres.Slides() {
		slog := log.With(zap.Int("row", row), zap.Int("slide", slide.Index()+1))

		for _, shape := range slide.Shapes() {
			if !shape.HasTextFrame() {
				continue
			}
			for _, para := range shape.TextFrame().Paragraphs() {
				res := resolveParagraph(para, m, e.config.Fallback)
				report.Substitutions += len(res.Resolved)
				report.Fallbacks += len(res.Unresolved)
				if res.Changed() {
					slog.Debug("paragraph resolved",
						zap.String("shape", shape.Name()),
						zap.Strings("resolved", res.Resolved),
						zap.Strings("unresolved", res.Unresolved))
				}
			}
		}

		// Snapshot taken after text resolution; tables replaced below are not revisited.
		for _, shape := range slide.Shapes() {
			if !shape.HasTable() {
				continue
			}
			if err := e.resolveTable(slide, shape, m, row, report, slog); err != nil {
				return WithContext(err, "render table", map[string]interface{}{
					"slide": slide.Index() + 1,
					"shape": shape.Name(),
				})
			}
		}
	}
	return nil
}

// resolveParagraph substitutes tokens across the paragraph's runs. The result is written
// into the first run and the other runs are dropped. Paragraphs without an opening marker
// are left as they are.
func resolveParagraph(para *pptx.Paragraph, m *content.Map, fallback string) render.Resolution {
	text := para.Text()
	if !strings.Contains(text, render.OpenMarker) {
		return render.Resolution{Text: text}
	}
	res := render.ResolveText(text, m, fallback)
	para.ReplaceRuns(res.Text)
	return res
}

// Render opens a private copy of tmpl, applies rows and writes the result to w.
func (e *Engine) Render(ctx context.Context, tmpl *Template, job content.Job, rows []content.Row, w io.Writer) (*Report, error) {
	pres, err := tmpl.Open()
	if err != nil {
		return nil, err
	}

	report, err := e.RenderDocument(ctx, pres, job, rows)
	if err != nil {
		return report, err
	}

	if _, err := pres.WriteTo(w); err != nil {
		return report, NewDocumentError("write", tmpl.Name(), err)
	}
	return report, nil
}

// RenderEach renders one document per row, concurrently, each from its own copy of tmpl.
// sink is called with the row index once the document is ready and must return the
// destination; RenderEach closes it. Skipped rows never reach sink. Reports are indexed
// by row. The first error cancels the remaining work.
func (e *Engine) RenderEach(ctx context.Context, tmpl *Template, job content.Job, rows []content.Row, sink func(i int) (io.WriteCloser, error)) ([]*Report, error) {
	reports := make([]*Report, len(rows))
	norm := e.config.normalizer()

	limit := e.config.MaxConcurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, row := range rows {
		i, row := i, row
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = WithContext(recoverError(r), "render row", map[string]interface{}{"row": i})
				}
			}()

			log := e.logger.With(zap.String("job_id", job.ID))
			report := &Report{JobID: job.ID, Rows: 1}
			reports[i] = report

			m, nerr := norm.Normalize(row, job)
			if nerr != nil {
				report.Skipped = append(report.Skipped, &RecordError{Index: i, Cause: nerr})
				log.Warn("skipping row with malformed content", zap.Int("row", i), zap.Error(nerr))
				return nil
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			pres, err := tmpl.Open()
			if err != nil {
				return err
			}
			if err := e.renderRow(pres, m, i, report, log); err != nil {
				return err
			}
			report.Rendered++
			logSummary(log, report)

			w, err := sink(i)
			if err != nil {
				return fmt.Errorf("open output for row %d: %w", i, err)
			}
			_, werr := pres.WriteTo(w)
			cerr := w.Close()
			if werr != nil {
				return NewDocumentError("write", tmpl.Name(), werr)
			}
			if cerr != nil {
				return fmt.Errorf("close output for row %d: %w", i, cerr)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, ctx.Err()
}
