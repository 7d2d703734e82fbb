package slides

import (
	"errors"

	"go.uber.org/zap"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
	"github.com/benjaminschreck/go-slides/pkg/slides/pptx"
	"github.com/benjaminschreck/go-slides/pkg/slides/render"
)

// resolveTable expands shape when its anchor cell names a table placeholder. Ordinary
// tables are ignored. Data problems become diagnostics; only structural problems are errors.
func (e *Engine) resolveTable(slide *pptx.Slide, shape *pptx.Shape, m *content.Map, row int, report *Report, log *zap.Logger) error {
	tbl := shape.Table()
	anchor := tbl.Cell(0, 0)
	if anchor == nil {
		return nil
	}
	name, ok := render.ParseTableAnchor(anchor.Text(), e.config.TablePrefix, e.config.TableSuffix)
	if !ok {
		return nil
	}

	v, found := m.Lookup(name)
	schema, err := render.InferSchema(v, found, e.config.StrictSchema)
	if err != nil {
		diag := Diagnostic{
			Row:         row,
			Slide:       slide.Index() + 1,
			Shape:       shape.Name(),
			Placeholder: name,
			Err:         err,
		}
		switch {
		case errors.Is(err, render.ErrNoData):
			diag.Kind = DiagNoData
			e.degradeTable(tbl, anchor)
			report.TablesDegraded++
		case errors.Is(err, render.ErrSchemaMismatch):
			diag.Kind = DiagSchemaMismatch
		default:
			diag.Kind = DiagNotRecord
		}
		report.Diagnostics = append(report.Diagnostics, diag)
		log.Warn("table placeholder not expanded",
			zap.String("placeholder", name),
			zap.String("shape", diag.Shape),
			zap.Stringer("kind", diag.Kind),
			zap.Error(err))
		return nil
	}

	g, err := shape.Geometry()
	if err != nil {
		return NewDocumentError("read geometry", slide.Part(), err)
	}

	font := anchorFont(anchor)
	if font.Size == 0 {
		font.Size = e.config.TableFontSize
	}

	if err := e.materializeTable(slide, shape, schema, g, font); err != nil {
		return NewDocumentError("materialize table", slide.Part(), err)
	}
	report.TablesExpanded++

	rows, cols := schema.Dims()
	log.Debug("table placeholder expanded",
		zap.String("placeholder", name),
		zap.Int("rows", rows),
		zap.Int("cols", cols))
	return nil
}

// degradeTable keeps the placeholder in place with the no-data text in its anchor.
func (e *Engine) degradeTable(tbl *pptx.Table, anchor *pptx.Cell) {
	anchor.SetText(e.config.NoDataText)
	for _, cell := range tbl.Cells() {
		cell.SetFont(pptx.Font{Size: e.config.NoDataFontSize})
	}
}

// materializeTable swaps the placeholder for a table sized to schema, at the same
// geometry and z-order position.
func (e *Engine) materializeTable(slide *pptx.Slide, placeholder *pptx.Shape, schema render.Schema, g pptx.Geometry, font pptx.Font) error {
	rows, cols := schema.Dims()
	shape, err := slide.ReplaceWithTable(placeholder, g, rows, cols)
	if err != nil {
		return err
	}

	tbl := shape.Table()
	tbl.SetStyleID(e.config.TableStyleID)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tbl.Cell(r, c).SetText(schema.Cell(r, c))
		}
	}
	for _, cell := range tbl.Cells() {
		cell.SetFont(font)
	}
	return nil
}

// anchorFont reads the size and bold flag of the anchor's first run, falling back to the
// paragraph defaults.
func anchorFont(anchor *pptx.Cell) pptx.Font {
	paras := anchor.TextFrame().Paragraphs()
	if len(paras) == 0 {
		return pptx.Font{}
	}
	font := paras[0].DefaultFont()
	if runs := paras[0].Runs(); len(runs) > 0 {
		rf := runs[0].Font()
		if rf.Size > 0 {
			font.Size = rf.Size
		}
		if rf.Bold != nil {
			font.Bold = rf.Bold
		}
	}
	return font
}
