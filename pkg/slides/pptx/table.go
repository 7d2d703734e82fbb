package pptx

import (
	"strconv"

	"github.com/beevik/etree"
)

// DefaultTableStyleID is the "Medium Style 2 - Accent 1" table style PowerPoint applies to new tables.
const DefaultTableStyleID = "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"

// Table is an a:tbl element.
type Table struct {
	slide *Slide
	el    *etree.Element
}

func (t *Table) rowElements() []*etree.Element {
	return children(t.el, NamespaceDrawing, "tr")
}

// Rows returns the number of a:tr rows.
func (t *Table) Rows() int {
	return len(t.rowElements())
}

// Cols returns the number of grid columns.
func (t *Table) Cols() int {
	return len(children(child(t.el, NamespaceDrawing, "tblGrid"), NamespaceDrawing, "gridCol"))
}

// Cell returns the cell at row, col, or nil when out of range.
func (t *Table) Cell(row, col int) *Cell {
	rows := t.rowElements()
	if row < 0 || row >= len(rows) || col < 0 {
		return nil
	}
	cells := children(rows[row], NamespaceDrawing, "tc")
	if col >= len(cells) {
		return nil
	}
	return &Cell{slide: t.slide, el: cells[col]}
}

// Cells returns every cell in row-major order.
func (t *Table) Cells() []*Cell {
	var out []*Cell
	for _, tr := range t.rowElements() {
		for _, tc := range children(tr, NamespaceDrawing, "tc") {
			out = append(out, &Cell{slide: t.slide, el: tc})
		}
	}
	return out
}

// StyleID returns a:tblPr/a:tableStyleId.
func (t *Table) StyleID() string {
	id := descend(t.el, NamespaceDrawing, "tblPr", "tableStyleId")
	if id == nil {
		return ""
	}
	return id.Text()
}

// SetStyleID sets a:tblPr/a:tableStyleId, creating both when missing.
func (t *Table) SetStyleID(styleID string) {
	tblPr := child(t.el, NamespaceDrawing, "tblPr")
	if tblPr == nil {
		tblPr = etree.NewElement(t.slide.aTag("tblPr"))
		t.el.InsertChildAt(0, tblPr)
	}
	id := child(tblPr, NamespaceDrawing, "tableStyleId")
	if id == nil {
		id = tblPr.CreateElement(t.slide.aTag("tableStyleId"))
	}
	id.SetText(styleID)
}

// Cell is an a:tc element.
type Cell struct {
	slide *Slide
	el    *etree.Element
}

// TextFrame returns the cell's a:txBody, creating an empty one when missing.
func (c *Cell) TextFrame() *TextFrame {
	body := child(c.el, NamespaceDrawing, "txBody")
	if body == nil {
		body = c.slide.newCellBody()
		c.el.InsertChildAt(0, body)
	}
	return &TextFrame{slide: c.slide, el: body}
}

// Text returns the cell text, paragraphs joined with newlines.
func (c *Cell) Text() string {
	body := child(c.el, NamespaceDrawing, "txBody")
	if body == nil {
		return ""
	}
	return (&TextFrame{slide: c.slide, el: body}).Text()
}

// SetText replaces the cell text.
func (c *Cell) SetText(text string) {
	c.TextFrame().SetText(text)
}

// SetFont applies f to every run in the cell.
func (c *Cell) SetFont(f Font) {
	c.TextFrame().SetFont(f)
}

func (s *Slide) newCellBody() *etree.Element {
	body := etree.NewElement(s.aTag("txBody"))
	body.CreateElement(s.aTag("bodyPr"))
	body.CreateElement(s.aTag("lstStyle"))
	body.CreateElement(s.aTag("p"))
	return body
}

// newTableFrame builds a p:graphicFrame holding an empty rows x cols table that
// fills g. Columns and rows share the extent evenly; the last one takes the remainder.
func (s *Slide) newTableFrame(id int, name string, g Geometry, rows, cols int) *etree.Element {
	frame := etree.NewElement(s.pTag("graphicFrame"))

	nv := frame.CreateElement(s.pTag("nvGraphicFramePr"))
	cNvPr := nv.CreateElement(s.pTag("cNvPr"))
	cNvPr.CreateAttr("id", strconv.Itoa(id))
	cNvPr.CreateAttr("name", name)
	nv.CreateElement(s.pTag("cNvGraphicFramePr")).
		CreateElement(s.aTag("graphicFrameLocks")).
		CreateAttr("noGrp", "1")
	nv.CreateElement(s.pTag("nvPr"))

	xfrm := frame.CreateElement(s.pTag("xfrm"))
	off := xfrm.CreateElement(s.aTag("off"))
	off.CreateAttr("x", strconv.FormatInt(g.X, 10))
	off.CreateAttr("y", strconv.FormatInt(g.Y, 10))
	ext := xfrm.CreateElement(s.aTag("ext"))
	ext.CreateAttr("cx", strconv.FormatInt(g.CX, 10))
	ext.CreateAttr("cy", strconv.FormatInt(g.CY, 10))

	data := frame.CreateElement(s.aTag("graphic")).CreateElement(s.aTag("graphicData"))
	data.CreateAttr("uri", TableGraphicURI)

	tbl := data.CreateElement(s.aTag("tbl"))
	tblPr := tbl.CreateElement(s.aTag("tblPr"))
	tblPr.CreateAttr("firstRow", "1")
	tblPr.CreateAttr("bandRow", "1")
	tblPr.CreateElement(s.aTag("tableStyleId")).SetText(DefaultTableStyleID)

	grid := tbl.CreateElement(s.aTag("tblGrid"))
	for _, w := range split(g.CX, cols) {
		grid.CreateElement(s.aTag("gridCol")).CreateAttr("w", strconv.FormatInt(w, 10))
	}
	for _, h := range split(g.CY, rows) {
		tr := tbl.CreateElement(s.aTag("tr"))
		tr.CreateAttr("h", strconv.FormatInt(h, 10))
		for i := 0; i < cols; i++ {
			tc := tr.CreateElement(s.aTag("tc"))
			tc.AddChild(s.newCellBody())
			tc.CreateElement(s.aTag("tcPr"))
		}
	}

	return frame
}

// split divides total into n parts, the remainder going to the last part.
func split(total int64, n int) []int64 {
	parts := make([]int64, n)
	base := total / int64(n)
	for i := range parts {
		parts[i] = base
	}
	parts[n-1] += total - base*int64(n)
	return parts
}
