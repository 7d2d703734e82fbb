// Package testdeck builds small PPTX files in memory for tests.
// It writes raw PresentationML so tests do not depend on the package under test.
package testdeck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

const (
	nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	relSlide = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

// Deck collects slides, each a list of shape XML fragments.
type Deck struct {
	slides [][]string
	order  []int
}

// New returns an empty deck.
func New() *Deck {
	return &Deck{}
}

// Slide appends a slide holding shapes in z-order.
func (d *Deck) Slide(shapes ...string) *Deck {
	d.slides = append(d.slides, shapes)
	return d
}

// WithOrder lists the slide parts in sldIdLst in the given order of
// zero-based part indices. By default slides appear in the order added.
func (d *Deck) WithOrder(order ...int) *Deck {
	d.order = order
	return d
}

// Bytes returns the PPTX archive.
func (d *Deck) Bytes() []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	put := func(name, content string) {
		f, _ := w.Create(name)
		io.WriteString(f, content)
	}

	var overrides strings.Builder
	for i := range d.slides {
		fmt.Fprintf(&overrides, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	put("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
`+overrides.String()+`
</Types>`)

	put("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`)

	order := d.order
	if order == nil {
		for i := range d.slides {
			order = append(order, i)
		}
	}

	var ids, rels strings.Builder
	for n, i := range order {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+n, i+1)
	}
	for i := range d.slides {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, i+1, relSlide, i+1)
	}

	put("ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation `+nsDecl+`><p:sldIdLst>`+ids.String()+`</p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`)

	put("ppt/_rels/presentation.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+rels.String()+`</Relationships>`)

	for i, shapes := range d.slides {
		put(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), SlideXML(shapes...))
	}

	w.Close()
	return buf.Bytes()
}

// WriteFile writes the deck into dir and returns its path.
func (d *Deck) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := dir + "/" + name
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

// SlideXML wraps shapes in a slide part.
func SlideXML(shapes ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld ` + nsDecl + `><p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
		strings.Join(shapes, "") +
		`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
}

// Run is one text run. Size is in hundredths of a point; Bold is "", "0" or "1".
type Run struct {
	Text string
	Size int
	Bold string
}

func (r Run) xml() string {
	attrs := ` lang="en-US"`
	if r.Size > 0 {
		attrs += fmt.Sprintf(` sz="%d"`, r.Size)
	}
	if r.Bold != "" {
		attrs += fmt.Sprintf(` b="%s"`, r.Bold)
	}
	return `<a:r><a:rPr` + attrs + ` dirty="0"/><a:t>` + escape(r.Text) + `</a:t></a:r>`
}

func paragraph(runs ...Run) string {
	var sb strings.Builder
	sb.WriteString(`<a:p>`)
	for _, r := range runs {
		sb.WriteString(r.xml())
	}
	sb.WriteString(`<a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
	return sb.String()
}

func spOpen(id int, name string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="457200" y="274638"/><a:ext cx="8229600" cy="1143000"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`,
		id, escape(name))
}

// TextShape is a text box with one single-run paragraph per argument.
func TextShape(id int, name string, paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(spOpen(id, name))
	sb.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, text := range paragraphs {
		sb.WriteString(paragraph(Run{Text: text}))
	}
	sb.WriteString(`</p:txBody></p:sp>`)
	return sb.String()
}

// RunsShape is a text box with a single paragraph split into runs.
func RunsShape(id int, name string, runs ...Run) string {
	return spOpen(id, name) + `<p:txBody><a:bodyPr/><a:lstStyle/>` + paragraph(runs...) + `</p:txBody></p:sp>`
}

// PictureShape is a picture without text.
func PictureShape(id int, name string) string {
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="rId9"/></p:blipFill>`+
		`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="914400" cy="914400"/></a:xfrm></p:spPr></p:pic>`,
		id, escape(name))
}

// Table describes a table graphic frame.
type Table struct {
	X, Y, CX, CY int64
	Rows         [][]string

	// Size and Bold apply to every run.
	Size int
	Bold string

	StyleID string

	// NoXfrm omits the frame's position and extent.
	NoXfrm bool
}

// TableShape is a graphic frame holding t.
func TableShape(id int, name string, t Table) string {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/>`+
		`<p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`,
		id, escape(name))
	if !t.NoXfrm {
		fmt.Fprintf(&sb, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, t.X, t.Y, t.CX, t.CY)
	}
	sb.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>`)
	sb.WriteString(`<a:tblPr firstRow="1" bandRow="1">`)
	if t.StyleID != "" {
		sb.WriteString(`<a:tableStyleId>` + t.StyleID + `</a:tableStyleId>`)
	}
	sb.WriteString(`</a:tblPr><a:tblGrid>`)
	for i := 0; i < cols; i++ {
		fmt.Fprintf(&sb, `<a:gridCol w="%d"/>`, t.CX/int64(max(cols, 1)))
	}
	sb.WriteString(`</a:tblGrid>`)
	for _, row := range t.Rows {
		fmt.Fprintf(&sb, `<a:tr h="%d">`, t.CY/int64(max(len(t.Rows), 1)))
		for i := 0; i < cols; i++ {
			text := ""
			if i < len(row) {
				text = row[i]
			}
			sb.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>`)
			sb.WriteString(paragraph(Run{Text: text, Size: t.Size, Bold: t.Bold}))
			sb.WriteString(`</a:txBody><a:tcPr/></a:tc>`)
		}
		sb.WriteString(`</a:tr>`)
	}
	sb.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	return sb.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
