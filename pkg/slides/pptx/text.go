package pptx

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Font is the subset of run properties the renderer reads and writes.
// Size is in points; zero means inherited. A nil Bold is inherited.
type Font struct {
	Size float64
	Bold *bool
}

// TextFrame is a text body, either a shape's p:txBody or a cell's a:txBody.
type TextFrame struct {
	slide *Slide
	el    *etree.Element
}

// Paragraphs returns the a:p elements in order.
func (tf *TextFrame) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, p := range children(tf.el, NamespaceDrawing, "p") {
		out = append(out, &Paragraph{slide: tf.slide, el: p})
	}
	return out
}

// Text joins paragraph text with newlines.
func (tf *TextFrame) Text() string {
	paras := tf.Paragraphs()
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// SetText replaces the body with one paragraph per line. Paragraph-level
// properties of the first existing paragraph carry over to every new one.
func (tf *TextFrame) SetText(text string) {
	paras := children(tf.el, NamespaceDrawing, "p")
	var tmpl *etree.Element
	if len(paras) > 0 {
		tmpl = paras[0]
	}
	for _, p := range paras {
		tf.el.RemoveChild(p)
	}

	for _, line := range strings.Split(text, "\n") {
		el := tf.slide.newParagraph(tmpl)
		tf.el.AddChild(el)
		if line != "" {
			(&Paragraph{slide: tf.slide, el: el}).AddRun(line)
		}
	}
}

// SetFont applies f to every run in the body.
func (tf *TextFrame) SetFont(f Font) {
	for _, p := range tf.Paragraphs() {
		for _, r := range p.Runs() {
			r.SetFont(f)
		}
	}
}

func (s *Slide) newParagraph(tmpl *etree.Element) *etree.Element {
	el := etree.NewElement(s.aTag("p"))
	if pPr := child(tmpl, NamespaceDrawing, "pPr"); pPr != nil {
		el.AddChild(pPr.Copy())
	}
	if end := child(tmpl, NamespaceDrawing, "endParaRPr"); end != nil {
		el.AddChild(end.Copy())
	}
	return el
}

// Paragraph is an a:p element.
type Paragraph struct {
	slide *Slide
	el    *etree.Element
}

// Runs returns the a:r children. Line breaks and fields are not runs.
func (p *Paragraph) Runs() []*Run {
	var out []*Run
	for _, r := range children(p.el, NamespaceDrawing, "r") {
		out = append(out, &Run{slide: p.slide, el: r})
	}
	return out
}

// Text concatenates the text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// ReplaceRuns writes text into the first run and drops the others, so the
// paragraph keeps the first run's formatting. A paragraph without runs gets one.
func (p *Paragraph) ReplaceRuns(text string) {
	runs := p.Runs()
	if len(runs) == 0 {
		p.AddRun(text)
		return
	}
	runs[0].SetText(text)
	for _, r := range runs[1:] {
		p.el.RemoveChild(r.el)
	}
}

// AddRun appends a run ahead of a:endParaRPr, which must stay last.
func (p *Paragraph) AddRun(text string) *Run {
	r := etree.NewElement(p.slide.aTag("r"))
	r.CreateElement(p.slide.aTag("t")).SetText(text)

	if end := child(p.el, NamespaceDrawing, "endParaRPr"); end != nil {
		p.el.InsertChildAt(childIndex(p.el, end), r)
	} else {
		p.el.AddChild(r)
	}
	return &Run{slide: p.slide, el: r}
}

// DefaultFont reads a:pPr/a:defRPr.
func (p *Paragraph) DefaultFont() Font {
	return fontOf(descend(p.el, NamespaceDrawing, "pPr", "defRPr"))
}

// Run is an a:r element.
type Run struct {
	slide *Slide
	el    *etree.Element
}

// Text returns the run's a:t content.
func (r *Run) Text() string {
	t := child(r.el, NamespaceDrawing, "t")
	if t == nil {
		return ""
	}
	return t.Text()
}

// SetText replaces the run's a:t content.
func (r *Run) SetText(text string) {
	t := child(r.el, NamespaceDrawing, "t")
	if t == nil {
		t = r.el.CreateElement(r.slide.aTag("t"))
	}
	t.SetText(text)
}

// Font reads the run's a:rPr.
func (r *Run) Font() Font {
	return fontOf(child(r.el, NamespaceDrawing, "rPr"))
}

// SetFont writes the set fields of f into a:rPr.
func (r *Run) SetFont(f Font) {
	if f.Size > 0 {
		r.SetFontSize(f.Size)
	}
	if f.Bold != nil {
		r.SetBold(*f.Bold)
	}
}

// SetFontSize sets the size in points.
func (r *Run) SetFontSize(pt float64) {
	r.properties().CreateAttr("sz", strconv.Itoa(int(math.Round(pt*100))))
}

// SetBold sets or clears bold.
func (r *Run) SetBold(bold bool) {
	v := "0"
	if bold {
		v = "1"
	}
	r.properties().CreateAttr("b", v)
}

// properties returns a:rPr, creating it as the first child when missing.
func (r *Run) properties() *etree.Element {
	if rPr := child(r.el, NamespaceDrawing, "rPr"); rPr != nil {
		return rPr
	}
	rPr := etree.NewElement(r.slide.aTag("rPr"))
	r.el.InsertChildAt(0, rPr)
	return rPr
}

func fontOf(el *etree.Element) Font {
	var f Font
	if el == nil {
		return f
	}
	if sz, err := strconv.Atoi(el.SelectAttrValue("sz", "")); err == nil {
		f.Size = float64(sz) / 100
	}
	switch el.SelectAttrValue("b", "") {
	case "1", "true":
		b := true
		f.Bold = &b
	case "0", "false":
		b := false
		f.Bold = &b
	}
	return f
}
