package pptx

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-slides/internal/testdeck"
)

func firstShape(t *testing.T, shape string) *Shape {
	t.Helper()
	pres := openDeck(t, testdeck.New().Slide(shape))
	shapes := pres.Slides()[0].Shapes()
	require.NotEmpty(t, shapes)
	return shapes[0]
}

func TestParagraphText(t *testing.T) {
	shape := firstShape(t, testdeck.RunsShape(2, "T",
		testdeck.Run{Text: "Hello {{na"},
		testdeck.Run{Text: "me}}", Size: 2400},
		testdeck.Run{Text: "!"},
	))

	paras := shape.TextFrame().Paragraphs()
	require.Len(t, paras, 1)
	assert.Equal(t, "Hello {{name}}!", paras[0].Text())
	assert.Len(t, paras[0].Runs(), 3)
}

func TestReplaceRunsKeepsFirstRunFormatting(t *testing.T) {
	shape := firstShape(t, testdeck.RunsShape(2, "T",
		testdeck.Run{Text: "{{a", Size: 1800, Bold: "1"},
		testdeck.Run{Text: "}}", Size: 2400},
	))

	para := shape.TextFrame().Paragraphs()[0]
	para.ReplaceRuns("done")

	runs := para.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "done", runs[0].Text())
	f := runs[0].Font()
	assert.Equal(t, 18.0, f.Size)
	require.NotNil(t, f.Bold)
	assert.True(t, *f.Bold)

	// endParaRPr stays last
	last := para.el.ChildElements()[len(para.el.ChildElements())-1]
	assert.Equal(t, "endParaRPr", last.Tag)
}

func TestReplaceRunsOnEmptyParagraph(t *testing.T) {
	shape := firstShape(t, testdeck.RunsShape(2, "T"))
	para := shape.TextFrame().Paragraphs()[0]
	para.ReplaceRuns("x")

	assert.Equal(t, "x", para.Text())
	kids := para.el.ChildElements()
	require.Len(t, kids, 2)
	assert.Equal(t, "r", kids[0].Tag)
	assert.Equal(t, "endParaRPr", kids[1].Tag)
}

func TestTextFrameSetTextSplitsLines(t *testing.T) {
	shape := firstShape(t, testdeck.TextShape(2, "T", "one", "two", "three"))
	tf := shape.TextFrame()

	tf.SetText("a\nb")
	assert.Equal(t, "a\nb", tf.Text())
	assert.Len(t, tf.Paragraphs(), 2)

	tf.SetText("")
	assert.Equal(t, "", tf.Text())
	paras := tf.Paragraphs()
	require.Len(t, paras, 1)
	assert.Empty(t, paras[0].Runs())
}

func TestRunFont(t *testing.T) {
	shape := firstShape(t, testdeck.RunsShape(2, "T", testdeck.Run{Text: "x"}))
	run := shape.TextFrame().Paragraphs()[0].Runs()[0]

	assert.Equal(t, Font{}, run.Font())

	run.SetFontSize(11)
	run.SetBold(false)
	f := run.Font()
	assert.Equal(t, 11.0, f.Size)
	require.NotNil(t, f.Bold)
	assert.False(t, *f.Bold)

	rPr := run.el.ChildElements()[0]
	assert.Equal(t, "rPr", rPr.Tag)
	assert.Equal(t, "1100", rPr.SelectAttrValue("sz", ""))
	assert.Equal(t, "0", rPr.SelectAttrValue("b", ""))
}

func TestSetFontCreatesRPrFirst(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(testdeck.SlideXML(testdeck.TextShape(2, "T", "x"))))
	slide := &Slide{doc: doc, tree: descend(doc.Root(), NamespaceMain, "cSld", "spTree"), p: "p", a: "a"}

	r := etree.NewElement("a:r")
	r.CreateElement("a:t").SetText("bare")
	slide.tree.AddChild(r)

	run := &Run{slide: slide, el: r}
	run.SetFont(Font{Size: 9.5})

	kids := r.ChildElements()
	require.Len(t, kids, 2)
	assert.Equal(t, "rPr", kids[0].Tag)
	assert.Equal(t, "950", kids[0].SelectAttrValue("sz", ""))
	assert.Nil(t, run.Font().Bold)
}

func TestParagraphDefaultFont(t *testing.T) {
	shape := firstShape(t, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="T"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:pPr><a:defRPr sz="1400" b="1"/></a:pPr><a:endParaRPr/></a:p></p:txBody></p:sp>`)

	f := shape.TextFrame().Paragraphs()[0].DefaultFont()
	assert.Equal(t, 14.0, f.Size)
	require.NotNil(t, f.Bold)
	assert.True(t, *f.Bold)
}
