package pptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-slides/internal/testdeck"
)

func TestTableCells(t *testing.T) {
	shape := firstShape(t, testdeck.TableShape(2, "Tbl", testdeck.Table{
		CX: 200, CY: 200,
		Rows:    [][]string{{"h1", "h2"}, {"a", "b"}},
		StyleID: "{CUSTOM}",
	}))
	tbl := shape.Table()

	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, 2, tbl.Cols())
	assert.Equal(t, "h1", tbl.Cell(0, 0).Text())
	assert.Equal(t, "b", tbl.Cell(1, 1).Text())
	assert.Nil(t, tbl.Cell(2, 0))
	assert.Nil(t, tbl.Cell(0, 2))
	assert.Nil(t, tbl.Cell(-1, 0))
	assert.Len(t, tbl.Cells(), 4)
	assert.Equal(t, "{CUSTOM}", tbl.StyleID())

	tbl.SetStyleID(DefaultTableStyleID)
	assert.Equal(t, DefaultTableStyleID, tbl.StyleID())
}

func TestCellSetTextKeepsStructure(t *testing.T) {
	shape := firstShape(t, testdeck.TableShape(2, "Tbl", testdeck.Table{
		CX: 100, CY: 100, Rows: [][]string{{"{{table:items}}"}}, Size: 1800,
	}))
	cell := shape.Table().Cell(0, 0)

	cell.SetText("n/a")
	assert.Equal(t, "n/a", cell.Text())

	// tcPr follows the text body
	kids := cell.el.ChildElements()
	require.Len(t, kids, 2)
	assert.Equal(t, "txBody", kids[0].Tag)
	assert.Equal(t, "tcPr", kids[1].Tag)
}

func TestCellSetFont(t *testing.T) {
	shape := firstShape(t, testdeck.TableShape(2, "Tbl", testdeck.Table{
		CX: 100, CY: 100, Rows: [][]string{{"a", "b"}}, Size: 1800,
	}))
	tbl := shape.Table()

	bold := true
	for _, c := range tbl.Cells() {
		c.SetFont(Font{Size: 11, Bold: &bold})
	}

	for _, c := range tbl.Cells() {
		for _, p := range c.TextFrame().Paragraphs() {
			for _, r := range p.Runs() {
				f := r.Font()
				assert.Equal(t, 11.0, f.Size)
				require.NotNil(t, f.Bold)
				assert.True(t, *f.Bold)
			}
		}
	}
}

func TestNewTableCellsAreWritable(t *testing.T) {
	pres := openDeck(t, testdeck.New().Slide(
		testdeck.TableShape(2, "Anchor", testdeck.Table{CX: 100, CY: 100, Rows: [][]string{{"x"}}}),
	))
	slide := pres.Slides()[0]
	shape, err := slide.ReplaceWithTable(slide.Shapes()[0], Geometry{CX: 100, CY: 100}, 2, 2)
	require.NoError(t, err)

	tbl := shape.Table()
	tbl.Cell(0, 0).SetText("name")
	tbl.Cell(1, 1).SetText("42")

	out, err := pres.Bytes()
	require.NoError(t, err)
	reopened, err := OpenBytes(out)
	require.NoError(t, err)

	got := reopened.Slides()[0].Shapes()[0].Table()
	require.NotNil(t, got)
	assert.Equal(t, "name", got.Cell(0, 0).Text())
	assert.Equal(t, "42", got.Cell(1, 1).Text())
	assert.Equal(t, "", got.Cell(0, 1).Text())
}
