package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestOpen(t *testing.T) {
	tests := []struct {
		path string
		want Source
	}{
		{"rows.json", &JSONFile{Path: "rows.json"}},
		{"rows.JSON", &JSONFile{Path: "rows.JSON"}},
		{"rows.xlsx", &Spreadsheet{Path: "rows.xlsx"}},
		{"rows.xlsm", &Spreadsheet{Path: "rows.xlsm"}},
	}
	for _, tt := range tests {
		got, err := Open(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got)
	}

	_, err := Open("rows.csv")
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestJSONFile(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		path := writeFile(t, "rows.json", `[{"jeschro_content":"{\"a\":1}"},{"jeschro_content":null}]`)
		rows, err := (&JSONFile{Path: path}).Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, `{"a":1}`, rows[0]["jeschro_content"])
		assert.Nil(t, rows[1]["jeschro_content"])
	})

	t.Run("value envelope", func(t *testing.T) {
		path := writeFile(t, "rows.json", `{"@odata.context":"x","value":[{"jeschro_content":"{}"}]}`)
		rows, err := (&JSONFile{Path: path}).Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("errors", func(t *testing.T) {
		for _, body := range []string{`{`, `{"rows":[]}`, `"x"`, `[1,2]`} {
			_, err := (&JSONFile{Path: writeFile(t, "rows.json", body)}).Fetch(context.Background())
			assert.Error(t, err, body)
		}
		_, err := (&JSONFile{Path: filepath.Join(t.TempDir(), "missing.json")}).Fetch(context.Background())
		assert.Error(t, err)
	})
}

func TestSpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"jeschro_content", "", "note"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{`{"a":1}`, "ignored", "first"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{`{"a":2}`}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]interface{}{"x"}))
	require.NoError(t, f.SetSheetRow("Other", "A2", &[]interface{}{"y"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := (&Spreadsheet{Path: path}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []content.Row{
		{"jeschro_content": `{"a":1}`, "note": "first"},
		{"jeschro_content": `{"a":2}`, "note": ""},
	}, rows)

	rows, err = (&Spreadsheet{Path: path, Sheet: "Other"}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []content.Row{{"x": "y"}}, rows)

	_, err = (&Spreadsheet{Path: path, Sheet: "Nope"}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestRowsFromGridEmpty(t *testing.T) {
	assert.Empty(t, rowsFromGrid(nil))
	assert.Empty(t, rowsFromGrid([][]string{{"a", "b"}}))
}

func TestStatic(t *testing.T) {
	src := Static{{"a": "1"}}
	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
