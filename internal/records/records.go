// Package records loads input rows from local files.
package records

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"

	"github.com/benjaminschreck/go-slides/internal/dataverse"
	"github.com/benjaminschreck/go-slides/pkg/slides/content"
)

// ErrUnsupported is returned by Open for unknown file extensions.
var ErrUnsupported = errors.New("unsupported records file")

// Source yields the rows for one run.
type Source interface {
	Fetch(ctx context.Context) ([]content.Row, error)
}

// Open picks a source from the file extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONFile{Path: path}, nil
	case ".xlsx", ".xlsm":
		return &Spreadsheet{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
}

// Static serves rows held in memory.
type Static []content.Row

// Fetch returns the rows.
func (s Static) Fetch(ctx context.Context) ([]content.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// JSONFile reads an array of row objects, either at the top level or under a
// Web API style "value" envelope.
type JSONFile struct {
	Path string
}

// Fetch reads and parses the file.
func (f *JSONFile) Fetch(ctx context.Context) ([]content.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	rows, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return rows, nil
}

// ParseJSON decodes rows from data.
func ParseJSON(data []byte) ([]content.Row, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	res := gjson.ParseBytes(data)
	if res.IsObject() {
		res = res.Get("value")
	}
	if !res.IsArray() {
		return nil, errors.New("expected an array of rows or an object with a \"value\" array")
	}
	return dataverse.RowsFromJSON(res)
}

// Spreadsheet reads rows from a worksheet whose first row holds the field names.
type Spreadsheet struct {
	Path string
	// Sheet defaults to the first sheet in the workbook.
	Sheet string
}

// Fetch reads the worksheet.
func (s *Spreadsheet) Fetch(ctx context.Context) ([]content.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s: workbook has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rowsFromGrid(raw), nil
}

// rowsFromGrid keys each data row by the header row. Blank header cells drop
// their column and fully blank data rows are skipped.
func rowsFromGrid(grid [][]string) []content.Row {
	rows := []content.Row{}
	if len(grid) == 0 {
		return rows
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	for _, line := range grid[1:] {
		row := make(content.Row)
		blank := true
		for j, header := range headers {
			if header == "" {
				continue
			}
			var cell string
			if j < len(line) {
				cell = line[j]
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			row[header] = cell
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}
