// Package xlsx implements the tabular store ports on top of .xlsx workbooks.
// Every table lives on the first sheet of its workbook with a header row;
// columns are located by header name so their order does not matter.
package xlsx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// table is the decoded content of a workbook's first sheet.
type table struct {
	index map[string]int // header name -> column
	rows  [][]string
}

// get returns the raw value of column name in row, or "" when
// the column is absent or the row is short.
func (t *table) get(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// readTable opens path and decodes its first sheet. required lists header
// names that must be present.
func readTable(path string, required ...string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w: workbook has no sheets", path, driven.ErrDataFormat)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	t := &table{index: make(map[string]int)}
	if len(rows) > 0 {
		for i, name := range rows[0] {
			name = strings.TrimSpace(name)
			if _, dup := t.index[name]; name != "" && !dup {
				t.index[name] = i
			}
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := t.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: missing columns %s", path, driven.ErrDataFormat, strings.Join(missing, ", "))
	}

	if len(rows) > 1 {
		for _, row := range rows[1:] {
			if !isBlank(row) {
				t.rows = append(t.rows, row)
			}
		}
	}
	return t, nil
}

// writeTable replaces path with a single-sheet workbook holding header and
// rows. Canonical integers in the columns named by numeric are written as
// numbers; every other cell is written as text.
func writeTable(path, sheet string, header []string, rows [][]string, numeric ...string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet %s: %w", sheet, err)
		}
	} else {
		sheet = "Sheet1"
	}

	numCols := make(map[int]bool, len(numeric))
	for i, name := range header {
		if slices.Contains(numeric, name) {
			numCols[i] = true
		}
	}

	if err := writeRow(f, sheet, 1, header, nil); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row, numCols); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string, numCols map[int]bool) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	row := make([]any, len(values))
	for i, v := range values {
		if !numCols[i] {
			row[i] = v
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && strconv.Itoa(n) == v {
			row[i] = n
			continue
		}
		row[i] = v
	}

	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
