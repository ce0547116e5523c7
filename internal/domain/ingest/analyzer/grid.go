package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// styleCache memoizes GetStyle lookups for one workbook.
type styleCache struct {
	f      *excelize.File
	styles map[int]*excelize.Style
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, styles: make(map[int]*excelize.Style)}
}

func (c *styleCache) get(id int) (*excelize.Style, error) {
	if st, ok := c.styles[id]; ok {
		return st, nil
	}
	st, err := c.f.GetStyle(id)
	if err != nil {
		return nil, err
	}
	c.styles[id] = st
	return st, nil
}

// readGrid loads every cell of the sheet's populated range, anchored at A1.
// The range covers values, the declared dimension and every stored cell
// record, so styled empty cells count even when the dimension is stale.
// It only touches the workbook; tagging happens later.
func readGrid(f *excelize.File, sheet string, styles *styleCache) (*Grid, error) {
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", sheet, err)
	}
	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", sheet, err)
	}

	rng := Range{EndRow: len(raw) - 1}
	for _, row := range raw {
		rng.EndCol = max(rng.EndCol, len(row)-1)
	}
	if endRow, endCol, ok := dimension(f, sheet); ok {
		rng.EndRow = max(rng.EndRow, endRow)
		rng.EndCol = max(rng.EndCol, endCol)
	}
	endRow, endCol, err := cellExtent(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cells of %q: %w", sheet, err)
	}
	rng.EndRow = max(rng.EndRow, endRow, 0)
	rng.EndCol = max(rng.EndCol, endCol)

	g := &Grid{Sheet: sheet, Range: rng, cells: make([][]*CellInfo, rng.EndRow+1)}
	for r := 0; r <= rng.EndRow; r++ {
		g.cells[r] = make([]*CellInfo, rng.EndCol+1)
		for c := 0; c <= rng.EndCol; c++ {
			cell, err := readCell(f, sheet, styles, r, c, at(raw, r, c), at(display, r, c))
			if err != nil {
				return nil, err
			}
			g.cells[r][c] = cell
		}
	}
	return g, nil
}

func readCell(f *excelize.File, sheet string, styles *styleCache, r, c int, value, display string) (*CellInfo, error) {
	addr, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return nil, err
	}
	cell := &CellInfo{Address: addr, Row: r, Col: c, Value: value, DisplayValue: display}

	if cell.Formula, err = f.GetCellFormula(sheet, addr); err != nil {
		return nil, fmt.Errorf("failed to read formula of %s!%s: %w", sheet, addr, err)
	}
	ct, err := f.GetCellType(sheet, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to read type of %s!%s: %w", sheet, addr, err)
	}
	cell.Type = cellType(ct, value, cell.Formula)

	if cell.StyleID, err = f.GetCellStyle(sheet, addr); err != nil {
		return nil, fmt.Errorf("failed to read style of %s!%s: %w", sheet, addr, err)
	}
	if cell.StyleID != 0 {
		st, err := styles.get(cell.StyleID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve style %d: %w", cell.StyleID, err)
		}
		cell.NumFmt = st.NumFmt
		cell.Formatting, cell.Colors = deriveStyle(st)
	}
	return cell, nil
}

func cellType(ct excelize.CellType, value, formula string) CellType {
	if formula != "" {
		return CellFormula
	}
	switch ct {
	case excelize.CellTypeBool:
		return CellBool
	case excelize.CellTypeDate:
		return CellDate
	case excelize.CellTypeError:
		return CellError
	case excelize.CellTypeNumber:
		return CellNumber
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return CellString
	}
	if value == "" {
		return CellEmpty
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return CellNumber
	}
	return CellString
}

// dimension returns the 0-based bottom-right corner of the sheet's declared range.
func dimension(f *excelize.File, sheet string) (row, col int, ok bool) {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0, 0, false
	}
	_, end, found := strings.Cut(dim, ":")
	if !found {
		end = dim
	}
	c, r, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return 0, 0, false
	}
	return r - 1, c - 1, true
}

// cellExtent returns the 0-based last row and column holding any cell record.
// GetRows drops cells without a value; the column iterator counts every
// record and the row iterator visits every stored row.
func cellExtent(f *excelize.File, sheet string) (endRow, endCol int, err error) {
	cols, err := f.Cols(sheet)
	if err != nil {
		return -1, -1, err
	}
	for cols.Next() {
		endCol++
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return -1, -1, err
	}
	defer rows.Close()
	for rows.Next() {
		endRow++
	}
	if err := rows.Error(); err != nil {
		return -1, -1, err
	}
	return endRow - 1, endCol - 1, nil
}

func at(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}
