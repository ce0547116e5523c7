// Package extractor turns raw delimited or spreadsheet bytes into
// header-keyed rows.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest"
	"github.com/FACorreiaa/agro-ingest/internal/domain/ingest/sniffer"
)

// Table is the result of a single-table extraction.
type Table struct {
	Sheet       string // empty for delimited input
	Headers     []string
	Rows        []ingest.RawRow
	Delimiter   rune
	Fingerprint string
}

// ExtractDelimited reads delimited text whose first line is the header.
// Any malformed row fails the whole extraction.
func ExtractDelimited(data []byte) (*Table, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, ingest.NewFormatError("cannot decode text", err)
	}

	cfg, err := sniffer.DetectConfig(text)
	if err != nil {
		if errors.Is(err, sniffer.ErrEmptyFile) {
			return nil, ingest.NewFormatError("file is empty", nil)
		}
		return nil, ingest.NewFormatError("cannot read header", err)
	}

	records, err := sniffer.NewReader(bytes.NewReader(text), cfg.Delimiter).ReadAll()
	if err != nil {
		return nil, ingest.NewFormatError("malformed row", err)
	}

	headers := cleanHeaders(records[0])
	rows := make([]ingest.RawRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := ingest.NewRawRow(i+1, headers, rec)
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ingest.NewFormatError("no data rows", nil)
	}

	return &Table{
		Headers:     headers,
		Rows:        rows,
		Delimiter:   cfg.Delimiter,
		Fingerprint: cfg.Fingerprint,
	}, nil
}

// ExtractSpreadsheet reads the first sheet of a workbook. Row 0 holds the
// headers; later rows are zipped with them positionally.
func ExtractSpreadsheet(data []byte) (*Table, error) {
	f, err := OpenWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return FirstSheet(f)
}

// FirstSheet is ExtractSpreadsheet over an already opened workbook.
func FirstSheet(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ingest.NewFormatError("workbook has no sheets", nil)
	}
	name := sheets[0]

	grid, err := f.GetRows(name)
	if err != nil {
		return nil, ingest.NewFormatError(fmt.Sprintf("cannot read sheet %q", name), err)
	}
	if len(grid) < 2 {
		return nil, ingest.NewFormatError("sheet needs a header row and at least one data row", nil)
	}

	headers := cleanHeaders(grid[0])
	rows := make([]ingest.RawRow, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		row := ingest.NewRawRow(i, headers, grid[i])
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ingest.NewFormatError("no data rows", nil)
	}

	return &Table{
		Sheet:       name,
		Headers:     headers,
		Rows:        rows,
		Fingerprint: sniffer.Fingerprint(headers),
	}, nil
}

// ExtractMultiSheet reads every sheet in workbook order. Cell values are
// raw so date serials stay numeric. All-blank rows are dropped.
func ExtractMultiSheet(data []byte) ([]ingest.Sheet, error) {
	f, err := OpenWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return SheetsFromWorkbook(f)
}

// SheetsFromWorkbook is ExtractMultiSheet over an already opened workbook.
func SheetsFromWorkbook(f *excelize.File) ([]ingest.Sheet, error) {
	names := f.GetSheetList()
	sheets := make([]ingest.Sheet, 0, len(names))
	for _, name := range names {
		grid, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, ingest.NewFormatError(fmt.Sprintf("cannot read sheet %q", name), err)
		}

		sheet := ingest.Sheet{Name: name}
		if len(grid) > 0 {
			headers := cleanHeaders(grid[0])
			for i := 1; i < len(grid); i++ {
				row := ingest.NewRawRow(i, headers, grid[i])
				if row.IsBlank() {
					continue
				}
				sheet.Rows = append(sheet.Rows, row)
			}
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// OpenWorkbook opens an in-memory workbook. Callers must Close it.
func OpenWorkbook(data []byte) (*excelize.File, error) {
	if len(data) == 0 {
		return nil, ingest.NewFormatError("file is empty", nil)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, ingest.NewFormatError("unreadable workbook", err)
	}
	return f, nil
}

func cleanHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

// decodeText returns UTF-8 text without a byte order mark. UTF-16 input is
// recognised by its BOM; other invalid UTF-8 is read as Windows-1252, the
// usual encoding of spreadsheet exports on Windows.
func decodeText(data []byte) ([]byte, error) {
	if utf8.Valid(data) || hasUTF16BOM(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		return out, err
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	return out, err
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
