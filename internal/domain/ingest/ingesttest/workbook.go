// Package ingesttest builds in-memory workbooks and delimited files for tests.
package ingesttest

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetSpec is a sheet name plus its rows, first row being the header.
type SheetSpec struct {
	Name string
	Rows [][]any
}

// Workbook writes the given sheets, in order, to an xlsx byte slice.
func Workbook(t testing.TB, sheets ...SheetSpec) []byte {
	t.Helper()
	return Build(t, func(f *excelize.File) {
		for i, s := range sheets {
			name := AddSheet(t, f, i, s.Name)
			for r, row := range s.Rows {
				cell, err := excelize.CoordinatesToCellName(1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				vals := row
				if err := f.SetSheetRow(name, cell, &vals); err != nil {
					t.Fatalf("set row %d of %s: %v", r, name, err)
				}
			}
		}
	})
}

// AddSheet names the default sheet when index is 0 and creates a new sheet otherwise.
func AddSheet(t testing.TB, f *excelize.File, index int, name string) string {
	t.Helper()
	if index == 0 {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
		return name
	}
	if _, err := f.NewSheet(name); err != nil {
		t.Fatalf("new sheet %s: %v", name, err)
	}
	return name
}

// Build runs fn against a fresh workbook and returns the serialized bytes.
func Build(t testing.TB, fn func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	fn(f)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// Fill returns a solid pattern fill style for hex color such as "FF0000".
func Fill(t testing.TB, f *excelize.File, hex string) int {
	t.Helper()
	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
	})
	if err != nil {
		t.Fatalf("new style: %v", err)
	}
	return id
}

// RewritePart replaces old with replacement inside one package part of an
// xlsx file, such as "xl/styles.xml". It fails when old is not present.
func RewritePart(t testing.TB, data []byte, part, old, replacement string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	found := false
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open %s: %v", file.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", file.Name, err)
		}
		if file.Name == part {
			if !bytes.Contains(body, []byte(old)) {
				t.Fatalf("%s does not contain %q", part, old)
			}
			body = bytes.ReplaceAll(body, []byte(old), []byte(replacement))
			found = true
		}
		w, err := zw.Create(file.Name)
		if err != nil {
			t.Fatalf("create %s: %v", file.Name, err)
		}
		if _, err := w.Write(body); err != nil {
			t.Fatalf("write %s: %v", file.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close package: %v", err)
	}
	if !found {
		t.Fatalf("part %s not found", part)
	}
	return buf.Bytes()
}

// Delimited joins rows with sep and CRLF line endings.
func Delimited(sep string, rows ...[]string) []byte {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, sep))
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}
