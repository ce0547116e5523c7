// Package sniffer detects the layout of delimited agricultural exports:
// delimiter, header row contents and a fingerprint used to recognise
// recurring report formats.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/gocarina/gocsv"
)

// Delimiters in tie-break order.
var Delimiters = []rune{',', ';', '\t', '|'}

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoHeadersFound   = errors.New("could not find data headers")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// FileConfig holds the detected layout of a delimited file
type FileConfig struct {
	Delimiter   rune
	Headers     []string
	Fingerprint string     // SHA256 of normalized headers
	SampleRows  [][]string // first few data rows
}

// NewReader returns a lenient CSV reader for the given delimiter.
// Rows with a field count different from the header are reported as errors.
func NewReader(r io.Reader, delimiter rune) gocsv.CSVReader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	return reader
}

// DetectConfig analyzes the first line of a delimited file.
func DetectConfig(data []byte) (*FileConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	firstLine, _, _ := strings.Cut(string(data), "\n")
	line := cleanLine(firstLine)
	if line == "" {
		return nil, ErrNoHeadersFound
	}

	delimiter, _ := DetectDelimiter(line)
	if delimiter == 0 {
		// single-column file
		delimiter = ','
	}

	headers, err := NewReader(strings.NewReader(line), delimiter).Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter:   delimiter,
		Headers:     headers,
		Fingerprint: Fingerprint(headers),
		SampleRows:  sampleRows(data, delimiter, 5),
	}, nil
}

// DetectDelimiter returns the most frequent candidate delimiter in line and
// its count. Ties go to the earlier entry in Delimiters.
func DetectDelimiter(line string) (rune, int) {
	best := rune(0)
	bestCount := 0
	for _, d := range Delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			best = d
		}
	}
	return best, bestCount
}

// Fingerprint hashes normalized header names so the same report layout
// always yields the same value.
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimPrefix(line, "\uFEFF")
	return strings.TrimSpace(line)
}

func sampleRows(data []byte, delimiter rune, maxRows int) [][]string {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\uFEFF"))))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if line > 0 {
			rows = append(rows, record)
			if len(rows) >= maxRows {
				break
			}
		}
		line++
	}
	return rows
}
