// Package census reads e-Stat regional mesh statistics files and aggregates
// them to coarser mesh levels.
//
// The distributed text files carry two header lines: machine column codes
// (KEY_CODE, HTKSYORI, HTKSAKI, GASSAN, T001227001, ...) followed by Japanese
// labels. Identity columns have empty labels, so the merged header uses the
// label when present and the code otherwise. "*" marks a suppressed value.
package census

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding identifies the character set of an input file.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	ShiftJIS Encoding = "shift_jis"
)

// ParseEncoding accepts the names used on the command line.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "utf_8", "utf8":
		return UTF8, nil
	case "shift_jis", "sjis", "cp932":
		return ShiftJIS, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", s)
	}
}

// identityColumns is the number of leading string columns: KEY_CODE,
// HTKSYORI, HTKSAKI, GASSAN.
const identityColumns = 4

// Missing is the suppressed-value marker.
const Missing = "*"

// Table is a parsed statistics file. Each row is aligned with Headers.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Record is the numeric view of one row.
type Record struct {
	KeyCode string
	Values  map[string]float64
}

// Parse reads a statistics file in the given encoding.
func Parse(r io.Reader, enc Encoding) (*Table, error) {
	switch enc {
	case ShiftJIS:
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	case UTF8, "":
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	codes, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read code header: %w", err)
	}
	labels, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read label header: %w", err)
	}
	if len(codes) < identityColumns {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(codes), identityColumns)
	}

	t := &Table{Headers: mergeHeaders(codes, labels)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, alignRow(rec, len(t.Headers)))
	}
	return t, nil
}

// mergeHeaders prefers the label of each column, falling back to its code.
func mergeHeaders(codes, labels []string) []string {
	headers := make([]string, len(codes))
	for i, code := range codes {
		label := ""
		if i < len(labels) {
			label = strings.TrimSpace(labels[i])
		}
		if label != "" {
			headers[i] = label
		} else {
			headers[i] = strings.TrimSpace(code)
		}
	}
	return headers
}

// alignRow pads or trims rec to n fields.
func alignRow(rec []string, n int) []string {
	row := make([]string, n)
	copy(row, rec)
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	return row
}

// WriteCSV writes the table as UTF-8 CSV with the merged header. Suppressed
// values are written as empty fields.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		out := make([]string, len(row))
		for j, v := range row {
			if v != Missing {
				out[j] = v
			}
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Records converts the statistic columns to numbers. Missing or unparseable
// values become 0.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := Record{
			KeyCode: row[0],
			Values:  make(map[string]float64, len(row)-identityColumns),
		}
		for j := identityColumns; j < len(row); j++ {
			rec.Values[t.Headers[j]] = parseValue(row[j])
		}
		out = append(out, rec)
	}
	return out
}

func parseValue(s string) float64 {
	if s == "" || s == Missing {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
