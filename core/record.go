package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Record is one spreadsheet/CSV row keyed by its header cells.
type Record map[string]string

// NormalizeHeader lowers a header and drops everything but letters and digits,
// so "Nama Lengkap", "nama_lengkap" and "NAMA-LENGKAP" all become "namalengkap".
func NormalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Get returns the first non-blank trimmed value among the headers matching names, in
// order: exact header names first, then normalized ones.
func (r Record) Get(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r[name]); v != "" {
			return v
		}
	}
	for _, name := range names {
		want := NormalizeHeader(name)
		for k, v := range r {
			if NormalizeHeader(k) != want {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Int returns the value of Get parsed as an int, 0 when empty or invalid.
func (r Record) Int(names ...string) int {
	v := r.Get(names...)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// Table is a named sheet of rows ready to be written to a workbook.
type Table struct {
	Name    string
	Columns []string
	Widths  []float64
	Rows    [][]interface{}
}
