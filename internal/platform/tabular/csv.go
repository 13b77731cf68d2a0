// Package tabular turns raw CSV, HTML and JSON payloads into entity.Table values.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header row followed by data rows. Blank cells become nil
// and fully blank lines are skipped.
func ParseCSV(body []byte) (*entity.Table, error) {
	body = bytes.TrimPrefix(body, utf8BOM)
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", domain.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: csv header: %v", domain.ErrParse, err)
	}

	t := entity.NewTable(uniqueHeaders(header)...)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", domain.ErrParse, err)
		}
		row := make([]any, len(t.Columns))
		blank := true
		for i, v := range rec {
			if i >= len(row) {
				break
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			row[i] = v
			blank = false
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

// uniqueHeaders suffixes repeated header names with ".1", ".2", ...
func uniqueHeaders(in []string) []string {
	seen := make(map[string]int, len(in))
	out := make([]string, len(in))
	for i, h := range in {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			out[i] = h + "." + strconv.Itoa(n+1)
			continue
		}
		seen[h] = 0
		out[i] = h
	}
	return out
}
