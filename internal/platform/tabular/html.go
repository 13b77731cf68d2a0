package tabular

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"holdings_backend/internal/feature/holdings/domain"
	"holdings_backend/internal/feature/holdings/domain/entity"
)

// ParseHTMLTables extracts every <table> in document order. Multi-row headers
// are flattened by joining the parts of each column with a space. It returns
// domain.ErrNoTables when the document has none.
func ParseHTMLTables(body []byte) ([]*entity.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: html: %v", domain.ErrParse, err)
	}

	var tables []*entity.Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if t := parseTable(sel); t != nil {
			tables = append(tables, t)
		}
	})
	if len(tables) == 0 {
		return nil, domain.ErrNoTables
	}
	return tables, nil
}

func parseTable(sel *goquery.Selection) *entity.Table {
	var headerRows, bodyRows [][]string

	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// skip rows that belong to a nested table
		if !tr.ParentsFiltered("table").First().IsSelection(sel) {
			return
		}
		cells := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		inHead := tr.ParentsFiltered("thead").Length() > 0
		allTH := tr.Find("td").Length() == 0
		if inHead || (len(bodyRows) == 0 && allTH) {
			headerRows = append(headerRows, cells)
			return
		}
		bodyRows = append(bodyRows, cells)
	})

	if len(headerRows) == 0 && len(bodyRows) == 0 {
		return nil
	}

	width := 0
	for _, r := range append(headerRows, bodyRows...) {
		if len(r) > width {
			width = len(r)
		}
	}

	t := entity.NewTable(flattenHeader(headerRows, width)...)
	for _, r := range bodyRows {
		row := make([]any, width)
		for i, v := range r {
			if v != "" {
				row[i] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// rowCells returns the text of each cell, repeating cells that span columns.
func rowCells(tr *goquery.Selection) []string {
	var out []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
		text := strings.Join(strings.Fields(cell.Text()), " ")
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			out = append(out, text)
		}
	})
	return out
}

func flattenHeader(rows [][]string, width int) []string {
	cols := make([]string, width)
	for i := range cols {
		var parts []string
		for _, r := range rows {
			if i < len(r) && r[i] != "" && (len(parts) == 0 || parts[len(parts)-1] != r[i]) {
				parts = append(parts, r[i])
			}
		}
		cols[i] = strings.Join(parts, " ")
		if cols[i] == "" {
			cols[i] = strconv.Itoa(i)
		}
	}
	return uniqueHeaders(cols)
}

// FindCSVLink returns the first href whose path ends in ".csv", resolved
// against base.
func FindCSVLink(body []byte, base string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}

	var found string
	doc.Find("[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		if strings.HasSuffix(strings.ToLower(ref.Path), ".csv") {
			found = baseURL.ResolveReference(ref).String()
			return false
		}
		return true
	})
	return found, found != ""
}
