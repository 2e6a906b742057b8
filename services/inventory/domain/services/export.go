package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// byteOrderMark lets spreadsheet tools detect UTF-8.
const byteOrderMark = "\uFEFF"

// blankCell stands in for an empty drawing number.
const blankCell = "-"

type column struct {
	header string
	value  func(models.Item) string
}

var (
	codeColumn  = column{"Code", func(it models.Item) string { return it.Code }}
	nameColumn  = column{"Name", func(it models.Item) string { return it.Name }}
	stockColumn = column{"Stock", func(it models.Item) string { return strconv.Itoa(StockOf(it)) }}

	drawingColumn = column{"Drawing No.", func(it models.Item) string {
		if strings.TrimSpace(it.DrawingNumber) == "" {
			return blankCell
		}
		return it.DrawingNumber
	}}
)

func columnsFor(category models.ItemType) []column {
	if category == models.ItemTypePart {
		return []column{codeColumn, nameColumn, drawingColumn, stockColumn}
	}
	return []column{codeColumn, nameColumn, stockColumn}
}

// ExportTable renders items into the category's column set. Stock is derived
// at call time. Rows follow the input order.
func ExportTable(items []models.Item, category models.ItemType) (header []string, rows [][]string) {
	cols := columnsFor(category)
	header = make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	rows = make([][]string, 0, len(items))
	for _, it := range items {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.value(it)
		}
		rows = append(rows, row)
	}
	return header, rows
}

// ToDelimitedText renders items as comma-separated text with every field
// double-quoted and a leading byte-order mark.
func ToDelimitedText(items []models.Item, category models.ItemType) string {
	header, rows := ExportTable(items, category)
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, quoteRow(header))
	for _, r := range rows {
		lines = append(lines, quoteRow(r))
	}
	return byteOrderMark + strings.Join(lines, "\n")
}

// ExportFileName returns "<category-label>_<YYYY-MM-DD>.<ext>".
func ExportFileName(category models.ItemType, now time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", category.Label(), now.Format(time.DateOnly), ext)
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
