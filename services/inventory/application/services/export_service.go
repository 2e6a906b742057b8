package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// ExportFormat selects the rendering of an export download.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseExportFormat accepts "csv" and "xlsx"; blank means csv.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", inventorydomain.ErrValidation, s)
	}
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// ExportService renders one category of the ledger for download.
type ExportService struct {
	ledger *LedgerService
	now    func() time.Time
}

// NewExportService returns an ExportService reading from ledger.
func NewExportService(ledger *LedgerService) *ExportService {
	return &ExportService{ledger: ledger, now: time.Now}
}

// Export renders the items of category matching query, the same view the
// item list shows, in the requested format. A blank query exports the whole category.
func (e *ExportService) Export(ctx context.Context, category models.ItemType, query string, format ExportFormat) (ExportFile, error) {
	if !category.Valid() {
		return ExportFile{}, fmt.Errorf("%w: unknown category %q", inventorydomain.ErrValidation, category)
	}
	items := slices.Collect(domainsvcs.Filter(e.ledger.Items(ctx), category, query))
	now := e.now()

	switch format {
	case FormatCSV:
		return ExportFile{
			Name:        domainsvcs.ExportFileName(category, now, string(FormatCSV)),
			ContentType: contentTypeCSV,
			Body:        []byte(domainsvcs.ToDelimitedText(items, category)),
		}, nil
	case FormatXLSX:
		body, err := e.Workbook(items, category)
		if err != nil {
			return ExportFile{}, err
		}
		return ExportFile{
			Name:        domainsvcs.ExportFileName(category, now, string(FormatXLSX)),
			ContentType: contentTypeXLSX,
			Body:        body,
		}, nil
	default:
		return ExportFile{}, fmt.Errorf("%w: unknown export format %q", inventorydomain.ErrValidation, format)
	}
}

// Workbook renders items as a single-sheet .xlsx file with the same columns
// as the delimited export. Stock cells are numeric.
func (e *ExportService) Workbook(items []models.Item, category models.ItemType) ([]byte, error) {
	header, rows := domainsvcs.ExportTable(items, category)

	f := excelize.NewFile()
	defer f.Close()

	sheet := category.Label()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("workbook style: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("workbook header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("workbook header: %w", err)
		}
	}

	stockCol := slices.Index(header, "Stock")
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value any = v
			if c == stockCol {
				if n, err := strconv.Atoi(v); err == nil {
					value = n
				}
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("workbook row %d: %w", r+1, err)
			}
		}
	}

	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 20.0
		if i == stockCol {
			width = 10
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("workbook width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("workbook write: %w", err)
	}
	return buf.Bytes(), nil
}
