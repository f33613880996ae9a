package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bunsho/internal/models"
)

// extractExcel captures each sheet as a table grid and flattens rows into
// tab-separated text so spreadsheet content is chunkable like any other text.
func extractExcel(path string, data []byte) *models.ExtractedContent {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return degraded(fmt.Errorf("open spreadsheet: %w", err))
	}
	defer f.Close()

	var buf strings.Builder
	var tables []models.Table
	var warnings []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		if len(rows) == 0 {
			continue
		}
		tables = append(tables, models.Table{Name: sheet, Rows: rows})
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	content := newContent(buf.String())
	content.PageCount = len(f.GetSheetList())
	content.ExtractedTables = tables
	content.Warnings = warnings
	content.Confidence = 0.9
	if len(tables) == 0 {
		content.Confidence = 0.3
		content.Warnings = append(content.Warnings, "no readable sheets")
	}
	content.Metadata["sheet_count"] = len(f.GetSheetList())
	return content
}
