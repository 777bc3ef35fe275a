package ocr

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// extractXLSX flattens every sheet of a workbook into tab-separated
// rows so financial tables survive as parseable text.
func extractXLSX(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", eris.Wrap(err, "ocr: open xlsx")
	}

	var sb strings.Builder
	for _, sheet := range f.Sheets {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Sheet: " + sheet.Name + "\n")
		for _, row := range sheet.Rows {
			cells := make([]string, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = cell.String()
			}
			line := strings.TrimRight(strings.Join(cells, "\t"), "\t ")
			if line != "" {
				sb.WriteString(line + "\n")
			}
		}
	}
	return sb.String(), nil
}
