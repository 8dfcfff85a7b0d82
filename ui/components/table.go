package components

import (
	"fmt"
	"strings"

	"github.com/difylang/dbagent/internal/models"
	"github.com/difylang/dbagent/ui/styles"
)

const maxCellWidth = 24

// RenderDataset draws the extracted dataset as a plain grid. Cell values are
// truncated so one wide column cannot push the rest off screen.
func RenderDataset(ds *models.TabularDataset) string {
	if ds == nil || len(ds.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(ds.Columns))
	for i, col := range ds.Columns {
		widths[i] = len([]rune(col))
	}

	cells := make([][]string, len(ds.Rows))
	for r, row := range ds.Rows {
		cells[r] = make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			cell := formatCell(row[col])
			cells[r][i] = cell
			if w := len([]rune(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	var b strings.Builder
	header := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = pad(col, widths[i])
	}
	b.WriteString(styles.TableHeaderStyle().Render(strings.Join(header, " │ ")) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	b.WriteString(strings.Join(sep, "─┼─") + "\n")

	cellStyle := styles.TableCellStyle()
	for _, row := range cells {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = pad(cell, widths[i])
		}
		b.WriteString(cellStyle.Render(strings.Join(padded, " │ ")) + "\n")
	}

	b.WriteString(styles.TableFooterStyle().Render(fmt.Sprintf("共 %d 条记录", ds.Total)))
	return b.String()
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}
