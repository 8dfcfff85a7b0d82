package components

import (
	"strings"

	"github.com/difylang/dbagent/ui/styles"
)

func RenderStatus(status, sessionID string, loading bool, loadingDots, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	if loading {
		statusContent += strings.Repeat(".", loadingDots)
	}
	if sessionID != "" {
		statusContent += "  |  " + sessionID
	}

	return statusStyle.Render(statusContent)
}
