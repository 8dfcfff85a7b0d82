package components

import (
	"strings"

	"github.com/difylang/dbagent/internal/models"
	"github.com/difylang/dbagent/ui/styles"
)

func RenderMessages(messages []models.Message, pending *models.ConfirmationRequest) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Render("You: "+msg.Content) + "\n\n")
		case models.RoleAssistant:
			b.WriteString(assistantStyle.Render("Agent: "+msg.Content) + "\n\n")
		}
	}

	// The inline affirm/decline affordance replaces any modal dialog so the
	// user cannot end up in a double-confirmation loop.
	if pending != nil {
		b.WriteString(renderConfirmation(pending) + "\n\n")
	}

	return b.String()
}

func renderConfirmation(pending *models.ConfirmationRequest) string {
	var lines []string
	lines = append(lines, pending.Title, pending.Description)
	if pending.Dangerous {
		lines = append(lines, styles.DangerStyle().Render("⚠ 此操作不可撤销，请谨慎确认"))
	}
	if pending.Loading {
		lines = append(lines, "发送中…")
	} else {
		lines = append(lines, "[ctrl+y] 是    [ctrl+n] 否")
	}
	return styles.ConfirmStyle().Render(strings.Join(lines, "\n"))
}
