package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/difylang/dbagent/internal/dispatcher"
	"github.com/difylang/dbagent/internal/models"
	"github.com/difylang/dbagent/internal/update"
	"github.com/difylang/dbagent/ui/components"
	"github.com/difylang/dbagent/ui/styles"
)

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Keep listening after each delivered core event
	if coreEvent, ok := msg.(dispatcher.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	eventBus := m.dispatcher.GetEventBus()
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus)

	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(styles.HeaderStyle().Render("DBAGENT · 智能数据库操作终端") + "\n")
	b.WriteString(styles.HeaderStyle().Render("enter 发送 · ctrl+l 清空会话 · ctrl+c 退出") + "\n\n")

	b.WriteString(components.RenderMessages(m.appModel.Messages, m.appModel.PendingConfirmation))

	if grid := components.RenderDataset(m.appModel.Dataset); grid != "" {
		b.WriteString(grid + "\n\n")
	}

	b.WriteString(components.RenderInput(m.appModel.Input, m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.appModel.Status, m.appModel.SessionID, m.appModel.Loading, m.appModel.LoadingDots, m.appModel.Width))

	return b.String()
}
