package update

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/difylang/dbagent/internal/dispatcher"
	"github.com/difylang/dbagent/internal/eventbus"
	"github.com/difylang/dbagent/internal/models"
)

// HandleKeyMsgWithEventBus handles keyboard input using the event bus. The
// send affordance is disabled while a reply is awaited; the session gate
// rejects re-entrant sends on its own, this is just the UI half of it.
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "enter":
		if appModel.Loading {
			appModel.Status = "等待回复中"
			return nil
		}
		if strings.TrimSpace(appModel.Input) != "" {
			if err := eb.SendToCore(eventbus.SendMessageEvent{Message: appModel.Input}); err != nil {
				appModel.Status = "Error sending message: " + err.Error()
				return nil
			}
			appModel.Input = ""
		}
	case "ctrl+y":
		return answerConfirmation(appModel, eb, true)
	case "ctrl+n":
		return answerConfirmation(appModel, eb, false)
	case "ctrl+l":
		if err := eb.SendToCore(eventbus.ClearConversationEvent{}); err != nil {
			appModel.Status = "Error clearing conversation: " + err.Error()
		}
	case "backspace":
		if len(appModel.Input) > 0 {
			runes := []rune(appModel.Input)
			appModel.Input = string(runes[:len(runes)-1])
		}
	default:
		if keyMsg.Type == tea.KeyRunes {
			appModel.Input += string(keyMsg.Runes)
		} else if keyMsg.Type == tea.KeySpace {
			appModel.Input += " "
		}
	}
	return nil
}

func answerConfirmation(appModel *models.AppModel, eb *eventbus.EventBus, approved bool) tea.Cmd {
	pending := appModel.PendingConfirmation
	if pending == nil || pending.Loading || appModel.Loading {
		return nil
	}
	if err := eb.SendToCore(eventbus.ConfirmationAnswerEvent{Approved: approved}); err != nil {
		appModel.Status = "Error answering confirmation: " + err.Error()
	}
	return nil
}

// HandleCoreEvent processes events from the core.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg dispatcher.CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Messages = event.Messages
		appModel.Loading = event.AwaitingReply
		appModel.SessionID = event.SessionID
		appModel.PendingConfirmation = event.PendingConfirmation

		switch {
		case event.Error != nil:
			appModel.Status = "Error: " + event.Error.Error()
		case event.AwaitingReply:
			appModel.Status = "Processing"
		default:
			appModel.Status = "Ready"
		}
	case eventbus.DatasetUpdateEvent:
		appModel.Dataset = event.Dataset
	case eventbus.SchemaUpdateEvent:
		appModel.Schema = event.Schema
	}

	return nil
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Loading {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}
