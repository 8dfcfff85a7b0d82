package dispatcher

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/difylang/dbagent/internal/eventbus"
)

// CoreEventMsg wraps a core event for Bubble Tea's update loop.
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// EventDispatcher bridges the core's event stream into Bubble Tea commands.
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus) *EventDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ListenForUIEvents returns a command that delivers the next core event. The
// UI re-issues it after each delivery to keep the stream flowing.
func (ed *EventDispatcher) ListenForUIEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ed.ctx.Done():
			return nil
		case event, ok := <-ed.eventBus.CoreToUI():
			if !ok {
				return nil
			}
			return CoreEventMsg{Event: event}
		}
	}
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}
