package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/difylang/dbagent/internal/client"
	"github.com/difylang/dbagent/internal/eventbus"
	"github.com/difylang/dbagent/internal/models"
)

// Literal tokens the agent expects as answers to a confirmation request. The
// backend matches these exact strings, so the affirm/decline affordance sends
// them through the ordinary message path rather than a structured signal.
const (
	TokenAffirm  = "是"
	TokenDecline = "否"
)

var (
	// ErrSendInFlight is returned when a send is attempted while an earlier
	// exchange has not settled. The attempt is a no-op: nothing queued,
	// nothing appended.
	ErrSendInFlight = errors.New("a message exchange is already in flight")

	// ErrEmptyMessage is returned when the text trims to nothing.
	ErrEmptyMessage = errors.New("message is empty")
)

// Agent is the network collaborator that carries one exchange with the
// remote database-operations agent.
type Agent interface {
	SendMessage(ctx context.Context, text, sessionID string) (*client.ChatResponse, error)
}

// DatasetPublisher receives every successfully extracted tabular dataset and
// is reset together with the conversation.
type DatasetPublisher interface {
	PublishDataset(ds *models.TabularDataset)
	Reset()
}

// ChatService orchestrates the send/receive cycle: it owns the SessionState,
// runs the incoming assistant text through the classifier and the extractor,
// and pushes the reconciled state to the UI over the event bus.
type ChatService struct {
	agent    Agent
	state    *SessionState
	display  DatasetPublisher
	eventBus *eventbus.EventBus
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewChatService(agent Agent, display DatasetPublisher, eb *eventbus.EventBus, logger *zap.Logger) *ChatService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatService{
		agent:    agent,
		state:    NewSessionState(),
		display:  display,
		eventBus: eb,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State exposes the session state for read access.
func (cs *ChatService) State() *SessionState {
	return cs.state
}

// Start runs the core event loop in a goroutine.
func (cs *ChatService) Start() {
	cs.pushStateToUI()
	go cs.eventLoop()
}

func (cs *ChatService) Stop() {
	cs.cancel()
}

func (cs *ChatService) eventLoop() {
	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return
			}
			cs.handleUIEvent(event)
		}
	}
}

// handleUIEvent processes events sequentially; all session transitions happen
// on this loop, never in parallel with each other.
func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		if err := cs.Send(e.Message); err != nil {
			cs.logger.Debug("send rejected", zap.Error(err))
		}
	case eventbus.ClearConversationEvent:
		cs.Clear()
	case eventbus.ConfirmationAnswerEvent:
		cs.answerConfirmation(e.Approved)
	}
}

// Send performs one full exchange: append the user message, call the agent,
// classify and extract the reply, append the assistant (or synthetic error)
// message. The awaiting-reply gate is released on every exit path; faults are
// turned into log entries, never returned. The only errors returned are the
// rejection indicators for an in-flight exchange or empty input.
func (cs *ChatService) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if !cs.state.BeginSend(text) {
		return ErrSendInFlight
	}
	cs.pushStateToUI()

	resp, err := cs.agent.SendMessage(cs.ctx, text, cs.state.SessionID())
	if err != nil {
		cs.logger.Warn("exchange failed",
			zap.String("session_id", cs.state.SessionID()),
			zap.Error(err))
		cs.state.FinishWithFault(faultText(err), err)
		cs.pushStateToUI()
		return nil
	}

	if !resp.Success && resp.Error != "" {
		cs.logger.Warn("agent reported error", zap.String("error", resp.Error))
	}

	detection := Classify(resp.Message)
	var confirmation *models.ConfirmationRequest
	if detection.IsConfirmation {
		confirmation = confirmationFromDetection(detection, resp.Message)
		cs.logger.Info("confirmation request detected",
			zap.String("category", string(detection.Category)),
			zap.Bool("dangerous", detection.Dangerous))
	}

	cs.state.FinishWithReply(resp.Message, resp.SessionID, confirmation)

	if dataset, ok := ExtractDataset(resp.Message); ok {
		cs.display.PublishDataset(dataset)
		if err := cs.eventBus.SendToUI(eventbus.DatasetUpdateEvent{Dataset: dataset}); err != nil {
			cs.logger.Warn("failed to publish dataset", zap.Error(err))
		}
	}

	cs.pushStateToUI()
	return nil
}

// Clear resets the conversation and issues a fresh session id. Always
// succeeds and never asks for confirmation itself.
func (cs *ChatService) Clear() {
	cs.state.Clear()
	cs.display.Reset()
	cs.logger.Info("conversation cleared", zap.String("session_id", cs.state.SessionID()))
	cs.pushStateToUI()
}

// answerConfirmation sends the literal affirmative or negative token for the
// pending confirmation. The send goes through the ordinary path and is
// therefore subject to the in-flight gate.
func (cs *ChatService) answerConfirmation(approved bool) {
	if cs.state.PendingConfirmation() == nil {
		return
	}

	token := TokenDecline
	if approved {
		token = TokenAffirm
	}

	cs.state.SetConfirmationLoading(true)
	cs.pushStateToUI()

	if err := cs.Send(token); err != nil {
		cs.state.SetConfirmationLoading(false)
		cs.pushStateToUI()
	}
}

// confirmationFromDetection builds the request shown by the UI, filling title
// and description from the per-category defaults.
func confirmationFromDetection(d Detection, content string) *models.ConfirmationRequest {
	defaults := categoryDefaults(d.Category)
	return &models.ConfirmationRequest{
		Category:    d.Category,
		Title:       defaults.title,
		Description: defaults.description,
		Content:     content,
		Dangerous:   d.Dangerous,
	}
}

func (cs *ChatService) pushStateToUI() {
	if err := cs.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:            cs.state.Messages(),
		SessionID:           cs.state.SessionID(),
		AwaitingReply:       cs.state.AwaitingReply(),
		PendingConfirmation: cs.state.PendingConfirmation(),
		Error:               cs.state.LastError(),
	}); err != nil {
		cs.logger.Warn("failed to push state to UI", zap.Error(err))
	}
}
