package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/difylang/dbagent/internal/models"
)

// SessionState is the single source of truth for one conversation: the
// append-only message log, the session identifier and the awaiting-reply gate.
// State transitions that the rest of the system must observe together (gate +
// log + session id) are single mutex-guarded operations so no intermediate
// state is ever visible.
type SessionState struct {
	mu                  sync.RWMutex
	sessionID           string
	messages            []models.Message
	nextMessageID       int64
	pendingInput        string
	awaitingReply       bool
	lastError           error
	pendingConfirmation *models.ConfirmationRequest
}

func NewSessionState() *SessionState {
	return &SessionState{
		sessionID:     newSessionID(),
		messages:      make([]models.Message, 0),
		nextMessageID: 1,
	}
}

func newSessionID() string {
	return "session_" + uuid.NewString()
}

// BeginSend atomically checks the in-flight gate and, if open, appends the
// user message and closes the gate. Returns false without any mutation when a
// reply is already awaited - a rejected send never touches the log.
func (s *SessionState) BeginSend(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.awaitingReply {
		return false
	}

	s.appendLocked(models.RoleUser, content)
	s.pendingInput = ""
	s.awaitingReply = true
	s.lastError = nil
	return true
}

// FinishWithReply atomically appends the assistant message, adopts a
// backend-issued session id when it differs from the current one, replaces the
// pending confirmation with the new detection result (nil clears it) and
// releases the gate.
func (s *SessionState) FinishWithReply(content, newSessionID string, confirmation *models.ConfirmationRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newSessionID != "" && newSessionID != s.sessionID {
		s.sessionID = newSessionID
	}
	s.appendLocked(models.RoleAssistant, content)
	s.pendingConfirmation = confirmation
	s.awaitingReply = false
	s.lastError = nil
}

// FinishWithFault appends a synthetic assistant message describing the failure
// and releases the gate. The fault itself is recorded for the status surface
// but never propagated to the caller of send.
func (s *SessionState) FinishWithFault(userFacing string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(models.RoleAssistant, userFacing)
	s.pendingConfirmation = nil
	s.awaitingReply = false
	s.lastError = cause
}

// Clear empties the log, resets the draft and the gate, drops any pending
// confirmation and issues a fresh session identifier.
func (s *SessionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = make([]models.Message, 0)
	s.nextMessageID = 1
	s.pendingInput = ""
	s.awaitingReply = false
	s.lastError = nil
	s.pendingConfirmation = nil
	s.sessionID = newSessionID()
}

// SetConfirmationLoading flips the loading flag of the pending confirmation
// while its follow-up send is in flight. No-op when nothing is pending.
func (s *SessionState) SetConfirmationLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingConfirmation != nil {
		s.pendingConfirmation.Loading = loading
	}
}

func (s *SessionState) appendLocked(role models.Role, content string) {
	s.messages = append(s.messages, models.Message{
		ID:        s.nextMessageID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.nextMessageID++
}

func (s *SessionState) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *SessionState) AwaitingReply() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.awaitingReply
}

func (s *SessionState) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Message, len(s.messages))
	copy(result, s.messages)
	return result
}

// PendingConfirmation returns a copy of the active confirmation request, nil
// when none is pending.
func (s *SessionState) PendingConfirmation() *models.ConfirmationRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pendingConfirmation == nil {
		return nil
	}
	req := *s.pendingConfirmation
	return &req
}

func (s *SessionState) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *SessionState) SetPendingInput(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInput = input
}

func (s *SessionState) PendingInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingInput
}
