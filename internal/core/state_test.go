package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/difylang/dbagent/internal/models"
)

func TestSessionStateGate(t *testing.T) {
	s := NewSessionState()

	require.True(t, s.BeginSend("first"))
	assert.True(t, s.AwaitingReply())

	// A second send while awaiting a reply is rejected with no log mutation
	assert.False(t, s.BeginSend("second"))
	assert.Len(t, s.Messages(), 1)

	s.FinishWithReply("done", "", nil)
	assert.False(t, s.AwaitingReply())
	assert.True(t, s.BeginSend("third"))
}

func TestSessionStateMessageIDsAreMonotonic(t *testing.T) {
	s := NewSessionState()

	for i := 0; i < 3; i++ {
		require.True(t, s.BeginSend("q"))
		s.FinishWithReply("a", "", nil)
	}

	msgs := s.Messages()
	require.Len(t, msgs, 6)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
	}
}

func TestSessionStatePendingInputClearedOnSend(t *testing.T) {
	s := NewSessionState()

	s.SetPendingInput("draft text")
	assert.Equal(t, "draft text", s.PendingInput())

	require.True(t, s.BeginSend("draft text"))
	assert.Empty(t, s.PendingInput())
}

func TestSessionStateSessionIDFormat(t *testing.T) {
	s := NewSessionState()
	assert.True(t, strings.HasPrefix(s.SessionID(), "session_"))
}

func TestSessionStateAdoptionIsAtomicWithReply(t *testing.T) {
	s := NewSessionState()
	require.True(t, s.BeginSend("hi"))

	s.FinishWithReply("hello", "session_new", nil)

	assert.Equal(t, "session_new", s.SessionID())
	assert.Len(t, s.Messages(), 2)
	assert.False(t, s.AwaitingReply())

	// Same id again is a no-op adoption
	require.True(t, s.BeginSend("hi again"))
	s.FinishWithReply("hello again", "session_new", nil)
	assert.Equal(t, "session_new", s.SessionID())
}

func TestSessionStateConfirmationReplacement(t *testing.T) {
	s := NewSessionState()

	require.True(t, s.BeginSend("one"))
	s.FinishWithReply("reply", "", &models.ConfirmationRequest{Category: models.CategoryModify})
	require.NotNil(t, s.PendingConfirmation())

	// The returned copy cannot mutate the stored request
	s.PendingConfirmation().Loading = true
	assert.False(t, s.PendingConfirmation().Loading)

	require.True(t, s.BeginSend("two"))
	s.FinishWithReply("plain reply", "", nil)
	assert.Nil(t, s.PendingConfirmation())
}

func TestSessionStateClear(t *testing.T) {
	s := NewSessionState()
	require.True(t, s.BeginSend("hi"))
	s.FinishWithReply("hello", "", &models.ConfirmationRequest{Category: models.CategoryAdd})
	s.SetPendingInput("draft")
	before := s.SessionID()

	s.Clear()

	assert.Empty(t, s.Messages())
	assert.Empty(t, s.PendingInput())
	assert.False(t, s.AwaitingReply())
	assert.Nil(t, s.PendingConfirmation())
	assert.NotEqual(t, before, s.SessionID())
}
