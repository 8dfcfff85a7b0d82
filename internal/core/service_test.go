package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/difylang/dbagent/internal/client"
	"github.com/difylang/dbagent/internal/eventbus"
	"github.com/difylang/dbagent/internal/models"
)

type fakeAgent struct {
	calls   []string
	respond func(text, sessionID string) (*client.ChatResponse, error)
}

func (f *fakeAgent) SendMessage(_ context.Context, text, sessionID string) (*client.ChatResponse, error) {
	f.calls = append(f.calls, text)
	return f.respond(text, sessionID)
}

type fakeDisplay struct {
	datasets []*models.TabularDataset
	resets   int
}

func (f *fakeDisplay) PublishDataset(ds *models.TabularDataset) {
	f.datasets = append(f.datasets, ds)
}

func (f *fakeDisplay) Reset() {
	f.resets++
}

func newTestService(respond func(text, sessionID string) (*client.ChatResponse, error)) (*ChatService, *fakeAgent, *fakeDisplay) {
	agent := &fakeAgent{respond: respond}
	display := &fakeDisplay{}
	cs := NewChatService(agent, display, eventbus.NewEventBus(), zap.NewNop())
	return cs, agent, display
}

func plainReply(message string) func(string, string) (*client.ChatResponse, error) {
	return func(string, string) (*client.ChatResponse, error) {
		return &client.ChatResponse{Message: message, Success: true}, nil
	}
}

func TestSendAppendsBothMessages(t *testing.T) {
	cs, _, _ := newTestService(plainReply("共找到 3 条记录。"))

	require.NoError(t, cs.Send("查询员工表"))

	msgs := cs.State().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "查询员工表", msgs[0].Content)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "共找到 3 条记录。", msgs[1].Content)
	assert.Less(t, msgs[0].ID, msgs[1].ID)
	assert.False(t, cs.State().AwaitingReply())
}

func TestSendRejectsEmptyText(t *testing.T) {
	cs, agent, _ := newTestService(plainReply("ok"))

	assert.ErrorIs(t, cs.Send("   "), ErrEmptyMessage)
	assert.Empty(t, agent.calls)
	assert.Empty(t, cs.State().Messages())
}

func TestSendRejectsReentrantSend(t *testing.T) {
	var cs *ChatService
	var innerErr error
	cs, agent, _ := newTestService(nil)

	// The agent callback re-enters Send while the first exchange is still in
	// flight, which must be rejected without touching the log.
	agent.respond = func(string, string) (*client.ChatResponse, error) {
		innerErr = cs.Send("second")
		return &client.ChatResponse{Message: "done", Success: true}, nil
	}

	require.NoError(t, cs.Send("first"))

	assert.ErrorIs(t, innerErr, ErrSendInFlight)
	require.Len(t, agent.calls, 1)
	msgs := cs.State().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "done", msgs[1].Content)
}

func TestSendAdoptsBackendSessionID(t *testing.T) {
	cs, _, _ := newTestService(func(string, string) (*client.ChatResponse, error) {
		return &client.ChatResponse{Message: "你好", Success: true, SessionID: "session_backend_7"}, nil
	})

	original := cs.State().SessionID()
	require.NoError(t, cs.Send("你好"))

	assert.NotEqual(t, original, cs.State().SessionID())
	assert.Equal(t, "session_backend_7", cs.State().SessionID())
}

func TestSendTurnsFaultIntoSyntheticMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *client.APIError
		want string
	}{
		{"not found", &client.APIError{Kind: client.FaultNotFound, Status: 404}, "服务接口未找到"},
		{"timeout", &client.APIError{Kind: client.FaultTimeout}, "请求处理时间较长"},
		{"server", &client.APIError{Kind: client.FaultServer, Status: 500}, "服务器内部错误"},
		{"offline", &client.APIError{Kind: client.FaultOffline}, "网络连接异常"},
		{"client echoes status and message", &client.APIError{Kind: client.FaultClient, Status: 422, Message: "字段缺失"}, "请求错误 (422)：字段缺失"},
		{"unknown", &client.APIError{Kind: client.FaultUnknown}, "请稍后再试"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, _, _ := newTestService(func(string, string) (*client.ChatResponse, error) {
				return nil, tt.err
			})

			require.NoError(t, cs.Send("查询"))

			msgs := cs.State().Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, models.RoleAssistant, msgs[1].Role)
			assert.Contains(t, msgs[1].Content, tt.want)
			assert.False(t, cs.State().AwaitingReply(), "gate must be released on failure")
		})
	}
}

func TestClearRegeneratesSession(t *testing.T) {
	cs, _, display := newTestService(plainReply("好的"))
	require.NoError(t, cs.Send("你好"))

	before := cs.State().SessionID()
	cs.Clear()

	assert.Empty(t, cs.State().Messages())
	assert.NotEqual(t, before, cs.State().SessionID())
	assert.False(t, cs.State().AwaitingReply())
	assert.Equal(t, 1, display.resets)

	// Message ids restart with the new session
	require.NoError(t, cs.Send("又来了"))
	assert.Equal(t, int64(1), cs.State().Messages()[0].ID)
}

func TestConfirmationDetectionAndAnswer(t *testing.T) {
	replies := []string{
		"即将删除用户 id=3 的信息，请确认，并回复'是'或'否'。",
		"删除成功。",
	}
	call := 0
	cs, agent, _ := newTestService(func(string, string) (*client.ChatResponse, error) {
		reply := replies[call]
		call++
		return &client.ChatResponse{Message: reply, Success: true}, nil
	})

	require.NoError(t, cs.Send("删除用户3"))

	pending := cs.State().PendingConfirmation()
	require.NotNil(t, pending)
	assert.Equal(t, models.CategoryDelete, pending.Category)
	assert.True(t, pending.Dangerous)
	assert.Equal(t, "确认删除", pending.Title)
	assert.Equal(t, replies[0], pending.Content)

	cs.answerConfirmation(true)

	// The literal affirmative token goes through the ordinary send path
	require.Len(t, agent.calls, 2)
	assert.Equal(t, TokenAffirm, agent.calls[1])
	// A plain follow-up reply clears the pending confirmation
	assert.Nil(t, cs.State().PendingConfirmation())
	msgs := cs.State().Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "删除成功。", msgs[3].Content)
}

func TestDeclineSendsNegativeToken(t *testing.T) {
	replies := []string{
		"即将【修改】的信息如下，请确认。",
		"已取消操作。",
	}
	call := 0
	cs, agent, _ := newTestService(func(string, string) (*client.ChatResponse, error) {
		reply := replies[call]
		call++
		return &client.ChatResponse{Message: reply, Success: true}, nil
	})

	require.NoError(t, cs.Send("修改用户3的地址"))
	require.NotNil(t, cs.State().PendingConfirmation())

	cs.answerConfirmation(false)

	require.Len(t, agent.calls, 2)
	assert.Equal(t, TokenDecline, agent.calls[1])
	assert.Nil(t, cs.State().PendingConfirmation())
}

func TestAnswerWithoutPendingConfirmationIsNoop(t *testing.T) {
	cs, agent, _ := newTestService(plainReply("ok"))

	cs.answerConfirmation(true)

	assert.Empty(t, agent.calls)
	assert.Empty(t, cs.State().Messages())
}

func TestDatasetExtractionAndRetention(t *testing.T) {
	replies := []string{
		`查询结果：[{"id": 1, "name": "张三"}]`,
		`查询结果：[{"id": 2,`, // malformed
	}
	call := 0
	cs, _, display := newTestService(func(string, string) (*client.ChatResponse, error) {
		reply := replies[call]
		call++
		return &client.ChatResponse{Message: reply, Success: true}, nil
	})

	require.NoError(t, cs.Send("查询员工"))
	require.Len(t, display.datasets, 1)
	assert.Equal(t, []string{"id", "name"}, display.datasets[0].Columns)

	// A later malformed payload must not reach the display collaborator
	require.NoError(t, cs.Send("再查一次"))
	assert.Len(t, display.datasets, 1)
}
