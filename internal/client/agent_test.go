package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAgentClientSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "查询员工", req.Message)
		assert.Equal(t, "session_abc", req.SessionID)

		json.NewEncoder(w).Encode(ChatResponse{
			Message:   "共 3 条记录",
			Success:   true,
			SessionID: "session_abc",
		})
	}))
	defer server.Close()

	c := NewAgentClient(server.URL, 5*time.Second, zap.NewNop())
	resp, err := c.SendMessage(context.Background(), "查询员工", "session_abc")

	require.NoError(t, err)
	assert.Equal(t, "共 3 条记录", resp.Message)
	assert.True(t, resp.Success)
	assert.Equal(t, "session_abc", resp.SessionID)
}

func TestAgentClientStatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    FaultKind
		message string
	}{
		{"not found", http.StatusNotFound, `{"error": "no such route"}`, FaultNotFound, "no such route"},
		{"server error", http.StatusInternalServerError, `{"error": "boom"}`, FaultServer, "boom"},
		{"client error with message field", http.StatusBadRequest, `{"message": "bad input"}`, FaultClient, "bad input"},
		{"client error with plain body", http.StatusUnprocessableEntity, "not json", FaultClient, "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewAgentClient(server.URL, 5*time.Second, zap.NewNop())
			_, err := c.SendMessage(context.Background(), "hi", "s1")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestAgentClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	c := NewAgentClient(server.URL, 50*time.Millisecond, zap.NewNop())
	_, err := c.SendMessage(context.Background(), "hi", "s1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, FaultTimeout, apiErr.Kind)
}

func TestAgentClientOffline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // nothing listening anymore

	c := NewAgentClient(url, time.Second, zap.NewNop())
	_, err := c.SendMessage(context.Background(), "hi", "s1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, FaultOffline, apiErr.Kind)
}

func TestAgentClientContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	c := NewAgentClient(server.URL, 5*time.Second, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.SendMessage(ctx, "hi", "s1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, FaultTimeout, apiErr.Kind)
}
