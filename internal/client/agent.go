package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ChatRequest is the payload accepted by the agent's /chat endpoint.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the agent's reply envelope.
type ChatResponse struct {
	Message   string `json:"message"`
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AgentClient talks to the natural-language database-operations agent. It is a
// thin transport wrapper: no retry, no queueing, no interpretation of the
// reply text.
type AgentClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewAgentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *AgentClient {
	return &AgentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SendMessage posts one user message and returns the agent's reply. All
// failures come back as *APIError.
func (c *AgentClient) SendMessage(ctx context.Context, text, sessionID string) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := classifyTransportError(err)
		c.logger.Warn("agent request failed",
			zap.String("kind", apiErr.Kind.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := classifyStatus(resp.StatusCode, serverMessage(raw))
		c.logger.Warn("agent returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("kind", apiErr.Kind.String()))
		return nil, apiErr
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, &APIError{Kind: FaultUnknown, Err: fmt.Errorf("decoding chat response: %w", err)}
	}

	c.logger.Debug("agent reply received",
		zap.String("session_id", chatResp.SessionID),
		zap.Bool("success", chatResp.Success),
		zap.Duration("elapsed", time.Since(start)))
	return &chatResp, nil
}

// serverMessage pulls a human-readable message out of an error body, falling
// back to the raw text for non-JSON bodies.
func serverMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
