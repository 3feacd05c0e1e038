// Package gateway talks to the OpenClaw agent gateway over its
// OpenAI-compatible chat completions endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Config holds the connection settings for the agent gateway.
type Config struct {
	BaseURL string
	AgentID string
	Token   string
	Timeout time.Duration
}

// ChatReply is the assistant's answer for one chat turn.
type ChatReply struct {
	SessionID string
	Content   string
}

// Client is the interface for sending chat turns to the gateway.
type Client interface {
	Chat(ctx context.Context, sessionID, message string) (*ChatReply, error)
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a gateway client from the provided configuration.
func NewClient(cfg Config) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	User     string        `json:"user,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			// Content is either a plain string or a list of typed parts,
			// depending on the gateway version. Decoded manually below.
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *httpClient) Chat(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	payload := chatRequest{
		Model: "openclaw:" + c.cfg.AgentID,
		Messages: []chatMessage{
			{Role: "user", Content: message},
		},
		User: sessionID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-agent-id", c.cfg.AgentID)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	log.Debug().Str("url", url).Str("session", sessionID).Msg("Forwarding chat turn to gateway")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("gateway returned no choices")
	}

	content, err := decodeContent(decoded.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &ChatReply{SessionID: sessionID, Content: content}, nil
}

// decodeContent accepts both content encodings the gateway emits: a plain
// string, or a list of parts where text parts carry a "text" field.
func decodeContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unrecognized gateway content shape: %w", err)
	}

	var b strings.Builder
	for _, part := range parts {
		if part.Type == "" || part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
