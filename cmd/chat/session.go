package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const maxReplyBytes = 1 << 20

// session carries the conversation context between turns
type session struct {
	serverURL  string
	httpClient *http.Client
	context    json.RawMessage
}

func newSession(serverURL string, httpClient *http.Client) *session {
	return &session{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: httpClient,
	}
}

type messageBody struct {
	Input   map[string]string `json:"input,omitempty"`
	Context json.RawMessage   `json:"context,omitempty"`
}

// Send posts one turn and returns the reply lines. An empty text starts the
// conversation without user input.
func (s *session) Send(ctx context.Context, text string) ([]string, error) {
	body := messageBody{Context: s.context}
	if text != "" {
		body.Input = map[string]string{"text": text}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/api/message", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("server returned invalid JSON")
	}

	if c := gjson.GetBytes(raw, "context"); c.IsObject() {
		s.context = json.RawMessage(c.Raw)
	}

	return replyLines(gjson.GetBytes(raw, "output.text")), nil
}

// output.text is an array from the backend but a plain string in the
// setup guidance
func replyLines(text gjson.Result) []string {
	if !text.Exists() {
		return nil
	}
	if !text.IsArray() {
		return []string{text.String()}
	}
	var lines []string
	for _, line := range text.Array() {
		if s := line.String(); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}
