package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MessageRequest is the payload sent to a conversational backend for one turn
type MessageRequest struct {
	WorkspaceID string          `json:"workspace_id"`
	Context     json.RawMessage `json:"context"`
	Input       json.RawMessage `json:"input"`
}

// InputText returns input.text, or an empty string when the input carries none
func (r MessageRequest) InputText() string {
	return gjson.GetBytes(r.Input, "text").String()
}

// Intent is a classification label assigned to a user utterance
type Intent struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Output holds the reply lines of a backend response
type Output struct {
	Text []string `json:"text"`
}

// Reply is the typed shape of a backend response, used when a response is built locally
type Reply struct {
	Output  Output          `json:"output"`
	Context json.RawMessage `json:"context"`
	Intents []Intent        `json:"intents"`
}

// MessageResponse wraps the raw JSON object returned by a backend.
// Fields it does not know about are kept as-is.
type MessageResponse struct {
	raw []byte
}

// NewMessageResponse validates raw as a JSON object and wraps a copy of it
func NewMessageResponse(raw []byte) (*MessageResponse, error) {
	raw = bytes.TrimSpace(raw)
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &MessageResponse{raw: buf}, nil
}

// NewReplyResponse builds a MessageResponse from a typed reply
func NewReplyResponse(reply Reply) (*MessageResponse, error) {
	if len(reply.Context) == 0 {
		reply.Context = json.RawMessage(`{}`)
	}
	if reply.Intents == nil {
		reply.Intents = []Intent{}
	}
	if reply.Output.Text == nil {
		reply.Output.Text = []string{}
	}
	raw, err := json.Marshal(reply)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reply: %w", err)
	}
	return &MessageResponse{raw: raw}, nil
}

// TopIntent returns intents[0].intent, or an empty string
func (r *MessageResponse) TopIntent() string {
	return gjson.GetBytes(r.raw, "intents.0.intent").String()
}

// Context returns the context object, or nil when the response has none
func (r *MessageResponse) Context() json.RawMessage {
	res := gjson.GetBytes(r.raw, "context")
	if !res.Exists() {
		return nil
	}
	return json.RawMessage(res.Raw)
}

// ContextValue looks up a field of the context object by gjson path
func (r *MessageResponse) ContextValue(path string) gjson.Result {
	return gjson.GetBytes(r.raw, "context."+path)
}

// Text returns output.text[i]
func (r *MessageResponse) Text(i int) (string, bool) {
	res := gjson.GetBytes(r.raw, "output.text."+strconv.Itoa(i))
	if !res.Exists() || res.Type != gjson.String {
		return "", false
	}
	return res.Str, true
}

// SetText overwrites output.text[i]. When output.text is not an array, or is
// empty and i is 0, output.text becomes a single-element array.
func (r *MessageResponse) SetText(i int, text string) error {
	current := gjson.GetBytes(r.raw, "output.text")

	var (
		updated []byte
		err     error
	)
	switch {
	case current.IsArray() && i < len(current.Array()):
		updated, err = sjson.SetBytes(r.raw, "output.text."+strconv.Itoa(i), text)
	case i == 0:
		updated, err = sjson.SetBytes(r.raw, "output.text", []string{text})
	default:
		return fmt.Errorf("output.text has no line %d", i)
	}
	if err != nil {
		return fmt.Errorf("failed to set output text: %w", err)
	}

	r.raw = updated
	return nil
}

// Bytes returns the raw JSON
func (r *MessageResponse) Bytes() []byte {
	return r.raw
}

func (r *MessageResponse) MarshalJSON() ([]byte, error) {
	if r == nil || len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

func (r *MessageResponse) UnmarshalJSON(data []byte) error {
	parsed, err := NewMessageResponse(data)
	if err != nil {
		return err
	}
	r.raw = parsed.raw
	return nil
}
