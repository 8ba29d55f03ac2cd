package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/sjson"

	"github.com/vokinneberg/parcel-assistant/internal/conversation"
)

const defaultSystemPrompt = `You are the assistant of a parcel delivery company.
Classify the user's message into exactly one intent: "parcel" (the user asks where a parcel is), "greeting", "goodbye", "help" or "other".
When the intent is "parcel", extract the parcel number if the user gave one, and write the reply with the literal token {0} where the parcel location belongs, for example "Your parcel 14 is at {0}.".
If the user asks about a parcel without giving its number, ask for the number.
Answer with a single JSON object and nothing else:
{"intent": "<intent>", "confidence": <number between 0 and 1>, "text": "<reply>", "parcel_num": <integer or null>}`

// modelReply is the JSON object the model is asked to answer with
type modelReply struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Text       string  `json:"text"`
	ParcelNum  *int64  `json:"parcel_num"`
}

// Message answers one conversation turn with a chat completion. The incoming
// context is returned with parcel_num set when the model extracted one.
func (c *Client) Message(ctx context.Context, req conversation.MessageRequest) (*conversation.MessageResponse, error) {
	systemPrompt := defaultSystemPrompt

	// Try multiple possible paths
	promptPaths := []string{
		"prompts/system_prompt.txt",
		"./prompts/system_prompt.txt",
		"../prompts/system_prompt.txt",
	}
	for _, path := range promptPaths {
		if p, err := loadPrompt(path); err == nil {
			systemPrompt = p
			break
		}
	}

	convCtx := req.Context
	if len(bytes.TrimSpace(convCtx)) == 0 {
		convCtx = json.RawMessage(`{}`)
	}

	userPrompt := fmt.Sprintf("Conversation context: %s\n\nUser message: %s", convCtx, req.InputText())

	slog.Debug("Sending conversation turn to OpenAI", "model", c.model, "workspace_id", req.WorkspaceID)

	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: param.Opt[float64]{Value: 0.2},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &conversation.BackendError{
				StatusCode: apiErr.StatusCode,
				Body:       []byte(apiErr.RawJSON()),
				Err:        err,
			}
		}
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}

	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return buildResponse(convCtx, res.Choices[0].Message.Content)
}

// buildResponse turns the model's answer into a backend response. An answer
// that is not the requested JSON object is used as plain reply text.
func buildResponse(convCtx json.RawMessage, content string) (*conversation.MessageResponse, error) {
	var answer modelReply
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &answer); err != nil {
		slog.Warn("Model answer is not JSON, using it as reply text", "error", err)
		return conversation.NewReplyResponse(conversation.Reply{
			Output:  conversation.Output{Text: []string{strings.TrimSpace(content)}},
			Context: convCtx,
		})
	}

	if answer.ParcelNum != nil {
		updated, err := sjson.SetBytes(convCtx, "parcel_num", *answer.ParcelNum)
		if err != nil {
			return nil, fmt.Errorf("failed to update context: %w", err)
		}
		convCtx = updated
	}

	reply := conversation.Reply{
		Output:  conversation.Output{Text: []string{answer.Text}},
		Context: convCtx,
	}
	if answer.Intent != "" {
		reply.Intents = []conversation.Intent{{Intent: answer.Intent, Confidence: answer.Confidence}}
	}
	return conversation.NewReplyResponse(reply)
}

// stripCodeFence removes a surrounding markdown code fence, if any
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// loadPrompt loads a prompt from a file
func loadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
