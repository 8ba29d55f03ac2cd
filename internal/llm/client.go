package llm

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client wraps OpenAI client and answers conversation turns with it
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new LLM client with API key. Extra request options
// (base URL, retries) are applied after the key.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &Client{
		client: &client,
		model:  model,
	}
}
