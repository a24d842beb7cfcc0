// Package llm drives the tool-calling conversation with the review model.
package llm

import (
	"github.com/sashabaranov/go-openai"
)

// NewClient builds an OpenAI-compatible chat client. A non-empty base URL
// points the client at a self-hosted or proxy endpoint.
func NewClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
