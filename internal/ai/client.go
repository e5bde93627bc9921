package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type LLMClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewLLMClient(ctx context.Context, apiKey string) (*LLMClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	return &LLMClient{
		client: client,
		model:  model,
	}, nil
}

func (c *LLMClient) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	if c == nil || c.model == nil {
		return fmt.Errorf("llm client is not configured")
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fmt.Errorf("no response from LLM")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return decodeJSON(string(txt), out)
		}
	}

	return fmt.Errorf("no text content in response")
}

func (c *LLMClient) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}
