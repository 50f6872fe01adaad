// Package llm wraps the OpenAI API behind the two capabilities the pipelines
// need: role-tagged chat generation and image synthesis.
package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"parodypress/config"
)

// Message is a single role-tagged conversation turn.
type Message = openai.ChatCompletionMessage

// System builds a system-role message.
func System(content string) Message {
	return Message{Role: openai.ChatMessageRoleSystem, Content: content}
}

// User builds a user-role message.
func User(content string) Message {
	return Message{Role: openai.ChatMessageRoleUser, Content: content}
}

// Assistant builds an assistant-role message.
func Assistant(content string) Message {
	return Message{Role: openai.ChatMessageRoleAssistant, Content: content}
}

// Client is a thin generation client. The base URL is configurable so tests
// can point it at a local fake.
type Client struct {
	api *openai.Client
}

// New builds a client from configuration.
func New(cfg config.Config) *Client {
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	return &Client{api: openai.NewClientWithConfig(oc)}
}

// The request encoding drops a zero temperature, which the API then treats
// as its default of 1. Substitute the smallest representable value so an
// explicit 0 survives serialization.
func effectiveTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Chat runs one chat completion and returns the response text.
func (c *Client) Chat(ctx context.Context, model string, temperature float32, messages ...Message) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: effectiveTemperature(temperature),
		Messages:    messages,
	})
}

// ChatJSON runs one chat completion in JSON mode. The response is still
// returned as raw text; callers slice and parse it themselves so malformed
// output can be recovered locally.
func (c *Client) ChatJSON(ctx context.Context, model string, temperature float32, messages ...Message) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: effectiveTemperature(temperature),
		Messages:    messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choice list")
	}
	return resp.Choices[0].Message.Content, nil
}

// Image generates one image from a prompt and returns its URL.
func (c *Client) Image(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:   openai.CreateImageModelDallE3,
		Prompt:  prompt,
		Quality: openai.CreateImageQualityStandard,
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("image generation: empty response")
	}
	return resp.Data[0].URL, nil
}
