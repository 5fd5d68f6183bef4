// Package openai wraps the OpenAI chat-completion API for booking-request
// normalization and image transcription.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 1000
)

// Client is an OpenAI chat-completion client.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// Config configures the OpenAI client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	BaseURL     string // override for tests against a fake endpoint
}

// NewClient creates a new OpenAI client.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Normalize sends raw booking-request text to the model and returns the
// eight-field normalized reply. Low temperature and a bounded output length
// keep the field shape reproducible.
func (c *Client) Normalize(ctx context.Context, raw string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: raw},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ExtractImageText transcribes all visible text in an image. The input is
// re-encoded to PNG before being embedded as a base64 data URI, so any
// raster format the image package can decode is accepted.
func (c *Client) ExtractImageText(ctx context.Context, imageBytes []byte) (string, error) {
	encoded, err := encodePNG(imageBytes)
	if err != nil {
		return "", fmt.Errorf("failed to re-encode image: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/png;base64," + encoded,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func encodePNG(imageBytes []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
