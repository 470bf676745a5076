// Package llm generates reply drafts through an OpenAI-compatible chat API.
package llm

import (
	"context"
	"fmt"

	"drafly_server/core/port/out"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a professional email assistant. Write complete, ready-to-send email replies without any placeholders or variables."

const replyPromptTemplate = `You are writing a professional email reply. Write a complete, ready-to-send email reply in a %s tone.

IMPORTANT INSTRUCTIONS:
- Write a complete email reply - do NOT use placeholders like [Name], [topic], [Your Name], etc.
- Use the actual sender's name or email address from the context
- Reference the original email subject naturally
- Keep it concise (2-4 sentences typically)
- Be professional, polite, and %s in tone
- Write as if you are directly replying to the sender
- Do not include email headers (To, From, Subject) - just the reply body text

Original Email:
From: %s
Subject: %s
Body: %s

Write your complete email reply (body text only, no placeholders):`

type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewClient(cfg ClientConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	return &Client{
		client:      openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}
}

// GenerateReply asks the model for a ready-to-send reply body. The caller
// substitutes placeholder content when this fails or comes back empty.
func (c *Client) GenerateReply(ctx context.Context, body, sender, subject, tone string) (string, error) {
	if subject == "" {
		subject = "No subject"
	}
	prompt := fmt.Sprintf(replyPromptTemplate, tone, tone, sender, subject, body)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Ensure Client implements out.ReplyGenerator
var _ out.ReplyGenerator = (*Client)(nil)
