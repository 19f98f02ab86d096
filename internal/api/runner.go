package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Runner provides simple text-in/text-out Claude API calls. The expert crew
// drives all of its persona tasks through this.
type Runner struct {
	client *Client
}

// NewRunner creates a new API runner.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Run executes a prompt and returns the text response.
// No tools are provided - this is for simple text completion tasks.
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: 8192,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return collectText(resp), nil
}

// RunWithSystem executes a prompt with a system message carrying the persona.
// A temperature above zero is passed through; zero leaves the API default.
func (r *Runner) RunWithSystem(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: 8192,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	resp, err := r.client.sdk().Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return collectText(resp), nil
}

// collectText concatenates the text blocks of a response.
func collectText(resp *anthropic.Message) string {
	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}
	return result.String()
}
