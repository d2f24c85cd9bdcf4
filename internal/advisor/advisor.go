// Package advisor turns raw schedule and risk reports into a short narrative
// briefing via the Claude API. It is an optional convenience layer; every
// analysis works without it.
package advisor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client wraps the Anthropic SDK.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates a client. apiKey defaults to ANTHROPIC_API_KEY env.
// model defaults to Claude Sonnet.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	m := anthropic.ModelClaudeSonnet4_6
	if model != "" {
		m = anthropic.Model(model)
	}

	return &Client{inner: inner, model: m}, nil
}

const briefPrompt = `You are a project manager at an architecture firm briefing a colleague on a project's schedule health.

You will receive:
1. A phase schedule summary (statuses, durations, float, critical path).
2. Optionally, cascade impact and recovery suggestion output.

Produce a concise narrative briefing covering:
- Where the project stands and which phases drive the end date.
- The schedule risks that deserve attention this week.
- Which recovery actions, if any, look worth taking.

Keep it short — a few sentences per section. Do not repeat raw numbers the
reader can see in the tables; focus on the takeaway.
`

// Brief sends the report to Claude and returns a narrative briefing.
func (c *Client) Brief(ctx context.Context, report string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(2048),
		System: []anthropic.TextBlockParam{
			{Text: briefPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(report)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return strings.TrimSpace(text), nil
}
