package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/investment-advisor/internal/advice"
	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

const maxTokens = 2048

// Client sends advisory requests to the Anthropic Messages API.
type Client struct {
	model  string
	client sdk.Client
	log    *logrus.Logger
}

// NewClient constructs a new Anthropic client. Extra options are appended after the
// key and timeout, so callers can point the client at another base URL.
func NewClient(apiKey, model string, timeout time.Duration, log *logrus.Logger, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ANTHROPIC_MODEL is required for Anthropic")
	}
	options := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}, opts...)

	return &Client{model: model, client: sdk.NewClient(options...), log: log}, nil
}

// AdviceText returns the concatenated text blocks of the reply.
func (c *Client) AdviceText(ctx context.Context, req advice.Request) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: maxTokens,
		System:    []sdk.TextBlockParam{{Text: req.System}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic response empty content")
	}

	c.log.WithFields(logrus.Fields{
		"model":         c.model,
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
	}).Info("Advice received")
	return text, nil
}
