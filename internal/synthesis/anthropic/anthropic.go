// Package anthropic implements synthesis.Synthesizer and synthesis.Planner on
// the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
)

// Options configure the Anthropic backend.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
}

// Client wraps the Anthropic Messages API behind the synthesis interfaces.
type Client struct {
	client *anthropic.Client
	infos  map[string]source.Info
	opts   Options
}

// WithModel overrides the default model.
func WithModel(model string) func(o *Options) {
	return func(o *Options) { o.Model = anthropic.Model(model) }
}

// New creates an Anthropic-backed planner/synthesizer using the default
// client (API key from the environment).
func New(registry *source.Registry, optFns ...func(o *Options)) *Client {
	c := anthropic.NewClient()
	return NewFromClient(&c, registry, optFns...)
}

// NewFromClient creates the backend from an existing client.
func NewFromClient(client *anthropic.Client, registry *source.Registry, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.4,
		MaxTokens:   512,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{client: client, infos: registry.InfoMap(), opts: opts}
}

// AnalyzeLocation implements synthesis.Planner.
func (c *Client) AnalyzeLocation(ctx context.Context, lat, lon float64, priority string) (domain.SharedContext, error) {
	raw, err := c.complete(ctx, synthesis.PlanPrompt(lat, lon, priority))
	if err != nil {
		return domain.SharedContext{}, err
	}
	return synthesis.DecodeContext(raw)
}

// SelectSources implements synthesis.Planner.
func (c *Client) SelectSources(ctx context.Context, specialist string, shared domain.SharedContext, candidates []string) ([]string, error) {
	raw, err := c.complete(ctx, synthesis.SelectPrompt(specialist, shared, candidates, c.infos))
	if err != nil {
		return nil, err
	}
	return synthesis.DecodeSelection(raw, candidates)
}

// Synthesize implements synthesis.Synthesizer.
func (c *Client) Synthesize(ctx context.Context, in synthesis.Input) (synthesis.Output, error) {
	raw, err := c.complete(ctx, synthesis.SynthesisPrompt(in))
	if err != nil {
		return synthesis.Output{}, err
	}
	return synthesis.DecodeOutput(raw)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic completion: no text content")
	}
	return sb.String(), nil
}
