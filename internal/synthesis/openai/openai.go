// Package openai implements synthesis.Synthesizer and synthesis.Planner on
// the OpenAI Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/couchcryptid/landscape-sim-service/internal/domain"
	"github.com/couchcryptid/landscape-sim-service/internal/source"
	"github.com/couchcryptid/landscape-sim-service/internal/synthesis"
)

// Options configure the OpenAI backend. Fields mirror a minimal subset of
// Chat Completion parameters; extend via functional options.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Client wraps the OpenAI Chat Completions API behind the synthesis
// interfaces.
type Client struct {
	client *openai.Client
	infos  map[string]source.Info
	opts   Options
}

// WithModel overrides the default model.
func WithModel(model string) func(o *Options) {
	return func(o *Options) { o.Model = model }
}

// New creates an OpenAI-backed planner/synthesizer using the default client
// (API key from the environment).
func New(registry *source.Registry, optFns ...func(o *Options)) *Client {
	c := openai.NewClient()
	return NewFromClient(&c, registry, optFns...)
}

// NewFromClient creates the backend from an existing client.
func NewFromClient(client *openai.Client, registry *source.Registry, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
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
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
