// Package aigen generates content of ai-generated blocks with an OpenAI
// compatible chat completion service.
package aigen

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"wtpl/config"
	"wtpl/model"
)

const (
	minTokens = 1
	maxTokens = 8192

	defaultMaxTokens   = 3000
	defaultTemperature = 0.7
)

// ErrNotConfigured is reported when there is no endpoint to talk to.
var ErrNotConfigured = errors.New("ai endpoint is not configured")

// Endpoint selects chat completion service.
type Endpoint struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Request is a single generation call.
type Request struct {
	// empty endpoint fields are taken from configuration
	Endpoint    Endpoint
	Messages    []*schema.Message
	Temperature float64
	MaxTokens   int
}

// Response mirrors generation service contract, transport problems are
// reported in Error rather than returned.
type Response struct {
	Success bool
	Content string
	Error   string
}

// Generator produces text for a conversation.
type Generator interface {
	Generate(ctx context.Context, req Request) Response
}

// Client talks to OpenAI compatible endpoints through eino chat model.
type Client struct {
	cfg *config.AIConfig
	log *zap.Logger
}

func NewClient(cfg *config.AIConfig, log *zap.Logger) *Client {
	return &Client{cfg: cfg, log: log.Named("ai")}
}

// ClampTokens limits requested number of tokens to what services accept.
func ClampTokens(n int) int {
	return min(max(n, minTokens), maxTokens)
}

func (c *Client) endpoint(e Endpoint) Endpoint {
	if e.BaseURL == "" {
		e.BaseURL = c.cfg.BaseURL
	}
	if e.APIKey == "" {
		e.APIKey = c.cfg.APIKey.Reveal()
	}
	if e.Model == "" {
		e.Model = c.cfg.Model
	}
	return e
}

func (c *Client) Generate(ctx context.Context, req Request) Response {
	ep := c.endpoint(req.Endpoint)
	if ep.BaseURL == "" || ep.Model == "" {
		return Response{Error: ErrNotConfigured.Error()}
	}

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  ep.APIKey,
		BaseURL: ep.BaseURL,
		Model:   ep.Model,
		Timeout: c.cfg.Timeout,
	})
	if err != nil {
		return Response{Error: fmt.Sprintf("unable to create chat model: %v", err)}
	}

	temperature := cmp.Or(req.Temperature, c.cfg.Temperature, defaultTemperature)
	tokens := cmp.Or(req.MaxTokens, c.cfg.MaxTokens, defaultMaxTokens)

	c.log.Debug("Generating",
		zap.String("base_url", ep.BaseURL),
		zap.String("model", ep.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Float64("temperature", temperature),
		zap.Int("max_tokens", ClampTokens(tokens)))

	msg, err := chat.Generate(ctx, req.Messages,
		einomodel.WithTemperature(float32(temperature)),
		einomodel.WithMaxTokens(ClampTokens(tokens)))
	if err != nil {
		return Response{Error: err.Error()}
	}
	if msg == nil || msg.Content == "" {
		return Response{Error: "empty response"}
	}
	return Response{Success: true, Content: msg.Content}
}

// RequestFor builds endpoint selection for block AI settings. MaxKB blocks
// must carry their own address and key.
func RequestFor(settings *model.AISettings) (Request, error) {
	var req Request
	if settings == nil || settings.Provider != model.ProviderMaxKB {
		return req, nil
	}
	if settings.MaxKBBaseURL == "" || settings.MaxKBAPIKey == "" {
		return req, fmt.Errorf("maxkb base url and api key are required: %w", ErrNotConfigured)
	}
	req.Endpoint = Endpoint{
		BaseURL: settings.MaxKBBaseURL,
		APIKey:  settings.MaxKBAPIKey,
		Model:   settings.MaxKBModel,
	}
	return req, nil
}
