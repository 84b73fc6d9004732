package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/hxl333/mbti-bot/config"
	"github.com/hxl333/mbti-bot/session"
)

// GeminiGateway drives a Gemini chat model through a compiled eino chat
// graph.
type GeminiGateway struct {
	run compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewGeminiGateway builds the genai client, the eino chat model and the
// single-node chat graph from the app configuration.
func NewGeminiGateway(ctx context.Context, cfg *config.App) (*GeminiGateway, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	chatGraph := compose.NewGraph[[]*schema.Message, *schema.Message]()
	if err := chatGraph.AddChatModelNode("llm", chatModel); err != nil {
		return nil, fmt.Errorf("add chat model node: %w", err)
	}
	if err := chatGraph.AddEdge(compose.START, "llm"); err != nil {
		return nil, fmt.Errorf("link start to llm: %w", err)
	}
	if err := chatGraph.AddEdge("llm", compose.END); err != nil {
		return nil, fmt.Errorf("link llm to end: %w", err)
	}

	run, err := chatGraph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat graph: %w", err)
	}

	return &GeminiGateway{run: run}, nil
}

func (g *GeminiGateway) Invoke(ctx context.Context, systemPrompt string, turns []session.Turn) (string, error) {
	out, err := g.run.Invoke(ctx, toMessages(systemPrompt, turns))
	if err != nil {
		return "", &GatewayError{Err: err}
	}
	return out.Content, nil
}
