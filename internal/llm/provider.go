package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Generator is the single-turn text generation capability used by the
// summarizer and the bias analyzer. Implementations carry no conversation state.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse indicates the model answered without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ChatClient is the minimal interface needed to call an OpenAI-compatible
// chat model. It mirrors *openai.Client so that local backends and test
// doubles can be swapped in.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator sends the prompt as a single user message.
type OpenAIGenerator struct {
	Client      ChatClient
	Model       string
	Temperature float32
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.Temperature,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// ContentGenerator mirrors the subset of *genai.Models used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator calls the Gemini Developer API through google.golang.org/genai.
type GeminiGenerator struct {
	Models ContentGenerator
	Model  string
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return resp.Text(), nil
}

// Options configures New.
type Options struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New builds the Generator for opts.Provider. An empty provider selects Gemini.
func New(ctx context.Context, opts Options) (Generator, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderGemini:
		if opts.APIKey == "" {
			return nil, errors.New("gemini: API key is required")
		}
		cfg := &genai.ClientConfig{APIKey: opts.APIKey, Backend: genai.BackendGeminiAPI, HTTPClient: opts.HTTPClient}
		if opts.BaseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
		}
		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		return &GeminiGenerator{Models: client.Models, Model: model}, nil
	case ProviderOpenAI:
		transportCfg := openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			transportCfg.BaseURL = opts.BaseURL
		}
		if opts.HTTPClient != nil {
			transportCfg.HTTPClient = opts.HTTPClient
		}
		return &OpenAIGenerator{Client: openai.NewClientWithConfig(transportCfg), Model: model, Temperature: 0.2}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
