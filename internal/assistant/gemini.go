package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini talks to the Gemini API through the official genai SDK.
type Gemini struct {
	client  *genai.Client
	model   string
	initErr error // client construction failure, reported on first use
}

func NewGemini(apiKey, model, baseURL string) *Gemini {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return &Gemini{model: model, initErr: fmt.Errorf("initialize gemini client: %w", err)}
	}
	return &Gemini{client: client, model: model}
}

func (g *Gemini) Name() string  { return "gemini" }
func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if g.initErr != nil {
		return "", g.initErr
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(p.Temperature),
		TopP:        genai.Ptr(p.TopP),
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resp.Text(), nil
}

var _ Provider = (*Gemini)(nil)
