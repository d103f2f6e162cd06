// Package assistant forwards a calculator query to a generative-AI text
// endpoint and returns the markdown answer. One request per inquiry: no
// retries, no streaming, no caching.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calc-pro/internal/config"
	"calc-pro/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("assistant")

var (
	ErrMissingCredential = errors.New("assistant: API key is missing")
	ErrCommunication     = errors.New("assistant: communication failure")
	ErrSuperseded        = errors.New("assistant: superseded by a newer inquiry")
)

// User-facing texts.
const (
	MissingCredentialMessage = "API Key is missing. Please ensure API_KEY is configured."
	CommunicationMessage     = "Failed to communicate with AI Assistant."
	GenericMessage           = "Something went wrong with the AI."
	FallbackAnswer           = "I'm sorry, I couldn't process that expression."
)

const promptTemplate = `Solve this math problem or explain this expression: "%s". Provide a concise step-by-step breakdown. Use Markdown formatting for clarity.`

// Prompt wraps a query in the fixed instruction template.
func Prompt(query string) string {
	return fmt.Sprintf(promptTemplate, query)
}

// Message maps an inquiry error to the text shown in the error slot.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return MissingCredentialMessage
	case errors.Is(err, ErrCommunication):
		return CommunicationMessage
	default:
		return GenericMessage
	}
}

// Params are the generation parameters sent with every request.
type Params struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Provider is one generative-AI backend.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// Assistant answers calculator inquiries through a Provider.
type Assistant struct {
	provider Provider
	params   Params
}

// New builds the configured provider. Without an API key no provider is
// created and every Solve fails fast with ErrMissingCredential.
func New(cfg config.AI) (*Assistant, error) {
	a := &Assistant{params: paramsFrom(cfg)}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return a, nil
	}

	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	a.provider = p
	return a, nil
}

// NewWithProvider wires an explicit provider.
func NewWithProvider(p Provider, params Params) *Assistant {
	return &Assistant{provider: p, params: params}
}

// Ready reports whether a credential was configured.
func (a *Assistant) Ready() bool { return a.provider != nil }

// Solve asks the provider to solve or explain query.
func (a *Assistant) Solve(ctx context.Context, query string) (string, error) {
	logger := observability.LoggerWithTrace(ctx)

	if a.provider == nil {
		inquiryCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "missing_credential")))
		return "", ErrMissingCredential
	}

	ctx, span := tracer.Start(ctx, "assistant.solve",
		trace.WithAttributes(
			attribute.String("assistant.provider", a.provider.Name()),
			attribute.String("assistant.model", a.provider.Model()),
			attribute.Int("assistant.query_length", len(query)),
		),
	)
	defer span.End()

	start := time.Now()
	text, err := a.provider.Generate(ctx, Prompt(query), a.params)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := []attribute.KeyValue{attribute.String("provider", a.provider.Name())}
	inquiryDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, CommunicationMessage)
		inquiryCounter.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("outcome", "error"))...))
		logger.Error("assistant request failed",
			zap.String("provider", a.provider.Name()),
			zap.Float64("duration_ms", elapsed),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrCommunication, err)
	}

	if strings.TrimSpace(text) == "" {
		text = FallbackAnswer
		span.AddEvent("assistant.empty_answer")
	}

	inquiryCounter.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("outcome", "ok"))...))
	span.SetStatus(codes.Ok, "")
	logger.Info("assistant answered",
		zap.String("provider", a.provider.Name()),
		zap.Int("answer_length", len(text)),
		zap.Float64("duration_ms", elapsed),
	)
	return text, nil
}

// NewProvider constructs the backend named by cfg.Provider.
func NewProvider(cfg config.AI) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGemini(cfg.APIKey, cfg.ModelOrDefault(), cfg.BaseURL), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.ModelOrDefault(), cfg.BaseURL), nil
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.ModelOrDefault(), cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown assistant provider %q", cfg.Provider)
	}
}

func paramsFrom(cfg config.AI) Params {
	return Params{
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
		MaxTokens:   cfg.MaxTokens,
	}
}
