// Package llm calls an OpenRouter-compatible chat completion service and maps every failure
// to a user-facing fallback text.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/bobeautician/advisor/internal/observability"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultTopP            = 0.9
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// Config configures a Generator.
type Config struct {
	APIKey          string
	BaseURL         string
	Models          []string
	SiteURL         string
	Timeout         time.Duration
	Temperature     float64
	MaxTokens       int
	RateLimit       float64 // completions per second; <= 0 disables pacing
	RetryMax        int
	BreakerFailures int
	BreakerTimeout  time.Duration
	Metrics         observability.GenerationMetrics
}

// Generator produces completions, trying the configured models in order until one answers.
type Generator struct {
	client      *openai.Client
	apiKey      string
	models      []string
	timeout     time.Duration
	temperature float32
	maxTokens   int
	limiter     *rate.Limiter
	breakers    map[string]*gobreaker.CircuitBreaker[openai.ChatCompletionResponse] // one per model, fixed after construction
	metrics     observability.GenerationMetrics
}

// NewGenerator creates a Generator. A missing API key is not an error: Generate then answers
// with MsgNoAPIKey without any network I/O.
func NewGenerator(cfg Config) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = defaultBreakerFailures
	}

	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.Logger = nil // attempts are logged by Generate
	retryClient.ErrorHandler = keepLastResponse

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: &retryablehttp.RoundTripper{Client: retryClient},
			headers: map[string]string{
				"HTTP-Referer": cfg.SiteURL,
				"X-Title":      AppTitle,
			},
		},
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(math.Max(1, math.Ceil(cfg.RateLimit))))
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker[openai.ChatCompletionResponse], len(cfg.Models))
	for _, model := range cfg.Models {
		breakers[model] = newBreaker(model, cfg.BreakerFailures, cfg.BreakerTimeout)
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		apiKey:      cfg.APIKey,
		models:      cfg.Models,
		timeout:     cfg.Timeout,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		limiter:     limiter,
		breakers:    breakers,
		metrics:     cfg.Metrics,
	}
}

func newBreaker(model string, failures int, timeout time.Duration) *gobreaker.CircuitBreaker[openai.ChatCompletionResponse] {
	return gobreaker.NewCircuitBreaker[openai.ChatCompletionResponse](gobreaker.Settings{
		Name:        "llm:" + model,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures) //nolint:gosec // config validated positive
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("completion circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}

			switch classify(err) {
			case failNetwork, failRateLimited, failHTTP:
				return false
			default:
				return true
			}
		},
	})
}

// Generate returns the first non-empty completion among the configured models, or the fallback
// text chosen by the last attempt's failure. An unauthorized response stops immediately.
// The error is non-nil only when ctx ended before an answer or fallback was chosen.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		slog.ErrorContext(ctx, "completion API key is not configured")
		g.record(ctx, "", "no_api_key", 0)

		return MsgNoAPIKey, nil
	}

	last := failEmptyContent

	for i, model := range g.models {
		if i > 0 {
			slog.InfoContext(ctx, "trying alternative model", "model", model)
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for completion rate limiter: %w", err)
		}

		start := time.Now()
		content, f, err := g.attempt(ctx, model, prompt)

		if ctx.Err() != nil {
			g.record(ctx, model, "canceled", time.Since(start))

			return "", fmt.Errorf("generate with %s: %w", model, ctx.Err())
		}

		g.record(ctx, model, f.outcome(), time.Since(start))

		if f == failNone {
			slog.InfoContext(ctx, "generated completion", "model", model, "chars", len(content))

			return content, nil
		}

		slog.WarnContext(ctx, "completion attempt failed", "model", model, "outcome", f.outcome(), "error", err)

		if f == failUnauthorized {
			return MsgUnauthorized, nil
		}

		last = f
	}

	return last.message(), nil
}

// attempt performs one completion call against model under the per-attempt timeout.
func (g *Generator) attempt(ctx context.Context, model, prompt string) (string, failure, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:      g.temperature,
		MaxTokens:        g.maxTokens,
		TopP:             defaultTopP,
		// Zero penalties are omitted from the request body (omitempty); the service default is 0.
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}

	resp, err := g.breakers[model].Execute(func() (openai.ChatCompletionResponse, error) {
		return g.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", classify(err), err
	}

	if len(resp.Choices) == 0 {
		return "", failNoChoices, errors.New("completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", failEmptyContent, errors.New("completion returned empty content")
	}

	return content, failNone, nil
}

func (g *Generator) record(ctx context.Context, model, outcome string, d time.Duration) {
	if g.metrics != nil {
		g.metrics.RecordGeneration(ctx, model, outcome, d)
	}
}

// classify maps a completion error to a failure class.
func classify(err error) failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode)
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return failCircuitOpen
	}

	var syntaxErr *json.SyntaxError

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return failMalformed
	}

	return failNetwork
}

func classifyStatus(code int) failure {
	switch {
	case code == http.StatusUnauthorized:
		return failUnauthorized
	case code == http.StatusTooManyRequests:
		return failRateLimited
	case code == 0:
		return failNetwork
	default:
		return failHTTP
	}
}
