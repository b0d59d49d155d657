package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stefanvasilev2002/intellicard/internal/redact"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// modelClient is the subset of *genai.Models the generator uses.
type modelClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements the generation.Generator interface using
// Google's Gemini API.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	prompt *generation.Prompt
	models modelClient

	// sleep waits for d or until ctx ends; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu  sync.Mutex
	rng *rand.Rand
}

// Ensure Generator implements generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator backed by the Gemini API.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	prompt, err := generation.LoadPrompt(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, redact.Error(err))
	}

	return newGenerator(logger, cfg, prompt, client.Models), nil
}

func newGenerator(
	logger *slog.Logger,
	cfg config.LLMConfig,
	prompt *generation.Prompt,
	models modelClient,
) *Generator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelaySeconds < 1 {
		cfg.RetryDelaySeconds = defaultRetryDelaySeconds
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		config: cfg,
		prompt: prompt,
		models: models,
		sleep:  sleepContext,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateCards implements generation.Generator.
func (g *Generator) GenerateCards(ctx context.Context, req generation.Request) ([]generation.Pair, error) {
	prompt, err := g.prompt.Render(req)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "generating cards",
		slog.Int("text_length", len(req.Text)),
		slog.Int("count", req.Count),
		slog.String("level", string(req.Level)))

	output, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	pairs, err := generation.ParsePairs(output)
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "gemini returned pairs",
		slog.Int("pair_count", len(pairs)),
		slog.Int("requested", req.Count))
	return pairs, nil
}

// callWithRetry calls the model up to MaxRetries+1 times, backing off
// exponentially with jitter between attempts. Blocked or malformed responses
// are permanent and returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "calling gemini",
			slog.Int("attempt", attemptNum),
			slog.Int("max_attempts", maxRetries+1))

		resp, err := g.models.GenerateContent(ctx, g.config.ModelName, genai.Text(prompt), cfg)
		if err == nil {
			text, perr := responseText(resp)
			if perr == nil {
				return text, nil
			}
			g.logger.WarnContext(ctx, "permanent gemini error, not retrying",
				slog.Int("attempt", attemptNum),
				slog.String("error", perr.Error()))
			return "", perr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctxErr)
		}

		g.logger.ErrorContext(ctx, "gemini call failed",
			slog.Int("attempt", attemptNum),
			slog.String("error", redact.Error(err)))

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		delay := g.backoff(attempt)
		g.logger.InfoContext(ctx, "retrying gemini call after delay",
			slog.Int("attempt", attemptNum),
			slog.Float64("delay_seconds", delay.Seconds()))

		if err := g.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
}

// backoff returns base * 2^attempt scaled by a jitter factor in [0.5, 1.0).
func (g *Generator) backoff(attempt int) time.Duration {
	g.mu.Lock()
	jitter := 0.5 + g.rng.Float64()*0.5
	g.mu.Unlock()

	seconds := float64(g.config.RetryDelaySeconds) * math.Pow(2, float64(attempt)) * jitter
	return time.Duration(seconds * float64(time.Second))
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
