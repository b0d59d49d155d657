package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stefanvasilev2002/intellicard/internal/config"
	"github.com/stefanvasilev2002/intellicard/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeModels replays a scripted sequence of responses.
type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	prompts   []string
	model     string
	mimeType  string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.model = model
	if cfg != nil {
		f.mimeType = cfg.ResponseMIMEType
	}
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func newTestGenerator(t *testing.T, models modelClient, maxRetries int) (*Generator, *[]time.Duration) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := newGenerator(logger, config.LLMConfig{
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		MaxRetries:        maxRetries,
		RetryDelaySeconds: 1,
	}, generation.NewDefaultPrompt(), models)

	var delays []time.Duration
	g.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return g, &delays
}

var testRequest = generation.Request{
	Text:     "Photosynthesis converts light energy into chemical energy.",
	Count:    2,
	Level:    generation.LevelEasy,
	Language: "English",
}

func TestGenerateCards_Success(t *testing.T) {
	t.Parallel()
	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		textResponse(`[{"term":"Photosynthesis","definition":"Conversion of light into chemical energy"}]`),
	}}
	g, delays := newTestGenerator(t, models, 3)

	pairs, err := g.GenerateCards(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, []generation.Pair{
		{Term: "Photosynthesis", Definition: "Conversion of light into chemical energy"},
	}, pairs)
	assert.Equal(t, 1, models.calls)
	assert.Empty(t, *delays)
	assert.Equal(t, "gemini-test", models.model)
	assert.Equal(t, "application/json", models.mimeType)
	require.Len(t, models.prompts, 1)
	assert.Contains(t, models.prompts[0], "Generate exactly 2 flashcards")
	assert.Contains(t, models.prompts[0], testRequest.Text)
}

func TestGenerateCards_RetriesTransientErrors(t *testing.T) {
	t.Parallel()
	models := &fakeModels{
		errs: []error{errors.New("503 unavailable"), errors.New("503 unavailable"), nil},
		responses: []*genai.GenerateContentResponse{
			nil, nil, textResponse(`[{"term":"a","definition":"long enough definition"}]`),
		},
	}
	g, delays := newTestGenerator(t, models, 3)

	pairs, err := g.GenerateCards(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, 3, models.calls)

	require.Len(t, *delays, 2)
	// base 1s * 2^attempt * jitter in [0.5, 1.0)
	assert.GreaterOrEqual(t, (*delays)[0], 500*time.Millisecond)
	assert.Less(t, (*delays)[0], time.Second)
	assert.GreaterOrEqual(t, (*delays)[1], time.Second)
	assert.Less(t, (*delays)[1], 2*time.Second)
}

func TestGenerateCards_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")
	models := &fakeModels{errs: []error{boom, boom, boom}}
	g, delays := newTestGenerator(t, models, 2)

	_, err := g.GenerateCards(context.Background(), testRequest)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 3, models.calls)
	assert.Len(t, *delays, 2)
}

func TestGenerateCards_PermanentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want error
	}{
		{"nil response", nil, generation.ErrInvalidResponse},
		{"no candidates", &genai.GenerateContentResponse{}, generation.ErrInvalidResponse},
		{
			"safety block",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			generation.ErrContentBlocked,
		},
		{"empty text", textResponse("   "), generation.ErrInvalidResponse},
		{"not json", textResponse("Sorry, I can't do that."), generation.ErrInvalidResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			models := &fakeModels{responses: []*genai.GenerateContentResponse{tc.resp}}
			g, delays := newTestGenerator(t, models, 3)

			_, err := g.GenerateCards(context.Background(), testRequest)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, models.calls)
			assert.Empty(t, *delays)
		})
	}
}

func TestGenerateCards_ContextCanceled(t *testing.T) {
	t.Parallel()
	models := &fakeModels{errs: []error{context.Canceled}}
	g, _ := newTestGenerator(t, models, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.GenerateCards(ctx, testRequest)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 1, models.calls)
}

func TestGenerateCards_EmptyText(t *testing.T) {
	t.Parallel()
	models := &fakeModels{}
	g, _ := newTestGenerator(t, models, 3)

	_, err := g.GenerateCards(context.Background(), generation.Request{Count: 1})
	assert.ErrorIs(t, err, generation.ErrDocumentTooShort)
	assert.Zero(t, models.calls)
}

func TestNewGenerator_ConfigErrors(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewGenerator(context.Background(), nil, config.LLMConfig{})
	assert.Error(t, err)

	_, err = NewGenerator(context.Background(), logger, config.LLMConfig{ModelName: "m"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGenerator(context.Background(), logger, config.LLMConfig{GeminiAPIKey: "k"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGenerator(context.Background(), logger, config.LLMConfig{
		GeminiAPIKey:       "k",
		ModelName:          "m",
		PromptTemplatePath: "/nonexistent/prompt.tmpl",
	})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestNewGeneratorDefaultsRetrySettings(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := newGenerator(logger, config.LLMConfig{MaxRetries: -1, RetryDelaySeconds: 0},
		generation.NewDefaultPrompt(), &fakeModels{})

	assert.Equal(t, defaultMaxRetries, g.config.MaxRetries)
	assert.Equal(t, defaultRetryDelaySeconds, g.config.RetryDelaySeconds)
}
