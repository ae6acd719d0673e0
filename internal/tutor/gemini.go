package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/studykit/go-tutor-backend/internal/config"
	"github.com/studykit/go-tutor-backend/internal/domain"
)

// generateFunc is the single seam to the genai SDK; tests replace it to
// avoid network access.
type generateFunc func(ctx context.Context, model, prompt string, jsonOutput bool) (string, error)

// Gemini implements Service against Google's Gemini API.
type Gemini struct {
	model           string
	maxHistoryTurns int
	summaryMode     string

	generate generateFunc
}

// NewGemini constructs the Gemini-backed prompt service.
func NewGemini(ctx context.Context, cfg config.LLMConfig, summary config.SummaryConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("tutor: gemini API key must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("tutor: model name must not be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("tutor: create gemini client: %w", err)
	}

	return &Gemini{
		model:           cfg.Model,
		maxHistoryTurns: cfg.MaxHistoryTurns,
		summaryMode:     summary.Mode,
		generate: func(ctx context.Context, model, prompt string, jsonOutput bool) (string, error) {
			var genCfg *genai.GenerateContentConfig
			if jsonOutput {
				genCfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
			}
			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

// Reply implements Service.
func (g *Gemini) Reply(ctx context.Context, topic, question string, history []domain.Message) (string, error) {
	tr := otel.Tracer("tutor/Gemini")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.String("tutor.topic", topic),
			attribute.Int("tutor.history_len", len(history)),
		),
	)
	defer span.End()

	prompt, err := renderPrompt(replyTmpl, replyPrompt{
		Topic:    topic,
		Question: question,
		History:  windowHistory(history, g.maxHistoryTurns),
	})
	if err != nil {
		return "", err
	}

	out, err := g.generate(ctx, g.model, prompt, false)
	if err != nil {
		log.Warn().Err(err).Str("op", "reply").Msg("gemini call failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedOutput)
	}
	return answer, nil
}

// ExtractFlashcards implements Service.
func (g *Gemini) ExtractFlashcards(ctx context.Context, transcript string) ([]domain.Flashcard, error) {
	tr := otel.Tracer("tutor/Gemini")
	ctx, span := tr.Start(ctx, "ExtractFlashcards",
		trace.WithAttributes(attribute.Int("tutor.transcript_len", len(transcript))),
	)
	defer span.End()

	prompt, err := renderPrompt(extractTmpl, transcriptPrompt{Transcript: transcript})
	if err != nil {
		return nil, err
	}

	out, err := g.generate(ctx, g.model, prompt, true)
	if err != nil {
		log.Warn().Err(err).Str("op", "extract_flashcards").Msg("gemini call failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	cards, err := parseFlashcards(out)
	if err != nil {
		log.Warn().Err(err).Str("op", "extract_flashcards").Msg("unparseable model output")
		return nil, err
	}
	span.SetAttributes(attribute.Int("tutor.cards", len(cards)))
	return cards, nil
}

// Summarize implements Service.
func (g *Gemini) Summarize(ctx context.Context, transcript, topic string) (string, error) {
	tr := otel.Tracer("tutor/Gemini")
	ctx, span := tr.Start(ctx, "Summarize",
		trace.WithAttributes(attribute.String("tutor.mode", g.summaryMode)),
	)
	defer span.End()

	tmpl := summarizeKeywordsTmpl
	if g.summaryMode == config.SummaryModeSentence {
		tmpl = summarizeSentenceTmpl
	}
	prompt, err := renderPrompt(tmpl, transcriptPrompt{Transcript: transcript, Topic: topic})
	if err != nil {
		return "", err
	}

	out, err := g.generate(ctx, g.model, prompt, false)
	if err != nil {
		log.Warn().Err(err).Str("op", "summarize").Msg("gemini call failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	summary := strings.TrimSpace(out)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", ErrMalformedOutput)
	}
	return summary, nil
}

// parseFlashcards decodes a JSON array of {question, answer} objects. Models
// occasionally wrap JSON in markdown fences even when asked not to, so the
// fences are stripped before decoding. Entries with an empty question or
// answer make the whole result malformed rather than being silently dropped.
func parseFlashcards(raw string) ([]domain.Flashcard, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	var cards []domain.Flashcard
	if err := json.Unmarshal([]byte(s), &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return nil, fmt.Errorf("%w: card %d missing question or answer", ErrMalformedOutput, i)
		}
	}
	if cards == nil {
		cards = []domain.Flashcard{}
	}
	return cards, nil
}
