package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studykit/go-tutor-backend/internal/config"
	"github.com/studykit/go-tutor-backend/internal/domain"
)

// fakeGemini builds a Gemini wired to a canned generate function.
func fakeGemini(mode string, maxTurns int, gen generateFunc) *Gemini {
	return &Gemini{
		model:           "test-model",
		maxHistoryTurns: maxTurns,
		summaryMode:     mode,
		generate:        gen,
	}
}

func fixedOutput(out string) generateFunc {
	return func(context.Context, string, string, bool) (string, error) {
		return out, nil
	}
}

func TestReply_Success(t *testing.T) {
	var gotPrompt string
	g := fakeGemini(config.SummaryModeKeywords, 20, func(_ context.Context, model, prompt string, jsonOut bool) (string, error) {
		gotPrompt = prompt
		if model != "test-model" {
			t.Errorf("model = %q", model)
		}
		if jsonOut {
			t.Errorf("reply must not request JSON output")
		}
		return "  Gradient descent follows the negative gradient.  ", nil
	})

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "What is gradient descent?"},
		{Role: domain.RoleModel, Content: "An iterative optimizer."},
	}
	out, err := g.Reply(context.Background(), "Machine Learning", "Does it always converge?", history)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if out != "Gradient descent follows the negative gradient." {
		t.Fatalf("out = %q", out)
	}

	for _, want := range []string{
		"Machine Learning",
		"Does it always converge?",
		"User: What is gradient descent?",
		"Assistant: An iterative optimizer.",
	} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gotPrompt)
		}
	}
}

func TestReply_NoHistoryOmitsSection(t *testing.T) {
	var gotPrompt string
	g := fakeGemini(config.SummaryModeKeywords, 20, func(_ context.Context, _, prompt string, _ bool) (string, error) {
		gotPrompt = prompt
		return "answer", nil
	})

	if _, err := g.Reply(context.Background(), "Other", "why?", nil); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if strings.Contains(gotPrompt, "chat history") {
		t.Fatalf("history section rendered without history:\n%s", gotPrompt)
	}
}

func TestReply_ProviderError(t *testing.T) {
	g := fakeGemini(config.SummaryModeKeywords, 20, func(context.Context, string, string, bool) (string, error) {
		return "", errors.New("dial tcp: connection refused")
	})

	_, err := g.Reply(context.Background(), "Other", "why?", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestReply_EmptyOutput(t *testing.T) {
	g := fakeGemini(config.SummaryModeKeywords, 20, fixedOutput("   \n"))

	_, err := g.Reply(context.Background(), "Other", "why?", nil)
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestExtractFlashcards_JSONOutput(t *testing.T) {
	g := fakeGemini(config.SummaryModeKeywords, 20, func(_ context.Context, _, prompt string, jsonOut bool) (string, error) {
		if !jsonOut {
			t.Errorf("extraction must request JSON output")
		}
		if !strings.Contains(prompt, "User: teach me recursion") {
			t.Errorf("prompt missing transcript:\n%s", prompt)
		}
		return "```json\n[{\"question\":\"What is recursion?\",\"answer\":\"A function calling itself.\"}]\n```", nil
	})

	cards, err := g.ExtractFlashcards(context.Background(), "User: teach me recursion")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "What is recursion?" {
		t.Fatalf("cards = %+v", cards)
	}
}

func TestExtractFlashcards_EmptyArrayIsSuccess(t *testing.T) {
	g := fakeGemini(config.SummaryModeKeywords, 20, fixedOutput("[]"))

	cards, err := g.ExtractFlashcards(context.Background(), "User: hi")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if cards == nil || len(cards) != 0 {
		t.Fatalf("cards = %#v, want empty non-nil slice", cards)
	}
}

func TestExtractFlashcards_ProviderError(t *testing.T) {
	g := fakeGemini(config.SummaryModeKeywords, 20, func(context.Context, string, string, bool) (string, error) {
		return "", errors.New("503")
	})

	_, err := g.ExtractFlashcards(context.Background(), "User: hi")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSummarize_KeywordsMode(t *testing.T) {
	var gotPrompt string
	g := fakeGemini(config.SummaryModeKeywords, 20, func(_ context.Context, _, prompt string, _ bool) (string, error) {
		gotPrompt = prompt
		return "Qubits, Entanglement, Superposition", nil
	})

	out, err := g.Summarize(context.Background(), "User: qubits?", "Quantum Computing")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "Qubits, Entanglement, Superposition" {
		t.Fatalf("out = %q", out)
	}
	if !strings.Contains(gotPrompt, "comma-separated") {
		t.Fatalf("keywords template not used:\n%s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, `"Quantum Computing"`) {
		t.Fatalf("topic exclusion clause missing:\n%s", gotPrompt)
	}
}

func TestSummarize_SentenceMode(t *testing.T) {
	var gotPrompt string
	g := fakeGemini(config.SummaryModeSentence, 20, func(_ context.Context, _, prompt string, _ bool) (string, error) {
		gotPrompt = prompt
		return "A chat about qubits.", nil
	})

	if _, err := g.Summarize(context.Background(), "User: qubits?", "Quantum Computing"); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(gotPrompt, "one short sentence") {
		t.Fatalf("sentence template not used:\n%s", gotPrompt)
	}
}

func TestSummarize_EmptyOutput(t *testing.T) {
	g := fakeGemini(config.SummaryModeKeywords, 20, fixedOutput(""))

	_, err := g.Summarize(context.Background(), "User: hi", "Other")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestParseFlashcards(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"plain array", `[{"question":"q","answer":"a"}]`, 1, false},
		{"fenced", "```json\n[{\"question\":\"q\",\"answer\":\"a\"}]\n```", 1, false},
		{"bare fence", "```\n[]\n```", 0, false},
		{"empty array", "[]", 0, false},
		{"empty response", "   ", 0, true},
		{"not json", "sure! here are your cards", 0, true},
		{"blank question", `[{"question":" ","answer":"a"}]`, 0, true},
		{"blank answer", `[{"question":"q","answer":""}]`, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cards, err := parseFlashcards(c.raw)
			if c.wantErr {
				if !errors.Is(err, ErrMalformedOutput) {
					t.Fatalf("expected ErrMalformedOutput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(cards) != c.want {
				t.Fatalf("len = %d, want %d", len(cards), c.want)
			}
		})
	}
}

func TestWindowHistory(t *testing.T) {
	mk := func(n int) []domain.Message {
		out := make([]domain.Message, n)
		for i := range out {
			out[i] = domain.Message{Role: domain.RoleUser, Content: strings.Repeat("x", i+1)}
		}
		return out
	}

	if got := windowHistory(mk(5), 0); len(got) != 5 {
		t.Fatalf("unbounded: len = %d", len(got))
	}
	if got := windowHistory(mk(5), 10); len(got) != 5 {
		t.Fatalf("under cap: len = %d", len(got))
	}
	got := windowHistory(mk(5), 2)
	if len(got) != 2 {
		t.Fatalf("capped: len = %d", len(got))
	}
	if got[1].Content != "xxxxx" {
		t.Fatalf("window must keep the most recent messages, got %q", got[1].Content)
	}
}

func TestReply_UsesHistoryWindow(t *testing.T) {
	var gotPrompt string
	g := fakeGemini(config.SummaryModeKeywords, 2, func(_ context.Context, _, prompt string, _ bool) (string, error) {
		gotPrompt = prompt
		return "ok", nil
	})

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "oldest question"},
		{Role: domain.RoleModel, Content: "middle answer"},
		{Role: domain.RoleUser, Content: "newest question"},
	}
	if _, err := g.Reply(context.Background(), "Other", "next?", history); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if strings.Contains(gotPrompt, "oldest question") {
		t.Fatalf("history window not applied:\n%s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "newest question") {
		t.Fatalf("recent history dropped:\n%s", gotPrompt)
	}
}
