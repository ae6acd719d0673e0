package tutor

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/studykit/go-tutor-backend/internal/domain"
)

// Prompt templates are fixed at build time; there is no per-deployment
// template loading. Wording follows the product's tutoring persona.
var (
	replyTmpl = template.Must(template.New("reply").Parse(`You are an AI tutor specializing in {{.Topic}}.

Your goal is to provide clear, personalized explanations to the user's questions.
Maintain context within the session for a fluid and personalized dialogue.

The user has asked the following question: {{.Question}}
{{if .History}}
Here is the chat history:
{{- range .History}}
{{if eq .Role "model"}}Assistant: {{.Content}}{{else}}User: {{.Content}}{{end}}
{{- end}}
{{end}}
Answer the question to the best of your ability:
`))

	extractTmpl = template.Must(template.New("extract").Parse(`You are an expert tutor, skilled at extracting key concepts from conversations and turning them into effective flashcards.

Given the following chat conversation, identify the most important concepts and create a set of flashcards to help the student review them.
Each flashcard should have a question and a concise answer.

Respond with a JSON array of objects, where each object has a "question" and "answer" field. Respond with an empty array if the conversation contains nothing worth reviewing.

Chat Conversation:
{{.Transcript}}
`))

	summarizeKeywordsTmpl = template.Must(template.New("summarize-keywords").Parse(`You are an expert in summarizing conversations.

Given the following chat conversation, extract the 3 to 5 most important keywords that represent the main topics.
Return them as a single, comma-separated string with no other text.
{{if .Topic}}Do not include "{{.Topic}}" itself or close synonyms of it; the reader already knows the subject.{{end}}

For example: "Machine Learning, Neural Networks, Overfitting, Python"

Chat Conversation:
{{.Transcript}}
`))

	summarizeSentenceTmpl = template.Must(template.New("summarize-sentence").Parse(`You are an expert in summarizing conversations.

Given the following chat conversation, describe what was discussed in exactly one short sentence with no other text.

Chat Conversation:
{{.Transcript}}
`))
)

type replyPrompt struct {
	Topic    string
	Question string
	History  []domain.Message
}

type transcriptPrompt struct {
	Transcript string
	Topic      string
}

func renderPrompt(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// windowHistory returns the most recent maxTurns messages. maxTurns <= 0
// leaves the history unbounded.
func windowHistory(history []domain.Message, maxTurns int) []domain.Message {
	if maxTurns <= 0 || len(history) <= maxTurns {
		return history
	}
	return history[len(history)-maxTurns:]
}
