package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bunsho/internal/models"
)

// interpretMaxLength bounds the document text sent for interpretation.
const interpretMaxLength = 2000

// Interpreter generates document-level understanding through a Client:
// summaries, topic lists, grounded answers, and language identification.
type Interpreter struct {
	client Client
	logger *zap.Logger
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) InterpreterOption {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// NewInterpreter creates an interpreter over the given client.
func NewInterpreter(client Client, opts ...InterpreterOption) *Interpreter {
	i := &Interpreter{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InterpretDocument asks the model for a structured reading of the document.
// The text is truncated before sending; a malformed model response yields an
// error rather than a partially parsed result.
func (i *Interpreter) InterpretDocument(ctx context.Context, text string) (*models.Interpretation, error) {
	if len(text) > interpretMaxLength {
		text = text[:interpretMaxLength]
	}

	prompt := fmt.Sprintf(`Analyze the following document and provide:
1. A brief summary (2-3 sentences)
2. Main topics (3-5 topics)
3. Document purpose (what is this document for?)
4. Key insights (3-5 important points)
5. Suggested tags for categorization (5-7 tags)

Document:
%s

Respond in JSON format with keys: summary, main_topics, document_purpose, key_insights, suggested_tags`, text)

	response, err := i.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("interpretation request failed: %w", err)
	}

	var interp models.Interpretation
	if err := json.Unmarshal([]byte(extractJSON(response)), &interp); err != nil {
		i.logger.Warn("failed to parse interpretation response", zap.Error(err))
		return nil, fmt.Errorf("failed to parse interpretation response: %w", err)
	}
	return &interp, nil
}

// GenerateAnswer answers a question grounded in the retrieved context. The
// model is instructed to refuse when the context does not contain the answer.
func (i *Interpreter) GenerateAnswer(ctx context.Context, question, context_ string) (string, error) {
	prompt := fmt.Sprintf(`Based on the provided context, answer the user's question.
If the answer is not in the context, say "I cannot answer this based on the available documents."

Context:
%s

Question:
%s

Answer:`, context_, question)

	answer, err := i.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// DetectLanguage identifies the dominant language of text, sampling from the
// middle of the document where body text is more representative than front
// matter. Falls back to script heuristics when the model call fails.
func (i *Interpreter) DetectLanguage(ctx context.Context, text string) string {
	sample := middleSample(text)
	if strings.TrimSpace(sample) == "" {
		return models.LangUnknown
	}

	prompt := fmt.Sprintf(`Identify the language of the following text.
Respond ONLY with the ISO 639-1 language code (e.g., 'en', 'ar', 'fr').
If mixed, output the dominant language code.

Text:
%s`, sample)

	response, err := i.client.Complete(ctx, prompt)
	if err != nil {
		i.logger.Debug("language detection via model failed, using heuristic", zap.Error(err))
		return DetectLanguageHeuristic(sample)
	}

	code := strings.ToLower(strings.TrimSpace(response))
	code = strings.NewReplacer(`"`, "", "'", "").Replace(code)
	if len(code) > 2 {
		code = code[:2]
	}
	if code == "" {
		return models.LangUnknown
	}
	return code
}

// middleSample returns up to 1000 characters starting a quarter of the way
// into the text (capped at offset 1000).
func middleSample(text string) string {
	start := len(text) / 4
	if start > 1000 {
		start = 1000
	}
	end := start + 1000
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// extractJSON returns the outermost {...} block in response, or the response
// unchanged when no braces are found. Models often wrap JSON in prose or
// markdown fences.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return response
}
