package retrieval

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hyperjump/bunsho/internal/models"
)

// ContextFormatter assembles retrieved chunks into a numbered prompt context
// under a token budget. Token counts come from tiktoken's cl100k_base
// encoding; if the encoding cannot be loaded, a four-characters-per-token
// estimate is used instead.
type ContextFormatter struct {
	maxTokens int
	encoding  *tiktoken.Tiktoken
}

// NewContextFormatter creates a formatter with the given token budget.
func NewContextFormatter(maxTokens int) *ContextFormatter {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		encoding = nil
	}
	return &ContextFormatter{maxTokens: maxTokens, encoding: encoding}
}

// FormatContext renders chunks as "[n] content" blocks separated by blank
// lines, stopping before the block that would exceed the token budget. The
// returned slice holds the chunks that made the cut, in order.
func (f *ContextFormatter) FormatContext(chunks []*models.RetrievedChunk) (string, []*models.RetrievedChunk) {
	var b strings.Builder
	var included []*models.RetrievedChunk
	used := 0
	for i, chunk := range chunks {
		block := fmt.Sprintf("[%d] %s", i+1, chunk.Content)
		tokens := f.countTokens(block)
		if used+tokens > f.maxTokens && len(included) > 0 {
			break
		}
		if len(included) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		used += tokens
		included = append(included, chunk)
		if used >= f.maxTokens {
			break
		}
	}
	return b.String(), included
}

func (f *ContextFormatter) countTokens(text string) int {
	if f.encoding != nil {
		return len(f.encoding.Encode(text, nil, nil))
	}
	return models.EstimateTokens(text)
}
