// Package llm provides text-generation clients and higher-level document
// understanding: interpretation, grounded answering, and language detection.
//
// Providers implement the Client interface; callers hold the interface and
// never branch on the provider type.
package llm

import "context"

// Client completes a prompt with generated text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
