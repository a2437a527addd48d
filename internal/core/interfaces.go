// Package core defines the collaborator interfaces the narration pipeline and
// the job worker depend on.
package core

import "context"

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// SpeechSynthesizer turns text into an MP3 payload. The returned bytes are
// opaque to callers.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, languageCode string) ([]byte, error)
}

// MarkupTransformer rewrites raw notes text into the markup handed to the
// synthesizer.
type MarkupTransformer interface {
	Transform(raw string) string
}

// MarkupTransformerFunc adapts a plain function to MarkupTransformer.
type MarkupTransformerFunc func(raw string) string

// Transform calls f(raw).
func (f MarkupTransformerFunc) Transform(raw string) string { return f(raw) }

// ChainMarkup returns a transformer that applies steps in order.
func ChainMarkup(steps ...MarkupTransformer) MarkupTransformer {
	return MarkupTransformerFunc(func(raw string) string {
		for _, step := range steps {
			raw = step.Transform(raw)
		}

		return raw
	})
}
