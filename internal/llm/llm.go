package llm

import (
	"context"
	"strings"
)

// Options are the sampling parameters for a single completion call.
// HasSeed distinguishes "seed 0" from "no seed requested".
type Options struct {
	Temperature float64
	MaxTokens   int
	Seed        int
	HasSeed     bool
}

// Provider is the interface the engine sees for the completion service.
type Provider interface {
	// Complete sends a prompt (and optional system message) and returns
	// the raw model text.
	Complete(ctx context.Context, prompt, system string, opts Options) (string, error)

	// Embed returns a fixed-length embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// StripFences removes a surrounding Markdown code fence from model output.
// Handles ```json / ```cypher style language tags; text without fences is
// returned trimmed but otherwise unchanged.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		// Drop a language tag directly after the opening fence.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			tag := strings.TrimSpace(rest[:nl])
			if tag != "" && !strings.ContainsAny(tag, " \t{[(") && len(tag) <= 10 {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}
	return s
}
