// Package llm provides a minimal provider-agnostic interface to
// generative text services, with Anthropic and Gemini backends.
package llm

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Client defines the single generative operation the pipeline needs:
// send a prompt, get the response text back.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configure a provider client.
type Options struct {
	Provider  string // "anthropic" or "gemini"
	APIKey    string
	Model     string // provider default when empty
	MaxTokens int64  // anthropic only; default 4096
}

// New builds a client for the configured provider. The API key falls
// back to the provider's conventional environment variable.
func New(ctx context.Context, opts Options) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	switch provider {
	case "", "anthropic":
		key := fallbackKey(opts.APIKey, "ANTHROPIC_API_KEY")
		if key == "" {
			return nil, eris.New("llm: anthropic API key not configured")
		}
		return NewAnthropic(key, opts.Model, opts.MaxTokens), nil
	case "gemini":
		key := fallbackKey(opts.APIKey, "GEMINI_API_KEY")
		if key == "" {
			return nil, eris.New("llm: gemini API key not configured")
		}
		return NewGemini(ctx, key, opts.Model)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", opts.Provider)
	}
}

func fallbackKey(key, envVar string) string {
	if key != "" {
		return key
	}
	return os.Getenv(envVar)
}
