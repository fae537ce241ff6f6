// Package googleai initialises the Genkit runtime with the Google AI plugin.
// The embedding and LLM Gemini adapters share one runtime.
package googleai

import (
	"context"
	"errors"
	"strings"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
)

// Provider is the Genkit plugin prefix for Google AI models.
const Provider = "googleai"

// ErrMissingAPIKey is returned when no Gemini API key is configured.
var ErrMissingAPIKey = errors.New("googleai: API key is required")

// NewApp returns a Genkit runtime with the Google AI plugin registered.
func NewApp(ctx context.Context, apiKey string) (*genkit.Genkit, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: apiKey})), nil
}

// ModelRef qualifies a bare model name with the plugin prefix.
// Names that already carry a provider prefix are returned unchanged.
func ModelRef(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return Provider + "/" + name
}

// IsTimeout reports whether a Gemini error is a gateway or deadline failure.
// The Gemini SDK reports these only through the error text.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "504") || strings.Contains(msg, "deadline exceeded")
}
