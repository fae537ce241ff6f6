// Package embedding holds the embedding service adapters and the error
// classification they share.
//
// Adapters must let callers tell timeouts apart from other failures, so
// every adapter funnels transport and status errors through Classify and
// StatusError.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// Classify wraps err with domain.ErrEmbeddingTimeout when it is a deadline
// or network timeout.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %w", provider, domain.ErrEmbeddingTimeout, err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}

// StatusError builds the error for a non-200 response. Gateway and request
// timeouts wrap domain.ErrEmbeddingTimeout.
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout {
		return fmt.Errorf("%s: %w (status %d): %s", provider, domain.ErrEmbeddingTimeout, status, msg)
	}
	return fmt.Errorf("%s: API error (status %d): %s", provider, status, msg)
}

// ToFloat32 narrows a float64 vector.
func ToFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
