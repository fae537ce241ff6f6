package normalisers

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/normalisers/echidna"
	"github.com/custodia-labs/chainaudit/internal/normalisers/slither"
)

// Format names a recognised report family.
type Format string

// Recognised report families.
const (
	FormatSlither Format = slither.ToolName
	FormatEchidna Format = echidna.ToolName
)

// Detect returns the report family of payload.
// Static reports take precedence when a payload matches both.
func Detect(payload map[string]any) (Format, bool) {
	switch {
	case slither.Matches(payload):
		return FormatSlither, true
	case echidna.Matches(payload):
		return FormatEchidna, true
	default:
		return "", false
	}
}

// Normalise flattens a report of unknown family.
// name identifies the report in the returned error.
func Normalise(name string, payload map[string]any) ([]domain.Finding, error) {
	format, ok := Detect(payload)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
	}
	if format == FormatSlither {
		return slither.Normalise(payload), nil
	}
	return echidna.Normalise(payload), nil
}

// ParseReport decodes a raw JSON report and flattens it.
// Malformed JSON is invalid input; well-formed JSON that is not an object
// is rejected as unsupported.
func ParseReport(name string, data []byte) ([]domain.Finding, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", domain.ErrInvalidInput, name)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnsupportedFormat, name, err)
	}
	return Normalise(name, payload)
}
