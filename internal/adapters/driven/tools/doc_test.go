package tools

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "ok", Truncate("ok"))

	long := strings.Repeat("a", MaxDiagnostic+10)
	assert.Len(t, Truncate(long), MaxDiagnostic)

	// A two-byte rune straddling the limit is dropped whole.
	split := strings.Repeat("a", MaxDiagnostic-1) + "é" + "tail"
	got := Truncate(split)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxDiagnostic-1, len(got))
}
