package list

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testChunks() []string {
	return []string{
		"[STATIC] severity:High | Reentrancy in Vault.withdraw() | elements:withdraw",
		"[DYNAMIC:fails] property:echidna_balance | trace:deposit(1) -> withdraw(2)",
		"untagged note",
	}
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		chunk    string
		wantTag  string
		wantBody string
	}{
		{"[STATIC] severity:High | x", "STATIC", "severity:High | x"},
		{"[DYNAMIC:fails] property:P", "DYNAMIC:fails", "property:P"},
		{"no tag", "", "no tag"},
		{"[unterminated", "", "[unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.chunk, func(t *testing.T) {
			tag, body := SplitTag(tt.chunk)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestFindingList_Empty(t *testing.T) {
	l := NewFindingList(nil)

	assert.Contains(t, l.View(), "No findings")
	assert.Empty(t, l.SelectedChunk())
}

func TestFindingList_Navigation(t *testing.T) {
	l := NewFindingList(nil)
	l.SetChunks(testChunks())

	assert.Equal(t, 0, l.Selected())
	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())
	assert.Equal(t, "untagged note", l.SelectedChunk())

	l.SetChunks(testChunks()[:1])
	assert.Equal(t, 0, l.Selected(), "new chunks reset the selection")
}

func TestFindingList_View(t *testing.T) {
	l := NewFindingList(nil)
	l.SetDimensions(120, 10)
	l.SetChunks(testChunks())

	view := l.View()

	assert.Contains(t, view, "Findings (3)")
	assert.Contains(t, view, "STATIC")
	assert.Contains(t, view, "DYNAMIC:fails")
	assert.Contains(t, view, "Reentrancy in Vault.withdraw()")
}

func TestFindingList_ScrollsToSelection(t *testing.T) {
	l := NewFindingList(nil)
	l.SetDimensions(80, 3)
	l.SetChunks(testChunks())

	l.MoveDown()
	l.MoveDown()

	view := l.View()
	assert.Contains(t, view, "untagged note")
	assert.NotContains(t, view, "Reentrancy")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "ééé...", truncateRunes(strings.Repeat("é", 10), 6))
	assert.Equal(t, "ab", truncateRunes("abcdef", 2))
}
