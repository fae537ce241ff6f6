// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/styles"
)

// FindingList shows the retrieved findings behind an answer.
// The selected finding is shown in full; the others on one line.
type FindingList struct {
	chunks   []string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewFindingList creates an empty finding list.
func NewFindingList(s *styles.Styles) *FindingList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &FindingList{styles: s, width: 80, height: 10}
}

// SplitTag separates a chunk's leading "[TAG]" from its body.
// Chunks without a tag return an empty tag.
func SplitTag(chunk string) (tag, body string) {
	if !strings.HasPrefix(chunk, "[") {
		return "", chunk
	}
	end := strings.Index(chunk, "]")
	if end < 0 {
		return "", chunk
	}
	return chunk[1:end], strings.TrimSpace(chunk[end+1:])
}

// View renders the list.
func (l *FindingList) View() string {
	if len(l.chunks) == 0 {
		return l.styles.Muted.Render("No findings were retrieved")
	}

	lines := make([]string, 0, len(l.chunks)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Findings (%d)", len(l.chunks))), "")

	visible := max(l.height-2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.chunks))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderChunk(i))
	}
	return strings.Join(lines, "\n")
}

func (l *FindingList) renderChunk(index int) string {
	tag, body := SplitTag(l.chunks[index])

	tagView := ""
	if tag != "" {
		tagStyle := l.styles.StaticTag
		if strings.HasPrefix(tag, "DYNAMIC") {
			tagStyle = l.styles.DynamicTag
		}
		tagView = tagStyle.Render(tag) + " "
	}

	if index == l.selected {
		wrapped := lipgloss.NewStyle().Width(max(l.width-4, 20)).Render(body)
		return l.styles.Selected.Render("> ") + tagView + l.styles.Normal.Render(wrapped)
	}
	return "  " + tagView + l.styles.Muted.Render(truncateRunes(body, max(l.width-lipgloss.Width(tag)-6, 10)))
}

// truncateRunes shortens s to n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetChunks replaces the findings and selects the first.
func (l *FindingList) SetChunks(chunks []string) {
	l.chunks = chunks
	l.selected = 0
}

// Chunks returns the current findings.
func (l *FindingList) Chunks() []string {
	return l.chunks
}

// Selected returns the index of the selected finding.
func (l *FindingList) Selected() int {
	return l.selected
}

// SelectedChunk returns the selected finding, or "" when the list is empty.
func (l *FindingList) SelectedChunk() string {
	if l.selected < 0 || l.selected >= len(l.chunks) {
		return ""
	}
	return l.chunks[l.selected]
}

// MoveUp moves the selection up.
func (l *FindingList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *FindingList) MoveDown() {
	if l.selected < len(l.chunks)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *FindingList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of findings.
func (l *FindingList) Count() int {
	return len(l.chunks)
}
