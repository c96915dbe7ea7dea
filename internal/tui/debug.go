package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pyropark/storefront/internal/api"
)

// DebugPanel lists recent API calls
type DebugPanel struct {
	enabled bool       // Whether the panel is shown
	calls   []api.Call // Recent calls, oldest first
	buffer  int        // Max calls to keep
}

// NewDebugPanel creates a new debug panel
func NewDebugPanel(enabled bool) DebugPanel {
	return DebugPanel{
		enabled: enabled,
		buffer:  100, // Keep last 100 calls
	}
}

// IsEnabled returns whether the panel is shown
func (d *DebugPanel) IsEnabled() bool {
	return d.enabled
}

// Toggle shows or hides the panel
func (d *DebugPanel) Toggle() {
	d.enabled = !d.enabled
}

// AddCall records a call. Calls are kept while hidden so opening the
// panel shows recent history.
func (d *DebugPanel) AddCall(c api.Call) {
	d.calls = append(d.calls, c)
	if len(d.calls) > d.buffer {
		d.calls = d.calls[len(d.calls)-d.buffer:]
	}
}

// Calls returns the recorded calls
func (d *DebugPanel) Calls() []api.Call {
	return d.calls
}

// formatCall renders one call as "id METHOD path -> status (duration)"
func formatCall(c api.Call) string {
	status := fmt.Sprintf("%d", c.Status)
	if c.Status == 0 {
		status = "ERR"
	}
	line := fmt.Sprintf("%s %s %s -> %s (%s)",
		c.RequestID, c.Method, c.Path, status, c.Duration.Round(time.Millisecond))
	switch {
	case c.Err != nil || c.Status >= 400:
		return ErrorStyle.Render(line)
	default:
		return DimStyle.Render(line)
	}
}

// Render renders the debug panel
func (d *DebugPanel) Render(width, height int) string {
	if !d.enabled {
		return ""
	}

	title := lipgloss.NewStyle().
		Foreground(ColorYellow).
		Bold(true).
		Render("API CALLS")

	// Calculate available height for content (minus title and borders)
	contentHeight := height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}

	maxLen := width - 4
	if maxLen < 10 {
		maxLen = 10
	}

	var lines []string
	startIdx := 0
	if len(d.calls) > contentHeight {
		startIdx = len(d.calls) - contentHeight
	}
	for _, c := range d.calls[startIdx:] {
		lines = append(lines, formatCall(truncateCall(c, maxLen)))
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorYellow).
		Padding(0, 1).
		Render(title + "\n" + strings.Join(lines, "\n"))
}

// truncateCall shortens the path so the rendered line fits max
func truncateCall(c api.Call, max int) api.Call {
	fixed := len(c.RequestID) + len(c.Method) + 24
	if room := max - fixed; room > 3 && len(c.Path) > room {
		c.Path = c.Path[:room-1] + "…"
	}
	return c
}
