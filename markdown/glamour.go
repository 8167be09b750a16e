package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	glamourMu    sync.Mutex
	glamourCache = map[int]*glamour.TermRenderer{}
)

func glamourRenderer(width int) *glamour.TermRenderer {
	if width <= 0 {
		width = 100
	}
	glamourMu.Lock()
	defer glamourMu.Unlock()
	if r, ok := glamourCache[width]; ok {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	glamourCache[width] = r
	return r
}

// Glamour renders full markdown with glamour. It falls back to the raw text
// when the renderer is unavailable or fails.
func Glamour(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r := glamourRenderer(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour adds surrounding newlines; trim for inline display.
	return strings.Trim(out, "\n")
}
