package model

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-builder/style"
)

// ToastLevel classifies toast severity.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastWarning
	ToastError
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
)

type toast struct {
	text   string
	level  ToastLevel
	expiry time.Time
}

// ToastsModel is a short queue of auto-dismissing notifications, used for
// copy confirmations, saves and recoverable errors.
type ToastsModel struct {
	queue []toast
	now   func() time.Time
}

// NewToasts creates an empty ToastsModel.
func NewToasts() ToastsModel {
	return ToastsModel{now: time.Now}
}

// Add enqueues a toast, dropping the oldest beyond maxToasts. A toast equal
// to the newest one only refreshes its expiry.
func (m *ToastsModel) Add(text string, level ToastLevel) {
	exp := m.now().Add(toastTTL)
	if n := len(m.queue); n > 0 && m.queue[n-1].text == text && m.queue[n-1].level == level {
		m.queue[n-1].expiry = exp
		return
	}
	m.queue = append(m.queue, toast{text: text, level: level, expiry: exp})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
}

// Tick prunes expired toasts. Call on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.now()
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
}

// Count returns the number of visible toasts.
func (m ToastsModel) Count() int { return len(m.queue) }

// View renders visible toasts right-aligned within termWidth.
func (m ToastsModel) View(termWidth int) string {
	if len(m.queue) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.queue))
	for _, t := range m.queue {
		icon, color := toastIconColor(t.level)
		rendered := lipgloss.NewStyle().Foreground(color).Render(" " + icon + " " + t.text + " ")
		pad := termWidth - lipgloss.Width(rendered)
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func toastIconColor(level ToastLevel) (string, lipgloss.TerminalColor) {
	switch level {
	case ToastWarning:
		return "⚠", style.Warning
	case ToastError:
		return "✘", style.Error
	default:
		return "✓", style.Success
	}
}
