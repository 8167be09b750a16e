package model

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/miosa/osa-builder/msg"
)

func TestStatus_IdleLine(t *testing.T) {
	s := NewStatus()
	assert.Contains(t, ansi.Strip(s.View()), "offline")

	s.SetConnected(true)
	s.SetProviderInfo("gemini", "gemini-2.0-flash")
	s.SetAgent("code_generator")
	s.SetSession("0123456789abcdef")
	s.SetProject("todo")
	out := strings.TrimSpace(ansi.Strip(s.View()))
	assert.Equal(t, "● connected · gemini / gemini-2.0-flash · code_generator · project todo · session 01234567…", out)
}

func TestStatus_Active(t *testing.T) {
	s := NewStatus()
	s.SetActive(true)
	s.SetSpinner("⠋")
	assert.Contains(t, ansi.Strip(s.View()), "⠋ Thinking…")
	s.SetActive(false)
	assert.NotContains(t, ansi.Strip(s.View()), "Thinking")
}

func TestBanner(t *testing.T) {
	b := NewBanner()
	b.SetModel("gemini", "gemini-2.0-flash")
	b.SetHealth(msg.HealthResult{Status: "healthy", Agents: 9})
	assert.Equal(t, "OSA Builder "+Version+" · gemini / gemini-2.0-flash · 9 agents", ansi.Strip(b.View()))

	b.SetHealth(msg.HealthResult{Status: "degraded"})
	assert.Contains(t, ansi.Strip(b.View()), "degraded")
}
