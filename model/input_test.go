package model

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

var testCommands = []Command{
	{Name: "/copy", Args: "[n]", Usage: "copy a code block"},
	{Name: "/copyfile", Args: "<n>", Usage: "copy a created file"},
	{Name: "/help", Usage: "show commands"},
}

func press(m InputModel, k tea.KeyType) InputModel {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(InputModel)
}

func TestInput_History(t *testing.T) {
	m := NewInput()
	m.Submit("first")
	m.Submit("second")
	m.Submit("second")

	m = press(m, tea.KeyUp)
	assert.Equal(t, "second", m.Value())
	m = press(m, tea.KeyUp)
	assert.Equal(t, "first", m.Value())
	m = press(m, tea.KeyUp)
	assert.Equal(t, "first", m.Value())
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)
	assert.Equal(t, "", m.Value())
}

func TestInput_TabCompletion(t *testing.T) {
	m := NewInput()
	m.SetCommands(testCommands)
	m.SetValue("/co")

	m = press(m, tea.KeyTab)
	assert.Equal(t, "/copy", m.Value())
	m = press(m, tea.KeyTab)
	assert.Equal(t, "/copyfile", m.Value())
	m = press(m, tea.KeyTab)
	assert.Equal(t, "/copy", m.Value())
}

func TestInput_TabIgnoredForPrompts(t *testing.T) {
	m := NewInput()
	m.SetCommands(testCommands)
	m.SetValue("build me")
	m = press(m, tea.KeyTab)
	assert.Equal(t, "build me", m.Value())
}

func TestInput_UsageHint(t *testing.T) {
	m := NewInput()
	m.SetCommands(testCommands)

	m.SetValue("/he")
	assert.Contains(t, ansi.Strip(m.View()), "/help  show commands")

	// Ambiguous prefix shows nothing; an exact name wins.
	m.SetValue("/co")
	assert.Equal(t, "", m.hint())
	m.SetValue("/copy 2")
	assert.Equal(t, "/copy [n]  copy a code block", m.hint())
}
