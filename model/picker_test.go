package model

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_OpensOnActiveAndWraps(t *testing.T) {
	p := NewPicker()
	p.Open(PickModel, "Select Model", []PickerItem{
		{ID: "gemini/gemini-2.0-flash", Title: "gemini-2.0-flash", Group: "gemini"},
		{ID: "openai/gpt-4o", Title: "gpt-4o", Group: "openai", Active: true},
	})
	require.True(t, p.IsActive())
	assert.Equal(t, 1, p.cursor)

	next, _ := p.Update(key("down"))
	p = next.(PickerModel)
	assert.Equal(t, 0, p.cursor)
	next, _ = p.Update(key("up"))
	p = next.(PickerModel)
	assert.Equal(t, 1, p.cursor)

	view := ansi.Strip(p.View())
	assert.Contains(t, view, "Select Model")
	assert.Contains(t, view, "openai")

	next, cmd := p.Update(key("enter"))
	p = next.(PickerModel)
	assert.False(t, p.IsActive())
	require.NotNil(t, cmd)
	assert.Equal(t, PickerChoice{Kind: PickModel, Item: PickerItem{ID: "openai/gpt-4o", Title: "gpt-4o", Group: "openai", Active: true}}, cmd())
}

func TestPicker_Cancel(t *testing.T) {
	p := NewPicker()
	p.Open(PickAgent, "Agents", []PickerItem{{ID: "a", Title: "a"}})
	next, cmd := p.Update(key("esc"))
	assert.False(t, next.(PickerModel).IsActive())
	assert.Equal(t, PickerCancel{Kind: PickAgent}, cmd())
}

func TestPicker_EmptyList(t *testing.T) {
	p := NewPicker()
	p.Open(PickSession, "Sessions", nil)
	assert.Contains(t, ansi.Strip(p.View()), "No sessions available")
	_, cmd := p.Update(key("enter"))
	assert.Nil(t, cmd)
}

func TestPicker_Paging(t *testing.T) {
	items := make([]PickerItem, 30)
	for i := range items {
		items[i] = PickerItem{ID: string(rune('a' + i%26)), Title: "item"}
	}
	items[20].Active = true
	p := NewPicker()
	p.Open(PickTemplate, "Templates", items)
	assert.Equal(t, 20, p.cursor)
	assert.LessOrEqual(t, p.offset, 20)
	assert.Greater(t, p.offset+p.pageSize, 20)
	assert.Contains(t, ansi.Strip(p.View()), "more above")
}

func TestPicker_InactiveIgnoresKeys(t *testing.T) {
	p := NewPicker()
	_, cmd := p.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "", p.View())
}
