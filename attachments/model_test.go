package attachments

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestModel_AddAndDecorate(t *testing.T) {
	m := New()
	p := writeTemp(t, "notes.md", "hello")
	require.NoError(t, m.Add(p))
	assert.Equal(t, 1, m.Count())

	body := m.Decorate("see attached")
	assert.Equal(t, "see attached\n\n📎 **File:** notes.md (Markdown, 5 B)", body)
	assert.Equal(t, "📎 **File:** notes.md (Markdown, 5 B)", m.Decorate(""))
}

func TestModel_AddRejects(t *testing.T) {
	m := New()
	assert.Error(t, m.Add(t.TempDir()))
	assert.Error(t, m.Add(filepath.Join(t.TempDir(), "missing")))

	p := writeTemp(t, "a.txt", "a")
	require.NoError(t, m.Add(p))
	assert.Error(t, m.Add(p))
}

func TestModel_DeleteMode(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(writeTemp(t, "a.txt", "a")))
	require.NoError(t, m.Add(writeTemp(t, "b.txt", "b")))

	m.EnterDeleteMode()
	require.True(t, m.InDeleteMode())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	removed, ok := cmd().(RemovedMsg)
	require.True(t, ok)
	assert.Equal(t, "b.txt", filepath.Base(removed.Path))
	assert.Equal(t, 1, m.Count())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.True(t, m.IsEmpty())
	assert.False(t, m.InDeleteMode())
}

func TestModel_ViewEmpty(t *testing.T) {
	assert.Equal(t, "", New().View())
}

func TestModel_ViewShowsChips(t *testing.T) {
	m := New()
	m.SetWidth(200)
	require.NoError(t, m.Add(writeTemp(t, "main.go", "package main")))
	assert.Contains(t, m.View(), "main.go")
}
