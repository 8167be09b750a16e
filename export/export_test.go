package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miosa/osa-builder/attachments"
)

func TestExport_InitialisesAndCommits(t *testing.T) {
	dir := t.TempDir()
	files := []attachments.File{
		{Path: "backend/main.py", Content: "print('hi')\n"},
		{Name: "index.html", Content: "<h1>hi</h1>\n"},
	}
	when := time.Date(2025, 7, 27, 12, 0, 0, 0, time.UTC)

	res, err := Export(dir, files, Options{Message: "Export session s1", AuthorName: "Ada", When: when}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, []string{"backend/main.py", "index.html"}, res.Files)
	assert.Len(t, res.Commit, 40)

	data, err := os.ReadFile(filepath.Join(dir, "backend", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, res.Commit, head.Hash().String())

	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Export session s1", commit.Message)
	assert.Equal(t, "Ada", commit.Author.Name)
	assert.Equal(t, "osa-builder@localhost", commit.Author.Email)

	var names []string
	tree, err := commit.Tree()
	require.NoError(t, err)
	require.NoError(t, tree.Files().ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	}))
	assert.ElementsMatch(t, []string{"backend/main.py", "index.html"}, names)
}

func TestExport_ReusesExistingRepo(t *testing.T) {
	dir := t.TempDir()
	first, err := Export(dir, []attachments.File{{Name: "a.txt", Content: "1"}}, Options{}, nil)
	require.NoError(t, err)

	second, err := Export(dir, []attachments.File{{Name: "a.txt", Content: "2"}}, Options{}, nil)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.NotEqual(t, first.Commit, second.Commit)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	iter, err := repo.Log(&git.LogOptions{})
	require.NoError(t, err)
	count := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error { count++; return nil }))
	assert.Equal(t, 2, count)
}

func TestExport_NoFiles(t *testing.T) {
	_, err := Export(t.TempDir(), nil, Options{}, nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExport_UnsafeName(t *testing.T) {
	_, err := Export(t.TempDir(), []attachments.File{{Name: "../x", Content: "x"}}, Options{}, nil)
	assert.ErrorIs(t, err, attachments.ErrUnsafeName)
}
