package attachments

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_UnmarshalStringOrObject(t *testing.T) {
	var files []File
	err := json.Unmarshal([]byte(`["app/main.py", {"name": "index.html", "content": "<p>hi</p>", "url": "/f/1"}]`), &files)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, File{Path: "app/main.py"}, files[0])
	assert.Equal(t, File{Name: "index.html", Content: "<p>hi</p>", URL: "/f/1"}, files[1])
}

func TestFile_UnmarshalRejectsNumbers(t *testing.T) {
	var f File
	assert.Error(t, json.Unmarshal([]byte(`42`), &f))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "a.go", File{Name: "a.go", Path: "x/b.go"}.DisplayName(0))
	assert.Equal(t, "x/b.go", File{Path: "x/b.go"}.DisplayName(0))
	assert.Equal(t, "File 3", File{}.DisplayName(2))
}

func TestTypeLabelAndKind(t *testing.T) {
	assert.Equal(t, "React Component", TypeLabel("App.JSX"))
	assert.Equal(t, "Python", TypeLabel("main.py"))
	assert.Equal(t, "File", TypeLabel("Makefile"))
	assert.Equal(t, KindImage, KindOf("logo.svg"))
	assert.Equal(t, KindCode, KindOf("server.py"))
	assert.Equal(t, KindText, KindOf("README"))
	assert.Equal(t, KindBinary, KindOf("dist.zip"))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "1023 B", HumanSize(1023))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 KB", HumanSize(1536))
	assert.Equal(t, "2.0 MB", HumanSize(2*1024*1024))
}

func TestPreviewAndLineCount(t *testing.T) {
	short := File{Content: "a\nb\nc"}
	assert.Equal(t, "a\nb\nc", short.Preview())
	assert.Equal(t, 3, short.LineCount())

	long := File{Content: "1\n2\n3\n4\n5"}
	assert.Equal(t, "1\n2\n3\n...", long.Preview())
	assert.Equal(t, 5, long.LineCount())

	assert.Equal(t, 1, File{}.LineCount())
	assert.Equal(t, "", File{}.Preview())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, File{Path: "src/app.js", Content: "console.log(1)"}, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "app.js"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(data))
}

func TestSave_UnnamedFile(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, File{Content: "x"}, 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "File 2"), path)
}

func TestSave_AbsolutePathKeepsBaseName(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, File{Path: "/etc/passwd", Content: "x"}, 0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd"), path)
}

func TestSave_RefusesTraversal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"../escape.txt", "a/../../escape.txt", ".."} {
		_, err := Save(dir, File{Name: name, Content: "x"}, 0)
		assert.True(t, errors.Is(err, ErrUnsafeName), "name %q", name)
	}
}
