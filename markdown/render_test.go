package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/miosa/osa-builder/format"
)

type copiedSet map[string]bool

func (c copiedSet) IsCopied(id string) bool { return c[id] }

func plain(s string) string { return ansi.Strip(s) }

func TestSegments_TextAndInline(t *testing.T) {
	out := plain(Segments(format.Format("# Title\n- **one**\nrun `ls` now"), Options{}))
	assert.Equal(t, "Title\n  • one\nrun ls now", out)
}

func TestSegments_CodeBlockHeader(t *testing.T) {
	segs := format.Format("Here:\n```go\nfmt.Println(1)\n```\nDone.")

	out := plain(Segments(segs, Options{}))
	assert.Contains(t, out, "go  "+CopyLabel)
	assert.Contains(t, out, "fmt.Println(1)")
	assert.Contains(t, out, "Done.")
	assert.NotContains(t, out, CopiedLabel)

	out = plain(Segments(segs, Options{State: copiedSet{"code-1": true}, Focused: "code-1"}))
	assert.Contains(t, out, "▸ go  "+CopiedLabel)
}

func TestSegments_TokenBadge(t *testing.T) {
	segs := format.Format("```py\nprint(1)\n```")
	out := plain(Segments(segs, Options{Tokens: func(string) int { return 7 }}))
	assert.Contains(t, out, "py · 7 tok")
}

func TestSegments_Empty(t *testing.T) {
	assert.Equal(t, "", Segments(format.Format(""), Options{}))
}

func TestCodeBlock_EmptyBody(t *testing.T) {
	out := plain(CodeBlock(format.Span{Kind: format.SpanCodeBlock, ID: "code-0", Language: "text"}, Options{}))
	assert.Contains(t, out, "text  "+CopyLabel)
}

func TestHighlight(t *testing.T) {
	code := "package main\n\nfunc main() {}"
	assert.Equal(t, code, plain(Highlight("go", code)))
	assert.Equal(t, "x := 1", Highlight("text", "x := 1"))
	assert.Equal(t, "x := 1", Highlight("not-a-language", "x := 1"))
	assert.Equal(t, "", Highlight("go", ""))
}

func TestMessage_GlamourListsBlocks(t *testing.T) {
	segs := format.Format("Intro\n```sh\necho hi\n```")
	out := plain(Message("glamour", segs, Options{Width: 60, State: copiedSet{"code-1": true}}))
	assert.Contains(t, out, "echo hi")
	assert.Contains(t, out, "sh "+CopiedLabel)
}

func TestMessage_NativeIsDefault(t *testing.T) {
	segs := format.Format("**hi**")
	assert.Equal(t, Segments(segs, Options{}), Message("native", segs, Options{}))
	assert.Equal(t, Segments(segs, Options{}), Message("", segs, Options{}))
}

func TestGlamour_BlankPassthrough(t *testing.T) {
	assert.Equal(t, "  ", Glamour("  ", 80))
}
