package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_NoCode(t *testing.T) {
	spans := Tokenize("just words\nand lines")
	require.Len(t, spans, 1)
	assert.Equal(t, SpanText, spans[0].Kind)
	assert.Equal(t, "just words\nand lines", spans[0].Content)
}

func TestTokenize_Empty(t *testing.T) {
	spans := Tokenize("")
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Kind: SpanText}, spans[0])
}

func TestTokenize_FencedBlock(t *testing.T) {
	in := "Here:\n```go\nfmt.Println(1)\n```\nDone."
	want := []Span{
		{Kind: SpanText, Content: "Here:\n", Source: "Here:\n"},
		{Kind: SpanCodeBlock, ID: "code-1", Language: "go", Content: "fmt.Println(1)", Source: "```go\nfmt.Println(1)\n```"},
		{Kind: SpanText, Content: "\nDone.", Source: "\nDone."},
	}
	if diff := cmp.Diff(want, Tokenize(in)); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_DefaultLanguage(t *testing.T) {
	spans := Tokenize("```\nplain\n```")
	require.Len(t, spans, 1)
	assert.Equal(t, "text", spans[0].Language)
	assert.Equal(t, "plain", spans[0].Content)
	assert.Equal(t, "code-0", spans[0].ID)
}

func TestTokenize_InlineCode(t *testing.T) {
	spans := Tokenize("run `go test` now")
	want := []Span{
		{Kind: SpanText, Content: "run ", Source: "run "},
		{Kind: SpanInlineCode, Content: "go test", Source: "`go test`"},
		{Kind: SpanText, Content: " now", Source: " now"},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_FencePrecedence(t *testing.T) {
	spans := Tokenize("`a` ```b```")
	require.Len(t, spans, 3)
	assert.Equal(t, Span{Kind: SpanInlineCode, Content: "a", Source: "`a`"}, spans[0])
	assert.Equal(t, SpanText, spans[1].Kind)
	assert.Equal(t, " ", spans[1].Content)
	assert.Equal(t, SpanCodeBlock, spans[2].Kind)
	assert.Equal(t, "b", spans[2].Content)
	assert.Equal(t, "text", spans[2].Language)
}

func TestTokenize_FenceBeatsInlineAtSameStart(t *testing.T) {
	spans := Tokenize("```py\nx = `y`\n```")
	require.Len(t, spans, 1)
	assert.Equal(t, SpanCodeBlock, spans[0].Kind)
	assert.Equal(t, "py", spans[0].Language)
	assert.Equal(t, "x = `y`", spans[0].Content)
}

func TestTokenize_UnterminatedFence(t *testing.T) {
	spans := Tokenize("text ```js\nconsole.log(1)")
	want := []Span{
		{Kind: SpanText, Content: "text ", Source: "text "},
		{Kind: SpanCodeBlock, ID: "code-1", Language: "js", Content: "console.log(1)", Source: "```js\nconsole.log(1)"},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_UnterminatedInline(t *testing.T) {
	spans := Tokenize("call `foo(")
	require.Len(t, spans, 2)
	assert.Equal(t, SpanInlineCode, spans[1].Kind)
	assert.Equal(t, "foo(", spans[1].Content)
	assert.Equal(t, "`foo(", spans[1].Source)
}

func TestTokenize_LoneTrailingBacktickIsText(t *testing.T) {
	spans := Tokenize("tick`")
	require.Len(t, spans, 1)
	assert.Equal(t, SpanText, spans[0].Kind)
	assert.Equal(t, "tick`", spans[0].Content)
}

func TestTokenize_EmptyFence(t *testing.T) {
	spans := Tokenize("``````")
	require.Len(t, spans, 1)
	assert.Equal(t, SpanCodeBlock, spans[0].Kind)
	assert.Equal(t, "", spans[0].Content)
	assert.Equal(t, "text", spans[0].Language)
}

func TestTokenize_StripsSingleNewlinesOnly(t *testing.T) {
	spans := Tokenize("```sh\n\nls\n\n```")
	require.Len(t, spans, 1)
	assert.Equal(t, "\nls\n", spans[0].Content)
}

func TestTokenize_AdjacentCodeSkipsEmptyText(t *testing.T) {
	spans := Tokenize("`a``b`")
	require.Len(t, spans, 2)
	assert.Equal(t, "a", spans[0].Content)
	assert.Equal(t, "b", spans[1].Content)
}

// IDs count every emitted span, not just code spans.
func TestTokenize_IDsAreOrdinalAmongAllSpans(t *testing.T) {
	in := "intro\n```a\n1\n``` and `x` then\n```b\n2\n```"
	blocks := CodeBlocks(Tokenize(in))
	require.Len(t, blocks, 2)
	assert.Equal(t, "code-1", blocks[0].ID)
	assert.Equal(t, "code-5", blocks[1].ID)
}

func TestTokenize_IDsStableAcrossCalls(t *testing.T) {
	in := "a ```x\ny``` b ```z\nw```"
	assert.Equal(t, Tokenize(in), Tokenize(in))
}

var losslessCorpus = []string{
	"",
	"plain",
	"`",
	"``",
	"```",
	"````",
	"`a` ```b```",
	"text ```js\nconsole.log(1)",
	"```\r\nwin\r\n```",
	"**bold** `code` *it*\n# H\n- item\n1. one",
	"nested ```a\n```b\n```\n```",
	"` unterminated\nacross lines",
	"mixed ``` fence ` and ticks `` here",
	"unicode `héllo` ```日本\nコード\n```",
}

func TestTokenize_Lossless(t *testing.T) {
	for _, in := range losslessCorpus {
		assert.Equal(t, in, Source(Tokenize(in)), "input %q", in)
	}
}

func TestTokenize_IdempotentRetokenize(t *testing.T) {
	for _, in := range losslessCorpus {
		first := Tokenize(in)
		again := Tokenize(Source(first))
		if diff := cmp.Diff(first, again); diff != "" {
			t.Errorf("retokenize %q differs (-first +again):\n%s", in, diff)
		}
	}
}

func TestTokenize_NeverPanicsOnNoise(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString([]string{"`", "```", "\n", "x", "*", "#", " "}[i*7%11%7])
	}
	in := sb.String()
	assert.NotPanics(t, func() { Tokenize(in) })
	assert.Equal(t, in, Source(Tokenize(in)))
}

func TestSpanKind_String(t *testing.T) {
	assert.Equal(t, "codeblock", SpanCodeBlock.String())
	assert.Equal(t, "inline-code", SpanInlineCode.String())
	assert.Equal(t, "text", SpanText.String())
	assert.Equal(t, "unknown", SpanKind(42).String())
}
