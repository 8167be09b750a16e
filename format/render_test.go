package format

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func plain(s string) Node  { return Node{Kind: NodePlain, Text: s} }
func bold(s string) Node   { return Node{Kind: NodeBold, Text: s} }
func italic(s string) Node { return Node{Kind: NodeItalic, Text: s} }

var lineBreak = Node{Kind: NodeLineBreak}

func TestRenderText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Node
	}{
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "bold before italic",
			in:   "**bold** and *italic*",
			want: []Node{bold("bold"), plain(" and "), italic("italic")},
		},
		{
			name: "heading only at line start",
			in:   "a # not heading\n# Heading",
			want: []Node{
				plain("a # not heading"),
				lineBreak,
				{Kind: NodeHeading, Level: 1, Text: "Heading", Children: []Node{plain("Heading")}},
			},
		},
		{
			name: "heading levels",
			in:   "## Two\n### Three\n#### Four",
			want: []Node{
				{Kind: NodeHeading, Level: 2, Text: "Two", Children: []Node{plain("Two")}},
				lineBreak,
				{Kind: NodeHeading, Level: 3, Text: "Three", Children: []Node{plain("Three")}},
				lineBreak,
				plain("#### Four"),
			},
		},
		{
			name: "hash without space is text",
			in:   "#tag",
			want: []Node{plain("#tag")},
		},
		{
			name: "unordered list",
			in:   "- one\n- **two**",
			want: []Node{
				{Kind: NodeListItem, Text: "one", Children: []Node{plain("one")}},
				lineBreak,
				{Kind: NodeListItem, Text: "**two**", Children: []Node{bold("two")}},
			},
		},
		{
			name: "ordered list drops ordinal",
			in:   "1. first\n12. twelfth",
			want: []Node{
				{Kind: NodeListItem, Ordered: true, Text: "first", Children: []Node{plain("first")}},
				lineBreak,
				{Kind: NodeListItem, Ordered: true, Text: "twelfth", Children: []Node{plain("twelfth")}},
			},
		},
		{
			name: "mid line dash is text",
			in:   "a - b",
			want: []Node{plain("a - b")},
		},
		{
			name: "blank lines keep their breaks",
			in:   "a\n\nb",
			want: []Node{plain("a"), lineBreak, lineBreak, plain("b")},
		},
		{
			name: "emphasis does not span lines",
			in:   "**open\nclose**",
			want: []Node{plain("open"), lineBreak, plain("close")},
		},
		{
			name: "empty bold consumes its markers",
			in:   "****",
			want: nil,
		},
		{
			name: "empty emphasis between words",
			in:   "x **** y",
			want: []Node{plain("x  y")},
		},
		{
			name: "unpaired double star is empty italic",
			in:   "a**b",
			want: []Node{plain("ab")},
		},
		{
			name: "italic does not bridge a bold range",
			in:   "*a **b** c*",
			want: []Node{plain("*a "), bold("b"), plain(" c*")},
		},
		{
			name: "non greedy emphasis",
			in:   "*a* x *b*",
			want: []Node{italic("a"), plain(" x "), italic("b")},
		},
		{
			name: "heading with emphasis",
			in:   "# **Big** idea",
			want: []Node{
				{Kind: NodeHeading, Level: 1, Text: "**Big** idea", Children: []Node{bold("Big"), plain(" idea")}},
			},
		},
		{
			name: "crlf line endings",
			in:   "a\r\nb",
			want: []Node{plain("a"), lineBreak, plain("b")},
		},
		{
			name: "lone stars stay literal",
			in:   "2 * 3",
			want: []Node{plain("2 * 3")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, RenderText(tt.in)); diff != "" {
				t.Errorf("RenderText(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	nodes := RenderText("# Title\n- **a**\n1. b\n*c* d")
	assert.Equal(t, "Title\n• a\nb\nc d", PlainText(nodes))
}

func TestFormat_RendersOnlyTextSpans(t *testing.T) {
	segs := Format("**hi** `**no**`\n```md\n# not rendered\n```")
	if assert.Len(t, segs, 4) {
		assert.Equal(t, []Node{bold("hi"), plain(" ")}, segs[0].Nodes)
		assert.Equal(t, SpanInlineCode, segs[1].Kind)
		assert.Nil(t, segs[1].Nodes)
		assert.Equal(t, []Node{lineBreak}, segs[2].Nodes)
		assert.Equal(t, SpanCodeBlock, segs[3].Kind)
		assert.Equal(t, "# not rendered", segs[3].Content)
		assert.Nil(t, segs[3].Nodes)
	}
}

func TestFormat_StateDoesNotCarryAcrossSpans(t *testing.T) {
	// The italic opener in the first span must not pair with the star in the last.
	segs := Format("*open `x` close*")
	if assert.Len(t, segs, 3) {
		assert.Equal(t, []Node{plain("*open ")}, segs[0].Nodes)
		assert.Equal(t, []Node{plain(" close*")}, segs[2].Nodes)
	}
}

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "heading", NodeHeading.String())
	assert.Equal(t, "line-break", NodeLineBreak.String())
	assert.Equal(t, "unknown", NodeKind(99).String())
}
