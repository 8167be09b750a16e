package format

import (
	"regexp"
	"strings"
)

// NodeKind classifies a render Node.
type NodeKind int

const (
	NodePlain NodeKind = iota
	NodeBold
	NodeItalic
	NodeHeading
	NodeListItem
	NodeLineBreak
)

func (k NodeKind) String() string {
	switch k {
	case NodePlain:
		return "plain"
	case NodeBold:
		return "bold"
	case NodeItalic:
		return "italic"
	case NodeHeading:
		return "heading"
	case NodeListItem:
		return "list-item"
	case NodeLineBreak:
		return "line-break"
	default:
		return "unknown"
	}
}

// Node is one unit of rendered text.
//
// Heading and ListItem carry the raw remainder of their line in Text and the
// inline emphasis of that remainder in Children. Bold, Italic and Plain are
// leaves.
type Node struct {
	Kind     NodeKind
	Level    int // heading level 1..3
	Ordered  bool
	Text     string
	Children []Node
}

// Bullet is the glyph shown in place of an unordered "- " marker.
const Bullet = "•"

var (
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.*?)\*`)
	orderedPattern = regexp.MustCompile(`^\d+\.[ \t]`)
)

// RenderText converts the markdown subset of a text span into nodes.
//
// Passes are applied in a fixed order: bold, italic, heading, unordered list,
// ordered list, line break. Emphasis never crosses a line break, and bold
// ranges are claimed before italic matching runs over what is left, so the
// result is the same as a sequential substitution cascade without its
// double-matching. Line markers are only recognised at the start of a line.
func RenderText(text string) []Node {
	if text == "" {
		return nil
	}

	var nodes []Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			nodes = append(nodes, Node{Kind: NodeLineBreak})
		}
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		nodes = append(nodes, renderLine(line)...)
	}
	return nodes
}

func renderLine(line string) []Node {
	if level, rest, ok := heading(line); ok {
		return []Node{{Kind: NodeHeading, Level: level, Text: rest, Children: renderInline(rest)}}
	}
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		return []Node{{Kind: NodeListItem, Text: rest, Children: renderInline(rest)}}
	}
	if loc := orderedPattern.FindStringIndex(line); loc != nil {
		rest := line[loc[1]:]
		return []Node{{Kind: NodeListItem, Ordered: true, Text: rest, Children: renderInline(rest)}}
	}
	return renderInline(line)
}

// heading recognises "# ", "## " and "### ". Four or more hashes are text.
func heading(line string) (int, string, bool) {
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if rest, ok := strings.CutPrefix(line, prefix); ok {
			return level, rest, true
		}
	}
	return 0, "", false
}

// renderInline splits a single line into bold, italic and plain runs.
func renderInline(line string) []Node {
	var nodes []Node
	last := 0
	for _, m := range boldPattern.FindAllStringSubmatchIndex(line, -1) {
		nodes = appendItalic(nodes, line[last:m[0]])
		nodes = appendEmphasis(nodes, NodeBold, line[m[2]:m[3]])
		last = m[1]
	}
	return appendItalic(nodes, line[last:])
}

func appendItalic(nodes []Node, s string) []Node {
	last := 0
	for _, m := range italicPattern.FindAllStringSubmatchIndex(s, -1) {
		nodes = appendPlain(nodes, s[last:m[0]])
		nodes = appendEmphasis(nodes, NodeItalic, s[m[2]:m[3]])
		last = m[1]
	}
	return appendPlain(nodes, s[last:])
}

// appendEmphasis drops empty emphasis: "****" consumes its markers and
// renders nothing.
func appendEmphasis(nodes []Node, kind NodeKind, s string) []Node {
	if s == "" {
		return nodes
	}
	return append(nodes, Node{Kind: kind, Text: s})
}

// appendPlain merges into a preceding plain run.
func appendPlain(nodes []Node, s string) []Node {
	if s == "" {
		return nodes
	}
	if n := len(nodes); n > 0 && nodes[n-1].Kind == NodePlain {
		nodes[n-1].Text += s
		return nodes
	}
	return append(nodes, Node{Kind: NodePlain, Text: s})
}

// PlainText flattens nodes back into unstyled text, dropping emphasis
// markers. Used for width measurement and clipboard export of text spans.
func PlainText(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case NodeLineBreak:
			sb.WriteByte('\n')
		case NodeHeading:
			sb.WriteString(PlainText(n.Children))
		case NodeListItem:
			if !n.Ordered {
				sb.WriteString(Bullet + " ")
			}
			sb.WriteString(PlainText(n.Children))
		default:
			sb.WriteString(n.Text)
		}
	}
	return sb.String()
}

// Segment is a span together with its rendered nodes. Nodes is only set for
// text spans.
type Segment struct {
	Span
	Nodes []Node
}

// Format tokenizes message and renders every text span independently.
func Format(message string) []Segment {
	spans := Tokenize(message)
	segs := make([]Segment, len(spans))
	for i, s := range spans {
		segs[i] = Segment{Span: s}
		if s.Kind == SpanText {
			segs[i].Nodes = RenderText(s.Content)
		}
	}
	return segs
}
