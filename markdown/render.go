// Package markdown turns formatted message segments into styled terminal
// output.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-builder/format"
	"github.com/miosa/osa-builder/style"
)

// CopyState answers whether a code segment was copied recently.
// *format.Tracker satisfies it.
type CopyState interface {
	IsCopied(id string) bool
}

// Options control segment rendering.
type Options struct {
	Width   int
	State   CopyState // nil renders every block as not copied
	Focused string    // ID of the code block with keyboard focus
	// Tokens, when set, adds a token badge to code block headers.
	Tokens func(string) int
}

// Copy labels shown in a code block header.
const (
	CopyLabel   = "⧉ copy"
	CopiedLabel = "✓ copied"
)

// Segments renders a formatted message.
func Segments(segs []format.Segment, opts Options) string {
	var sb strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case format.SpanText:
			sb.WriteString(Nodes(s.Nodes))
		case format.SpanInlineCode:
			sb.WriteString(style.InlineCode.Render(s.Content))
		case format.SpanCodeBlock:
			// A block always starts and ends on its own line.
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte('\n')
			}
			sb.WriteString(CodeBlock(s.Span, opts))
			sb.WriteByte('\n')
		}
	}
	out := strings.TrimRight(sb.String(), "\n")
	if opts.Width > 0 {
		out = lipgloss.NewStyle().Width(opts.Width).Render(out)
	}
	return out
}

// Nodes renders the nodes of one text span.
func Nodes(nodes []format.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case format.NodeLineBreak:
			sb.WriteByte('\n')
		case format.NodeBold:
			sb.WriteString(style.Bold.Render(n.Text))
		case format.NodeItalic:
			sb.WriteString(style.Italic.Render(n.Text))
		case format.NodeHeading:
			level := n.Level
			if level < 1 || level > len(style.Heading) {
				level = 1
			}
			sb.WriteString(style.Heading[level-1].Render(format.PlainText(n.Children)))
		case format.NodeListItem:
			if n.Ordered {
				sb.WriteString("  ")
			} else {
				sb.WriteString("  " + style.BulletChar.Render(format.Bullet) + " ")
			}
			sb.WriteString(Nodes(n.Children))
		default:
			sb.WriteString(n.Text)
		}
	}
	return sb.String()
}

// CodeBlock renders a fenced block: a header with the language and copy
// state, then the highlighted body.
func CodeBlock(span format.Span, opts Options) string {
	copied := opts.State != nil && opts.State.IsCopied(span.ID)
	focused := span.ID != "" && span.ID == opts.Focused

	label := style.CopyHint.Render(CopyLabel)
	if copied {
		label = style.Copied.Render(CopiedLabel)
	}
	lang := style.CodeLang.Render(span.Language)
	if opts.Tokens != nil {
		lang += style.Faint.Render(fmt.Sprintf(" · %d tok", opts.Tokens(span.Content)))
	}
	marker := "  "
	if focused {
		marker = "▸ "
	}

	headerStyle := style.CodeHeader
	if focused {
		headerStyle = style.CodeHeaderFocused
	}
	header := headerStyle.Render(marker + lang + "  " + label)

	body := Highlight(span.Language, span.Content)
	if body == "" {
		body = " "
	}
	return header + "\n" + style.CodeBody.Render(body)
}

// Message renders content with the named renderer. "glamour" renders the
// whole message with glamour and lists the code blocks with their copy state
// underneath; anything else uses the segment renderer.
func Message(renderer string, segs []format.Segment, opts Options) string {
	if renderer != "glamour" {
		return Segments(segs, opts)
	}
	out := Glamour(format.Source(spans(segs)), opts.Width)
	var footer []string
	for _, s := range segs {
		if s.Kind != format.SpanCodeBlock {
			continue
		}
		label := style.CopyHint.Render(CopyLabel)
		if opts.State != nil && opts.State.IsCopied(s.ID) {
			label = style.Copied.Render(CopiedLabel)
		}
		marker := "  "
		if s.ID == opts.Focused {
			marker = "▸ "
		}
		footer = append(footer, marker+style.CodeLang.Render(s.Language)+" "+label)
	}
	if len(footer) == 0 {
		return out
	}
	return out + "\n" + strings.Join(footer, "\n")
}

func spans(segs []format.Segment) []format.Span {
	out := make([]format.Span, len(segs))
	for i, s := range segs {
		out[i] = s.Span
	}
	return out
}
