// Package format decomposes a raw chat message into renderable segments:
// fenced code blocks, inline code and text, with the text further broken
// into a small line-oriented markdown subset. It also tracks the ephemeral
// per-segment UI state (copy confirmation, expand/collapse).
package format

import (
	"regexp"
	"strconv"
)

// SpanKind classifies a Span.
type SpanKind int

const (
	SpanText       SpanKind = iota // plain text, expanded by RenderText
	SpanInlineCode                 // `code`
	SpanCodeBlock                  // ```lang\ncode```
)

func (k SpanKind) String() string {
	switch k {
	case SpanText:
		return "text"
	case SpanInlineCode:
		return "inline-code"
	case SpanCodeBlock:
		return "codeblock"
	default:
		return "unknown"
	}
}

// DefaultLanguage is assigned to fenced blocks without a language tag.
const DefaultLanguage = "text"

// Span is a classified, order-preserving slice of a message.
type Span struct {
	Kind SpanKind

	// ID is set for code blocks only: "code-<n>" where n is the 0-based
	// position of the span among all spans of the message.
	ID       string
	Language string

	// Content is the renderable payload: fence markers and backticks removed.
	Content string

	// Source is the exact slice of the input this span was cut from.
	Source string
}

// codePattern matches, in priority order, a fenced block or an inline code
// run. Both alternatives fail open at end of input: an unterminated fence or
// backtick consumes the remainder of the message.
//
// Groups: 1 = language tag, 2 = fenced content, 3 = inline content.
var codePattern = regexp.MustCompile("```(?:(\\w*)\\r?\\n)?([\\s\\S]*?)(?:\\r?\\n?```|\\z)|`([^`]+)(?:`|\\z)")

// Tokenize splits message into spans. Text between code matches is emitted
// verbatim; empty gaps are skipped. An empty message yields a single empty
// text span.
func Tokenize(message string) []Span {
	if message == "" {
		return []Span{{Kind: SpanText}}
	}

	var spans []Span
	last := 0
	for _, m := range codePattern.FindAllStringSubmatchIndex(message, -1) {
		start, end := m[0], m[1]
		if start > last {
			spans = append(spans, textSpan(message[last:start]))
		}

		src := message[start:end]
		if m[4] >= 0 {
			lang := DefaultLanguage
			if m[2] >= 0 && m[3] > m[2] {
				lang = message[m[2]:m[3]]
			}
			spans = append(spans, Span{
				Kind:     SpanCodeBlock,
				ID:       "code-" + strconv.Itoa(len(spans)),
				Language: lang,
				Content:  message[m[4]:m[5]],
				Source:   src,
			})
		} else {
			spans = append(spans, Span{
				Kind:    SpanInlineCode,
				Content: message[m[6]:m[7]],
				Source:  src,
			})
		}
		last = end
	}

	if last < len(message) {
		spans = append(spans, textSpan(message[last:]))
	}
	return spans
}

func textSpan(s string) Span {
	return Span{Kind: SpanText, Content: s, Source: s}
}

// Source reassembles the original message from spans.
func Source(spans []Span) string {
	n := 0
	for _, s := range spans {
		n += len(s.Source)
	}
	b := make([]byte, 0, n)
	for _, s := range spans {
		b = append(b, s.Source...)
	}
	return string(b)
}

// CodeBlocks returns the fenced code spans of a message in order.
func CodeBlocks(spans []Span) []Span {
	var out []Span
	for _, s := range spans {
		if s.Kind == SpanCodeBlock {
			out = append(out, s)
		}
	}
	return out
}
