package markdown

import (
	"bytes"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/miosa/osa-builder/format"
	"github.com/miosa/osa-builder/style"
)

var lexerCache sync.Map // language -> chroma.Lexer (nil when unknown)

// lexerFor resolves a fence language tag by name, alias or file extension.
func lexerFor(lang string) chroma.Lexer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == format.DefaultLanguage {
		return nil
	}
	if cached, ok := lexerCache.Load(lang); ok {
		l, _ := cached.(chroma.Lexer)
		return l
	}
	l := lexers.Get(lang)
	if l == nil {
		l = lexers.Match("file." + lang)
	}
	if l != nil {
		l = chroma.Coalesce(l)
	}
	lexerCache.Store(lang, l)
	return l
}

func chromaStyle() *chroma.Style {
	if style.IsDark() {
		if s := styles.Get("monokai"); s != nil {
			return s
		}
	}
	if s := styles.Get("github"); s != nil {
		return s
	}
	return styles.Fallback
}

func ttyFormatter() chroma.Formatter {
	if f := formatters.Get("terminal16m"); f != nil {
		return f
	}
	if f := formatters.Get("terminal256"); f != nil {
		return f
	}
	return formatters.Fallback
}

// Highlight returns code with ANSI syntax colouring for lang. Unknown
// languages and tokenizer errors return code unchanged.
func Highlight(lang, code string) string {
	if code == "" {
		return code
	}
	lexer := lexerFor(lang)
	if lexer == nil {
		return code
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := ttyFormatter().Format(&buf, chromaStyle(), it); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
