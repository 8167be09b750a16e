package model

import (
	"fmt"
	"strings"

	"github.com/miosa/osa-builder/attachments"
	"github.com/miosa/osa-builder/format"
	"github.com/miosa/osa-builder/markdown"
	"github.com/miosa/osa-builder/style"
)

// renderFiles draws the created-files panel under an agent message. Each
// card shows the file's preview, or its whole content once expanded.
func renderFiles(files []attachments.File, tr *format.Tracker, width int) string {
	lines := []string{style.Faint.Render(fmt.Sprintf("Created files (%d)  /expand <n> · /copyfile <n> · /save <n>", len(files)))}
	for i, f := range files {
		lines = append(lines, renderFileCard(i, f, tr, width))
	}
	return strings.Join(lines, "\n")
}

func renderFileCard(i int, f attachments.File, tr *format.Tracker, width int) string {
	name := f.DisplayName(i)
	kind := attachments.KindOf(name)

	meta := attachments.TypeLabel(name)
	if f.Content != "" {
		meta += fmt.Sprintf(" · %s · %d lines", attachments.HumanSize(f.Size()), f.LineCount())
	}
	if f.URL != "" {
		meta += " · " + f.URL
	}

	header := fmt.Sprintf("[%d] %s %s", i+1, kind.Icon(), style.FileName.Render(name)) +
		"  " + style.FileMeta.Render(meta)

	expanded := tr != nil && tr.IsExpanded(i)
	if f.Content != "" {
		label := markdown.CopyLabel
		if tr != nil && tr.IsCopied(attachments.ID(i)) {
			label = style.Copied.Render(markdown.CopiedLabel)
		} else {
			label = style.CopyHint.Render(label)
		}
		toggle := "▸ expand"
		if expanded {
			toggle = "▾ collapse"
		}
		header += "  " + style.Hint.Render(toggle) + "  " + label
	}

	body := ""
	switch {
	case f.Content == "":
	case expanded:
		body = markdown.Highlight(language(name), f.Content)
	default:
		body = style.FilePreview.Render(f.Preview())
	}

	card := header
	if body != "" {
		card += "\n" + body
	}
	w := width - 2
	if w < 10 {
		w = 10
	}
	return style.FileCard.Width(w).Render(card)
}

// language maps a file name to a highlighter language tag.
func language(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}
	return format.DefaultLanguage
}
