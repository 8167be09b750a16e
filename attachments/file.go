// Package attachments describes files exchanged with the builder backend:
// files an agent created (shown under its reply) and files the user attaches
// to an outgoing message.
package attachments

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a created-file descriptor as it appears in message metadata.
// All fields are optional.
type File struct {
	Name    string `json:"name,omitempty"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare path string; the backend
// emits both depending on which tool produced the file.
func (f *File) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*f = File{Path: path}
		return nil
	}
	type plain File
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("attachments: decode file: %w", err)
	}
	*f = File(p)
	return nil
}

// ID is the tracker key of the file at index.
func ID(index int) string { return fmt.Sprintf("file-%d", index) }

// DisplayName returns name, then path, then "File <index+1>".
func (f File) DisplayName(index int) string {
	switch {
	case f.Name != "":
		return f.Name
	case f.Path != "":
		return f.Path
	default:
		return fmt.Sprintf("File %d", index+1)
	}
}

// Kind classifies a file for its icon.
type Kind int

const (
	KindText Kind = iota
	KindCode
	KindImage
	KindBinary
)

// Icon returns the glyph shown next to a file of kind k.
func (k Kind) Icon() string {
	switch k {
	case KindImage:
		return "\U0001F5BC" // 🖼
	case KindCode:
		return "\U0001F4CE" // 📎
	case KindBinary:
		return "\U0001F4E6" // 📦
	default:
		return "\U0001F4C4" // 📄
	}
}

func ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// KindOf infers a Kind from the file extension.
func KindOf(name string) Kind {
	switch ext(name) {
	case "jpg", "jpeg", "png", "gif", "svg", "webp", "bmp", "tiff":
		return KindImage
	case "js", "jsx", "ts", "tsx", "py", "html", "css", "json",
		"go", "rs", "rb", "java", "c", "cpp", "h", "sh", "yaml", "yml":
		return KindCode
	case "zip", "tar", "gz", "bin", "exe", "dll", "so", "dylib":
		return KindBinary
	default:
		return KindText
	}
}

var typeLabels = map[string]string{
	"js":   "JavaScript",
	"jsx":  "React Component",
	"ts":   "TypeScript",
	"tsx":  "React TypeScript",
	"py":   "Python",
	"go":   "Go",
	"html": "HTML",
	"css":  "CSS",
	"json": "JSON",
	"yaml": "YAML",
	"yml":  "YAML",
	"md":   "Markdown",
	"txt":  "Text",
	"png":  "PNG Image",
	"jpg":  "JPEG Image",
	"jpeg": "JPEG Image",
	"gif":  "GIF Image",
	"svg":  "SVG Vector",
}

// TypeLabel returns a human label for the file type, "File" when unknown.
func TypeLabel(name string) string {
	if l, ok := typeLabels[ext(name)]; ok {
		return l
	}
	return "File"
}

// HumanSize formats a byte count as B, KB or MB with one decimal.
func HumanSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Size is the UTF-8 byte length of the content.
func (f File) Size() int64 { return int64(len(f.Content)) }

// LineCount counts content lines the way a split on "\n" does: empty content
// is one line.
func (f File) LineCount() int { return strings.Count(f.Content, "\n") + 1 }

// PreviewLines is how many lines a collapsed file shows.
const PreviewLines = 3

// Preview returns the first PreviewLines lines, followed by a "..." line when
// the content is longer.
func (f File) Preview() string {
	lines := strings.SplitN(f.Content, "\n", PreviewLines+1)
	if len(lines) <= PreviewLines {
		return f.Content
	}
	return strings.Join(lines[:PreviewLines], "\n") + "\n..."
}

// ErrUnsafeName is returned by Save for names that would escape dir.
var ErrUnsafeName = errors.New("attachments: unsafe file name")

// Save writes the file content to dir. The file keeps the relative path it
// was created under (display name), which must stay inside dir. It returns
// the written path.
func Save(dir string, f File, index int) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(f.DisplayName(index)))
	if filepath.IsAbs(rel) {
		rel = filepath.Base(rel)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, f.DisplayName(index))
	}
	dst := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("attachments: create dir: %w", err)
	}
	if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
		return "", fmt.Errorf("attachments: write %s: %w", dst, err)
	}
	return dst, nil
}
