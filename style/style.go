package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors of the active theme. SetTheme replaces them and rebuilds the styles.
var (
	Primary   lipgloss.TerminalColor = lipgloss.Color("#7C3AED") // violet-600
	Secondary lipgloss.TerminalColor = lipgloss.Color("#06B6D4") // cyan-500
	Success   lipgloss.TerminalColor = lipgloss.Color("#22C55E") // green-500
	Warning   lipgloss.TerminalColor = lipgloss.Color("#F59E0B") // amber-500
	Error     lipgloss.TerminalColor = lipgloss.Color("#EF4444") // red-500
	Muted     lipgloss.TerminalColor = lipgloss.Color("#6B7280") // gray-500
	Dim       lipgloss.TerminalColor = lipgloss.Color("#374151") // gray-700
	Border    lipgloss.TerminalColor = lipgloss.Color("#4B5563") // gray-600
	CodeBg    lipgloss.TerminalColor = lipgloss.Color("#0B1020")

	MsgBorderUser   lipgloss.TerminalColor = lipgloss.Color("#06B6D4")
	MsgBorderAgent  lipgloss.TerminalColor = lipgloss.Color("#7C3AED")
	MsgBorderSystem lipgloss.TerminalColor = lipgloss.Color("#374151")
	MsgBorderError  lipgloss.TerminalColor = lipgloss.Color("#EF4444")
)

// Base styles.
var (
	Bold      lipgloss.Style
	Italic    lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	BannerTitle  lipgloss.Style
	BannerDetail lipgloss.Style
	PromptChar   lipgloss.Style
	SpinnerStyle lipgloss.Style

	// Chat
	UserLabel   lipgloss.Style
	AgentLabel  lipgloss.Style
	AgentBadge  lipgloss.Style
	MsgMeta     lipgloss.Style
	UserBlock   lipgloss.Style
	AgentBlock  lipgloss.Style
	SystemBlock lipgloss.Style
	ErrorBlock  lipgloss.Style

	// Formatted message text
	Heading    [3]lipgloss.Style
	BulletChar lipgloss.Style
	InlineCode lipgloss.Style

	// Fenced code blocks
	CodeHeader        lipgloss.Style
	CodeHeaderFocused lipgloss.Style
	CodeLang          lipgloss.Style
	CopyHint          lipgloss.Style
	Copied            lipgloss.Style
	CodeBody          lipgloss.Style

	// Created files
	FileCard     lipgloss.Style
	FileName     lipgloss.Style
	FileMeta     lipgloss.Style
	FilePreview  lipgloss.Style
	FileSelected lipgloss.Style

	// Suggested actions
	Suggestion      lipgloss.Style
	SuggestionIndex lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusAccent lipgloss.Style

	// Pickers
	PickerBorder     lipgloss.Style
	PickerSelected   lipgloss.Style
	PickerUnselected lipgloss.Style

	Hint lipgloss.Style
)

func init() {
	rebuildStyles()
}

// SetTheme applies a named theme, updating all color vars and rebuilding styles.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = name
	Primary = t.Primary
	Secondary = t.Secondary
	Success = t.Success
	Warning = t.Warning
	Error = t.Error
	Muted = t.Muted
	Dim = t.Dim
	Border = t.Border
	CodeBg = t.CodeBg
	MsgBorderUser = t.MsgBorderUser
	MsgBorderAgent = t.MsgBorderAgent
	MsgBorderSystem = t.MsgBorderSystem
	MsgBorderError = t.MsgBorderError
	rebuildStyles()
	return true
}

// IsDark reports whether the current theme is dark.
func IsDark() bool {
	return CurrentThemeName != "light"
}

func leftBorder(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(c).
		PaddingLeft(1)
}

func rebuildStyles() {
	Bold = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	BannerTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	BannerDetail = lipgloss.NewStyle().Foreground(Muted)
	PromptChar = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)

	UserLabel = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	AgentLabel = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	AgentBadge = lipgloss.NewStyle().Foreground(Secondary)
	MsgMeta = lipgloss.NewStyle().Foreground(Muted).Italic(true)
	UserBlock = leftBorder(MsgBorderUser)
	AgentBlock = leftBorder(MsgBorderAgent)
	SystemBlock = leftBorder(MsgBorderSystem).Foreground(Muted)
	ErrorBlock = leftBorder(MsgBorderError).Foreground(Error)

	Heading = [3]lipgloss.Style{
		lipgloss.NewStyle().Foreground(Primary).Bold(true).Underline(true),
		lipgloss.NewStyle().Foreground(Primary).Bold(true),
		lipgloss.NewStyle().Foreground(Secondary).Bold(true),
	}
	BulletChar = lipgloss.NewStyle().Foreground(Secondary)
	InlineCode = lipgloss.NewStyle().Foreground(Warning).Background(CodeBg)

	CodeHeader = lipgloss.NewStyle().Foreground(Muted).Background(CodeBg).PaddingLeft(1).PaddingRight(1)
	CodeHeaderFocused = CodeHeader.Foreground(Secondary).Bold(true)
	CodeLang = lipgloss.NewStyle().Foreground(Secondary)
	CopyHint = lipgloss.NewStyle().Foreground(Muted)
	Copied = lipgloss.NewStyle().Foreground(Success).Bold(true)
	CodeBody = lipgloss.NewStyle().Background(CodeBg).PaddingLeft(1).PaddingRight(1)

	FileCard = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	FileName = lipgloss.NewStyle().Bold(true)
	FileMeta = lipgloss.NewStyle().Foreground(Muted)
	FilePreview = lipgloss.NewStyle().Foreground(Muted)
	FileSelected = FileCard.BorderForeground(Secondary)

	Suggestion = lipgloss.NewStyle().Foreground(Secondary)
	SuggestionIndex = lipgloss.NewStyle().Foreground(Muted)

	StatusBar = lipgloss.NewStyle().Foreground(Muted).PaddingLeft(1)
	StatusAccent = lipgloss.NewStyle().Foreground(Secondary)

	PickerBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
	PickerSelected = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	PickerUnselected = lipgloss.NewStyle().Foreground(Muted)

	Hint = lipgloss.NewStyle().Foreground(Dim)
}

// Rule renders a horizontal divider of the given width.
func Rule(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(Dim).Render(strings.Repeat("─", width))
}
