package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#F4A300")

	KeyStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var globalHelp = [][2]string{
	{"1-5", "views"},
	{"tab", "next"},
	{"L", "login"},
	{"p", "profile"},
	{"r", "refresh"},
	{"s", "check in"},
	{"q", "quit"},
}

// helpLine lists the global keys.
func helpLine() string {
	parts := make([]string, len(globalHelp))
	for i, h := range globalHelp {
		parts[i] = KeyStyle.Render(h[0]) + " " + DimStyle.Render(h[1])
	}
	return strings.Join(parts, "  ")
}
