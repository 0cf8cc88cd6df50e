package cli

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	titleCaser = cases.Title(language.English)
)

func title(s string) string {
	return titleCaser.String(s)
}
