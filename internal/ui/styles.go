package ui

import "github.com/charmbracelet/lipgloss"

var (
	// SuccessStyle marks completed actions.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	// WarningStyle marks best-effort steps that did not complete.
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	// ErrorStyle marks failures.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	// InfoStyle marks hints and informational lines.
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	// DimStyle marks secondary details.
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// BoldStyle emphasizes names.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// AccentStyle highlights codes the user must type.
	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)

	// SuccessPrefix precedes success lines.
	SuccessPrefix = SuccessStyle.Render("✓")

	// WarningPrefix precedes warning lines.
	WarningPrefix = WarningStyle.Render("⚠")

	// ErrorPrefix precedes error lines.
	ErrorPrefix = ErrorStyle.Render("✗")

	// ArrowPrefix precedes hints.
	ArrowPrefix = InfoStyle.Render("→")
)
