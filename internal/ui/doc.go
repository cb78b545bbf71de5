// Package ui renders git-id's human-facing terminal output: lipgloss styles,
// a status Reporter used by every subcommand, and a console observer that
// narrates subprocess execution.
package ui
