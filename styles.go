package main

import "github.com/charmbracelet/lipgloss"

// Styles contains the style definitions for the UI
type Styles struct {
	Title        lipgloss.Style
	Dim          lipgloss.Style
	Help         lipgloss.Style
	Card         lipgloss.Style
	CardTitle    lipgloss.Style
	Label        lipgloss.Style
	Status       lipgloss.Style
	ScrollTop    lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Dim:  lipgloss.NewStyle().Faint(true),
		Help: lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		CardTitle: lipgloss.NewStyle().Bold(true),
		Label:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ScrollTop: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		ToastWarning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		ToastInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
		ToastSuccess: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")),
		ToastError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
	}
}
