package style

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	Gray       = lipgloss.Color("240")
	PaleYellow = lipgloss.Color("229")
	HeroRed    = lipgloss.Color("#E02041")
	Lilac      = lipgloss.Color("105")
	Spinner    = lipgloss.Color("205")
)

var (
	HorizontalPadding = 1

	Main = lipgloss.NewStyle().Margin(1, 0).Padding(0, HorizontalPadding)

	Padded = lipgloss.NewStyle().Padding(0, 2, 0, 1)

	// Total is the "Total of N cases" header
	Total = lipgloss.NewStyle().Bold(true).Foreground(HeroRed)

	Status = lipgloss.NewStyle().Foreground(Gray)

	TableContainer = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(Gray)

	Table = table.Styles{
		Selected: lipgloss.NewStyle().Bold(true).Foreground(PaleYellow).Background(HeroRed),
		Header:   lipgloss.NewStyle().Bold(false).Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).BorderForeground(Gray).BorderBottom(true),
		Cell:     lipgloss.NewStyle().Padding(0, 1),
	}

	Help = lipgloss.NewStyle().Foreground(Lilac)

	IncidentViewer = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(Gray).Padding(0, 1)

	Error = lipgloss.NewStyle().
		Bold(true).
		Width(64).
		Foreground(lipgloss.AdaptiveColor{Light: "#E11C9C", Dark: "#FF62DA"}).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#E11C9C", Dark: "#FF62DA"}).
		Padding(1, 3, 1, 3)
)
