package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
	valueMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	expiredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	soonStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	freshStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	openedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	unopenedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
