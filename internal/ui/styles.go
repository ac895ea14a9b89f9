package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
)

// TitleBar style for the top line of every screen.
var TitleBar = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// FormLabel style for login field labels.
var FormLabel = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Width(10)

// Button style for the submit control.
var Button = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 2)

// ButtonBusy style for the submit control while a request is in flight.
var ButtonBusy = Button.
	Foreground(colorMuted)

// Setting style for the language and metric selectors.
var Setting = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// SectionHeader style for "Topics", "Videos" and "Search History".
var SectionHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1).
	Padding(0, 1)

// TopicName style for a topic heading inside a result list.
var TopicName = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Padding(0, 2)

// VideoTitle style for a ranked video's title.
var VideoTitle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// VideoLink style for a ranked video's URL.
var VideoLink = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Underline(true)

// VideoStats style for like/view counts.
var VideoStats = lipgloss.NewStyle().
	Foreground(colorSuccess)

// EntryHeader style for the date line of a history entry.
var EntryHeader = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// Muted style for empty states and secondary text.
var Muted = lipgloss.NewStyle().
	Foreground(colorMuted)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for the key help line.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)
