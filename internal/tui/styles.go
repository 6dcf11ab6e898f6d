package tui

import "github.com/charmbracelet/lipgloss"

// Brand palette: dark blue text on light backgrounds, light blue accents.
var (
	colorDarkBlue  = lipgloss.Color("25")
	colorLightBlue = lipgloss.Color("75")
	colorGreen     = lipgloss.Color("35")
	colorRed       = lipgloss.Color("167")
	colorWhite     = lipgloss.Color("255")
	colorGray      = lipgloss.Color("245")
	colorDim       = lipgloss.Color("240")
)

var (
	styleHeroTitle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorDarkBlue).Padding(1, 2)
	styleHeroBody  = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 2)
	styleHeading   = lipgloss.NewStyle().Bold(true).Foreground(colorLightBlue)
	styleFocused   = styleHeading.Underline(true)
	styleBody      = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim       = lipgloss.NewStyle().Foreground(colorDim)
	styleAccent    = lipgloss.NewStyle().Foreground(colorLightBlue)
	stylePrice     = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleError     = lipgloss.NewStyle().Foreground(colorRed)
	styleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	styleButton    = lipgloss.NewStyle().Foreground(colorWhite).Background(colorDarkBlue).Padding(0, 1)
	styleSection   = lipgloss.NewStyle().Padding(1, 2, 0, 2)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	styleCardSelected = styleCard.BorderForeground(colorLightBlue)
)

const (
	iconArrow = "→"
	iconPrev  = "‹"
	iconNext  = "›"
	iconFocus = "▸"
)
