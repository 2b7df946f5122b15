package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// Theme defines the colour palette used for terminal output.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Bold   lipgloss.Style
	Italic lipgloss.Style
	Bullet lipgloss.Style

	// Prefix styles for the speaker label of each message kind.
	User    lipgloss.Style
	Bot     lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Loading lipgloss.Style

	Title     lipgloss.Style
	Muted     lipgloss.Style
	Online    lipgloss.Style
	Offline   lipgloss.Style
	StatusBar lipgloss.Style
	Input     lipgloss.Style
	Overlay   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		Bold:   lipgloss.NewStyle().Bold(true),
		Italic: lipgloss.NewStyle().Italic(true),
		Bullet: lipgloss.NewStyle().Foreground(theme.Secondary),

		User:    lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Bot:     lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(theme.Error),
		Info:    lipgloss.NewStyle().Foreground(theme.Warning),
		Loading: lipgloss.NewStyle().Italic(true).Foreground(theme.Muted),

		Title:     lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).MarginBottom(1),
		Muted:     lipgloss.NewStyle().Foreground(theme.Muted),
		Online:    lipgloss.NewStyle().Foreground(theme.Success),
		Offline:   lipgloss.NewStyle().Foreground(theme.Error),
		StatusBar: lipgloss.NewStyle().Foreground(theme.Muted).Padding(0, 1),
		Input:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 1),
		Overlay:   lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(theme.Primary).Padding(1, 3),
	}
}

// DefaultStyles returns styles using the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Label returns the styled speaker label for a message kind.
func (s *Styles) Label(kind session.Kind) string {
	switch kind {
	case session.KindUser:
		return s.User.Render("You:")
	case session.KindBot:
		return s.Bot.Render("Bot:")
	case session.KindError:
		return s.Error.Render("Error:")
	case session.KindLoading:
		return s.Loading.Render("…")
	default:
		return s.Info.Render("Info:")
	}
}
