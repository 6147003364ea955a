package launcher

import "github.com/charmbracelet/lipgloss"

// Theme defines all colors used by the picker.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary        lipgloss.Color // title, prompt
	Secondary      lipgloss.Color // selected row text
	Accent         lipgloss.Color // session manager projects
	Error          lipgloss.Color // launch errors
	Warning        lipgloss.Color // new sessions
	Success        lipgloss.Color // attach to running sessions
	Text           lipgloss.Color // primary text
	TextMuted      lipgloss.Color // hints, relevance
	BackgroundElem lipgloss.Color // selected row background
	Border         lipgloss.Color // separators
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#fab283"),
		Secondary:      lipgloss.Color("#5c9cf5"),
		Accent:         lipgloss.Color("#9d7cd8"),
		Error:          lipgloss.Color("#e06c75"),
		Warning:        lipgloss.Color("#f5a742"),
		Success:        lipgloss.Color("#7fd88f"),
		Text:           lipgloss.Color("#eeeeee"),
		TextMuted:      lipgloss.Color("#808080"),
		BackgroundElem: lipgloss.Color("#1e1e1e"),
		Border:         lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#b35c00"),
		Secondary:      lipgloss.Color("#0550ae"),
		Accent:         lipgloss.Color("#6639ba"),
		Error:          lipgloss.Color("#cf222e"),
		Warning:        lipgloss.Color("#bf8700"),
		Success:        lipgloss.Color("#116329"),
		Text:           lipgloss.Color("#1f2328"),
		TextMuted:      lipgloss.Color("#656d76"),
		BackgroundElem: lipgloss.Color("#f6f8fa"),
		Border:         lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title    lipgloss.Style
	prompt   lipgloss.Style
	selected lipgloss.Style
	attach   lipgloss.Style
	create   lipgloss.Style
	subtool  lipgloss.Style
	err      lipgloss.Style
	dim      lipgloss.Style
	text     lipgloss.Style
	border   lipgloss.Style

	// Hints
	hintKey  lipgloss.Style
	hintDesc lipgloss.Style
}

// newStyles builds all styles from a theme.
func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		prompt:   lipgloss.NewStyle().Foreground(t.Primary),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Background(t.BackgroundElem),
		attach:   lipgloss.NewStyle().Foreground(t.Success),
		create:   lipgloss.NewStyle().Foreground(t.Warning),
		subtool:  lipgloss.NewStyle().Foreground(t.Accent),
		err:      lipgloss.NewStyle().Foreground(t.Error),
		dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		border:   lipgloss.NewStyle().Foreground(t.Border),

		hintKey:  lipgloss.NewStyle().Foreground(t.Text),
		hintDesc: lipgloss.NewStyle().Foreground(t.TextMuted),
	}
}
