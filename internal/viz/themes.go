package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live view.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Spike     lipgloss.Color
	Threshold lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#00ccff"),
		Spike:     lipgloss.Color("#ffffff"),
		Threshold: lipgloss.Color("#ff4444"),
		Muted:     lipgloss.Color("#446688"),
	}

	ThemeRetro = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Spike:     lipgloss.Color("#88ff88"),
		Threshold: lipgloss.Color("#ffff00"),
		Muted:     lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Spike:     lipgloss.Color("#0088ff"),
		Threshold: lipgloss.Color("#888888"),
		Muted:     lipgloss.Color("#555555"),
	}
)

var themes = []Theme{ThemeOcean, ThemeRetro, ThemeMinimal}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range themes {
		if th.Name == t.Name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
