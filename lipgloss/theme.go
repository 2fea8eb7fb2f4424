// Package lipgloss renders word-diff text for terminals using the Lipgloss
// styling library.
package lipgloss

// ColorPair holds foreground and background colors.
// Empty values leave the terminal default.
type ColorPair struct {
	Foreground string
	Background string
}

// Theme holds the colors used to render a word diff.
type Theme struct {
	Deleted  ColorPair
	Inserted ColorPair
	Title    ColorPair
	Muted    ColorPair
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		Deleted: ColorPair{
			Foreground: "#f38ba8", // Red
			Background: "#3f0001", // Very dark red
		},
		Inserted: ColorPair{
			Foreground: "#a6e3a1", // Green
			Background: "#004000", // Very dark green
		},
		Title: ColorPair{
			Foreground: "#f9e2af", // Yellow
			Background: "#313244", // Dark surface
		},
		Muted: ColorPair{
			Foreground: "#6c7086",
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		Deleted: ColorPair{
			Foreground: "#d20f39", // Red
			Background: "#f4d4d4", // Subtle red background
		},
		Inserted: ColorPair{
			Foreground: "#40a02b", // Green
			Background: "#d4f4d4", // Subtle green background
		},
		Title: ColorPair{
			Foreground: "#df8e1d", // Yellow
			Background: "#e6e9ef", // Light surface
		},
		Muted: ColorPair{
			Foreground: "#9ca0b0",
		},
	}
}
