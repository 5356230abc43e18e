// ABOUTME: Theme system for TUI styling with lipgloss
// ABOUTME: Provides the dark, light, and notty palettes plus style constructors for components
package theme

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	SidebarBg  lipgloss.Color
	InputBg    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	UserMsg    lipgloss.Color
	AgentMsg   lipgloss.Color
	Reasoning  lipgloss.Color
	Dim        lipgloss.Color
}

var DarkTheme = Theme{
	Name:       "dark",
	Primary:    lipgloss.Color("#7C3AED"), // Purple
	Background: lipgloss.Color("#1E1E2E"), // Dark gray
	Foreground: lipgloss.Color("#CDD6F4"), // Light gray
	SidebarBg:  lipgloss.Color("#181825"), // Darker gray
	InputBg:    lipgloss.Color("#313244"), // Medium gray
	Success:    lipgloss.Color("#A6E3A1"), // Green
	Warning:    lipgloss.Color("#F9E2AF"), // Yellow
	Error:      lipgloss.Color("#F38BA8"), // Red
	UserMsg:    lipgloss.Color("#89B4FA"), // Blue
	AgentMsg:   lipgloss.Color("#94E2D5"), // Cyan
	Reasoning:  lipgloss.Color("#9399B2"), // Overlay gray
	Dim:        lipgloss.Color("#6C7086"), // Dim gray
}

var LightTheme = Theme{
	Name:       "light",
	Primary:    lipgloss.Color("#268BD2"), // Blue
	Background: lipgloss.Color("#FDF6E3"), // Cream
	Foreground: lipgloss.Color("#657B83"), // Gray
	SidebarBg:  lipgloss.Color("#EEE8D5"), // Light cream
	InputBg:    lipgloss.Color("#EEE8D5"), // Light cream
	Success:    lipgloss.Color("#859900"), // Olive green
	Warning:    lipgloss.Color("#B58900"), // Yellow
	Error:      lipgloss.Color("#DC322F"), // Red
	UserMsg:    lipgloss.Color("#268BD2"), // Blue
	AgentMsg:   lipgloss.Color("#2AA198"), // Cyan
	Reasoning:  lipgloss.Color("#93A1A1"), // Light gray
	Dim:        lipgloss.Color("#93A1A1"), // Light gray
}

// NoTTYTheme leaves colors to the terminal; used for dumb terminals and logs.
var NoTTYTheme = Theme{Name: "notty"}

// GetTheme returns the palette for a configured theme name. Unknown names
// fall back to dark.
func GetTheme(name string) Theme {
	switch name {
	case "light":
		return LightTheme
	case "notty":
		return NoTTYTheme
	default:
		return DarkTheme
	}
}

// GlamourStyle is the glamour standard style matching the palette.
func (t Theme) GlamourStyle() string {
	if t.Name == "" {
		return "dark"
	}
	return t.Name
}

// Style constructors

func (t Theme) SidebarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.SidebarBg).
		Foreground(t.Foreground).
		Padding(0, 1)
}

func (t Theme) ActiveItemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.Primary).
		Foreground(t.Background).
		Bold(true).
		Padding(0, 1)
}

func (t Theme) InactiveItemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Foreground).
		Padding(0, 1)
}

func (t Theme) SectionTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		Padding(0, 1)
}

func (t Theme) ChatViewStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Foreground).
		Padding(0, 1)
}

func (t Theme) InputAreaStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.InputBg).
		Foreground(t.Foreground).
		Padding(0, 1)
}

func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.Primary).
		Foreground(t.Background).
		Padding(0, 1)
}

func (t Theme) RoleStyle(role string) lipgloss.Style {
	switch role {
	case "user":
		return lipgloss.NewStyle().Foreground(t.UserMsg).Bold(true)
	case "assistant":
		return lipgloss.NewStyle().Foreground(t.AgentMsg).Bold(true)
	default:
		return t.DimStyle()
	}
}

// ReasoningStyle frames a reasoning block with a left rule.
func (t Theme) ReasoningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Reasoning).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Reasoning).
		PaddingLeft(1)
}

func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)
}

func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Warning)
}

func (t Theme) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Success)
}

func (t Theme) DimStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Dim)
}
