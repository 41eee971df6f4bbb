package output

import "github.com/charmbracelet/lipgloss"

// Palette colors.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9D8CFF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
)

// Styles holds the text-mode styles, bound to one lipgloss renderer.
type Styles struct {
	Header lipgloss.Style
	Bold   lipgloss.Style
	Muted  lipgloss.Style
	Path   lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds the styles for r.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header: r.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
		Bold: r.NewStyle().
			Bold(true),
		Muted: r.NewStyle().
			Foreground(ColorMuted),
		Path: r.NewStyle().
			Foreground(ColorInfo),

		Success: r.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: r.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(ColorWarning).
			Bold(true),
		Info: r.NewStyle().
			Foreground(ColorInfo),

		StatusSuccess: r.NewStyle().
			Foreground(ColorSuccess),
		StatusFailed: r.NewStyle().
			Foreground(ColorError),
	}
}
