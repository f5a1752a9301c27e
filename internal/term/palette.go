package term

import (
	"github.com/charmbracelet/lipgloss"

	"colorizer/internal/client"
)

// palette styles status text by severity for one theme.
type palette map[client.Severity]lipgloss.Style

// newPalettes binds the light and dark palettes to r, which decides from
// its writer whether colour is emitted at all.
func newPalettes(r *lipgloss.Renderer) (light, dark palette) {
	style := func(color string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(color))
	}
	light = palette{
		client.SeverityInfo:       style("4"),
		client.SeverityProcessing: style("3"),
		client.SeveritySuccess:    style("2"),
		client.SeverityError:      style("1").Bold(true),
	}
	dark = palette{
		client.SeverityInfo:       style("12"),
		client.SeverityProcessing: style("11"),
		client.SeveritySuccess:    style("10"),
		client.SeverityError:      style("9").Bold(true),
	}
	return light, dark
}

func (p palette) paint(sev client.Severity, text string) string {
	st, ok := p[sev]
	if !ok {
		return text
	}
	return st.Render(text)
}
