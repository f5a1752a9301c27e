package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"colorizer/internal/client"
)

func TestPaletteColoursOnlyWhenProfileAllows(t *testing.T) {
	var buf bytes.Buffer
	r := lipgloss.NewRenderer(&buf)
	light, dark := newPalettes(r)

	r.SetColorProfile(termenv.Ascii)
	require.Equal(t, "File selected: a.png", light.paint(client.SeverityInfo, "File selected: a.png"))

	r.SetColorProfile(termenv.ANSI)
	lightInfo := light.paint(client.SeverityInfo, "File selected: a.png")
	darkInfo := dark.paint(client.SeverityInfo, "File selected: a.png")
	require.True(t, strings.HasPrefix(lightInfo, "\x1b["), "got %q", lightInfo)
	require.Contains(t, lightInfo, "File selected: a.png")
	require.NotEqual(t, lightInfo, darkInfo)
}

func TestPaletteLeavesUnknownSeverityPlain(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.ANSI)
	light, _ := newPalettes(r)
	require.Equal(t, "plain", light.paint(client.Severity("other"), "plain"))
}

func TestSurfaceOnBufferWritesPlainStatus(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, Options{})
	s.SetTheme(client.ThemeDark, client.ThemeDark.Glyph())
	s.SetStatus(client.StatusMessage{Text: "Error: boom", Severity: client.SeverityError})
	require.Equal(t, "Error: boom\n", buf.String())
}
