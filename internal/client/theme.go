package client

import "github.com/rs/zerolog/log"

const themeKey = "theme"

// initTheme applies the persisted preference, or derives one from the
// system signal without persisting it.
func (c *Client) initTheme() {
	if theme, ok := c.persistedTheme(); ok {
		c.state.ThemeExplicit = true
		c.applyTheme(theme)
		return
	}
	c.applyTheme(systemTheme(c.system.Dark()))
}

// toggleTheme flips the applied theme and persists it explicitly.
func (c *Client) toggleTheme() {
	next := c.state.Theme.opposite()
	c.applyTheme(next)
	c.state.ThemeExplicit = true
	if err := c.prefs.Set(themeKey, string(next)); err != nil {
		log.Error().Err(err).Str("theme", string(next)).Msg("persist theme failed")
	}
}

// handleSystemScheme follows the platform only while no explicit
// preference is persisted.
func (c *Client) handleSystemScheme(dark bool) {
	if c.state.ThemeExplicit {
		return
	}
	if _, ok := c.persistedTheme(); ok {
		return
	}
	c.applyTheme(systemTheme(dark))
}

func (c *Client) applyTheme(theme Theme) {
	c.state.Theme = theme
	c.surface.SetTheme(theme, theme.Glyph())
}

func (c *Client) persistedTheme() (Theme, bool) {
	v, ok, err := c.prefs.Get(themeKey)
	if err != nil {
		log.Warn().Err(err).Msg("read theme preference failed")
		return "", false
	}
	if !ok {
		return "", false
	}
	theme, valid := parseTheme(v)
	if !valid {
		log.Warn().Str("value", v).Msg("ignoring invalid theme preference")
	}
	return theme, valid
}

func systemTheme(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}
