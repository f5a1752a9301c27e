// Package system exposes the platform colour-scheme preference as a
// read-only signal.
package system

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// EnvScheme overrides the detected scheme when set to "light" or "dark".
const EnvScheme = "COLORIZER_COLOR_SCHEME"

// Source reports whether the platform prefers a dark scheme and notifies
// subscribers when that changes.
type Source interface {
	Dark() bool
	Subscribe(ctx context.Context, fn func(dark bool)) error
}

// Static is a Source that never changes.
type Static bool

func (s Static) Dark() bool { return bool(s) }

func (Static) Subscribe(context.Context, func(bool)) error { return nil }

// FromConfig picks a Source for the configured scheme ("auto", "light", "dark").
func FromConfig(scheme, gtkSettingsPath string) Source { //nolint:ireturn
	switch scheme {
	case "dark":
		return Static(true)
	case "light":
		return Static(false)
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvScheme))) {
	case "dark":
		return Static(true)
	case "light":
		return Static(false)
	}
	if gtkSettingsPath != "" {
		if _, err := os.Stat(gtkSettingsPath); err == nil {
			return NewGTKSource(gtkSettingsPath)
		}
	}
	return Static(false)
}

// GTKSource derives the preference from a GTK settings.ini file and
// watches it for edits.
type GTKSource struct {
	path string

	mu   sync.Mutex
	dark bool
}

func NewGTKSource(path string) *GTKSource {
	s := &GTKSource{path: path}
	s.dark = s.read()
	return s
}

func (s *GTKSource) Dark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Subscribe watches the settings directory until ctx is done. fn is called
// only when the derived value flips.
func (s *GTKSource) Subscribe(ctx context.Context, fn func(dark bool)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	// Watch the parent directory; editors often replace the file.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	target := filepath.Base(s.path)
	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if dark, changed := s.refresh(); changed {
					fn(dark)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("path", s.path).Msg("colour scheme watcher error")
			}
		}
	}()
	return nil
}

func (s *GTKSource) refresh() (bool, bool) {
	dark := s.read()
	s.mu.Lock()
	defer s.mu.Unlock()
	if dark == s.dark {
		return dark, false
	}
	s.dark = dark
	return dark, true
}

func (s *GTKSource) read() bool {
	f, err := os.Open(s.path)
	if err != nil {
		return false
	}
	defer f.Close()
	return ParseGTKSettings(f)
}

// ParseGTKSettings reports whether a settings.ini asks for a dark theme,
// either through gtk-application-prefer-dark-theme or a "-dark" theme name.
func ParseGTKSettings(r io.Reader) bool {
	var preferDark, darkName bool
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "[") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.ToLower(strings.Trim(strings.TrimSpace(value), `"`))
		switch key {
		case "gtk-application-prefer-dark-theme":
			preferDark = value == "1" || value == "true"
		case "gtk-theme-name":
			darkName = strings.HasSuffix(value, "-dark") || strings.HasSuffix(value, ":dark")
		}
	}
	return preferDark || darkName
}
