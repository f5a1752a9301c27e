package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseGTKSettings(t *testing.T) {
	cases := []struct {
		name string
		ini  string
		want bool
	}{
		{"prefer dark flag", "[Settings]\ngtk-application-prefer-dark-theme=1\n", true},
		{"prefer dark true", "[Settings]\ngtk-application-prefer-dark-theme = true\n", true},
		{"dark theme name", "[Settings]\ngtk-theme-name=Adwaita-dark\n", true},
		{"light", "[Settings]\ngtk-theme-name=Adwaita\ngtk-application-prefer-dark-theme=0\n", false},
		{"comments only", "# gtk-application-prefer-dark-theme=1\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ParseGTKSettings(strings.NewReader(tc.ini)))
		})
	}
}

func TestFromConfigExplicitScheme(t *testing.T) {
	require.True(t, FromConfig("dark", "").Dark())
	require.False(t, FromConfig("light", "").Dark())
}

func TestFromConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvScheme, "dark")
	require.True(t, FromConfig("auto", "").Dark())
}

func TestGTKSourceNotifiesOnFlip(t *testing.T) {
	t.Setenv(EnvScheme, "")
	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte("[Settings]\ngtk-application-prefer-dark-theme=0\n"), 0o600))

	src, ok := FromConfig("auto", path).(*GTKSource)
	require.True(t, ok, "expected GTK source when settings file exists")
	require.False(t, src.Dark())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan bool, 4)
	require.NoError(t, src.Subscribe(ctx, func(dark bool) { got <- dark }))

	require.NoError(t, os.WriteFile(path, []byte("[Settings]\ngtk-application-prefer-dark-theme=1\n"), 0o600))

	select {
	case dark := <-got:
		require.True(t, dark)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification received")
	}
	require.True(t, src.Dark())
}
