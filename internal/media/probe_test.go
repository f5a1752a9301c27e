package media

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mp4Header() []byte {
	b := []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 2, 0, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}
	return append(b, bytes.Repeat([]byte{0}, 4096)...)
}

func serve(t *testing.T, name string, body []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/processed/" + name
}

func requireCode(t *testing.T, err error, want Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, AsError(err).Code, "error: %v", err)
}

func TestProbeVideoAcceptsMP4(t *testing.T) {
	url := serve(t, "colorize_clip.mp4", mp4Header())
	mime, err := NewProber(nil).ProbeVideo(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, "video/mp4", mime)
}

func TestProbeVideoRejectsImage(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	url := serve(t, "clip.mp4", png)
	_, err := NewProber(nil).ProbeVideo(context.Background(), url)
	requireCode(t, err, CodeSrcNotSupported)
}

func TestProbeVideoEmptyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	_, err := NewProber(nil).ProbeVideo(context.Background(), srv.URL)
	requireCode(t, err, CodeDecode)
}

func TestProbeVideoStatusClassification(t *testing.T) {
	for status, want := range map[int]Code{
		http.StatusNotFound:            CodeSrcNotSupported,
		http.StatusUnsupportedMediaType: CodeSrcNotSupported,
		http.StatusBadGateway:          CodeNetwork,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := NewProber(nil).ProbeVideo(context.Background(), srv.URL)
		srv.Close()
		requireCode(t, err, want)
	}
}

func TestProbeVideoNetworkAndAbort(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewProber(nil).ProbeVideo(context.Background(), url)
	requireCode(t, err, CodeNetwork)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewProber(nil).ProbeVideo(ctx, serve(t, "a.mp4", mp4Header()))
	requireCode(t, err, CodeAborted)
}

func TestParseCode(t *testing.T) {
	require.Equal(t, CodeDecode, ParseCode(3))
	require.Equal(t, CodeUnknown, ParseCode(42))
	require.Equal(t, "src_not_supported", CodeSrcNotSupported.String())
}

func TestDownloadSavesArtifact(t *testing.T) {
	body := mp4Header()
	url := serve(t, "clip.mp4", body)
	dest := filepath.Join(t.TempDir(), "out", "clip.mp4")

	n, err := NewProber(nil).Download(context.Background(), url, dest)
	require.NoError(t, err)
	require.EqualValues(t, len(body), n)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, body, got)
}
