package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func fileRequest(name, content, mode string) Request {
	return Request{
		Filename: name,
		Mode:     mode,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func newBackend(t *testing.T, handler gin.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var calls atomic.Int32
	r := gin.New()
	r.POST("/process", func(c *gin.Context) {
		calls.Add(1)
		handler(c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, 0)
	require.NoError(t, err)
	return client, &calls
}

func TestProcessSendsMultipartFields(t *testing.T) {
	client, calls := newBackend(t, func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
			return
		}
		f, _ := fh.Open()
		data, _ := io.ReadAll(f)
		_ = f.Close()
		c.JSON(http.StatusOK, gin.H{
			"processed_file_url": "/processed/" + c.PostForm("mode") + "_" + fh.Filename,
			"is_video":           false,
			"filename":           fh.Filename,
			"message":            "got " + string(data),
		})
	})

	payload, err := client.Process(context.Background(), fileRequest("cat.png", "pixels", ModeBW))
	require.NoError(t, err)
	require.Equal(t, "/processed/bw_cat.png", payload.ProcessedFileURL)
	require.Equal(t, "got pixels", payload.Message)
	require.False(t, payload.IsVideo)
	require.EqualValues(t, 1, calls.Load())
}

func TestProcessServerErrorStatus(t *testing.T) {
	client, calls := newBackend(t, func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
	})

	_, err := client.Process(context.Background(), fileRequest("a.txt", "x", ModeColorize))
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "File type not allowed", serverErr.Message)
	require.Equal(t, http.StatusBadRequest, serverErr.Status)
	require.EqualValues(t, 1, calls.Load(), "no retry expected")
}

func TestProcessServerErrorWithoutJSON(t *testing.T) {
	client, _ := newBackend(t, func(c *gin.Context) {
		c.String(http.StatusRequestEntityTooLarge, "<html>too large</html>")
	})

	_, err := client.Process(context.Background(), fileRequest("big.mp4", "x", ModeColorize))
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "Server error: 413", serverErr.Message)
}

func TestProcessErrorFieldInSuccessBody(t *testing.T) {
	client, _ := newBackend(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"error": "Failed to read image."})
	})

	_, err := client.Process(context.Background(), fileRequest("a.png", "x", ModeColorize))
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "Failed to read image.", serverErr.Message)
}

func TestProcessMalformedBodyIsTransportError(t *testing.T) {
	client, _ := newBackend(t, func(c *gin.Context) {
		c.String(http.StatusOK, "not json")
	})

	_, err := client.Process(context.Background(), fileRequest("a.png", "x", ModeColorize))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestProcessNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(url, 0)
	require.NoError(t, err)
	_, err = client.Process(context.Background(), fileRequest("a.png", "x", ModeColorize))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestProcessValidatesRequest(t *testing.T) {
	client, calls := newBackend(t, func(c *gin.Context) { c.Status(http.StatusOK) })

	_, err := client.Process(context.Background(), Request{Mode: ModeBW})
	require.True(t, errors.Is(err, ErrNoFile))

	_, err = client.Process(context.Background(), fileRequest("a.png", "x", "sepia"))
	require.True(t, errors.Is(err, ErrInvalidMode))
	require.EqualValues(t, 0, calls.Load())
}

func TestResolveURL(t *testing.T) {
	client, err := NewClient("http://gpu-box:5000/", 0)
	require.NoError(t, err)

	got, err := client.ResolveURL("/processed/colorize_a.png")
	require.NoError(t, err)
	require.Equal(t, "http://gpu-box:5000/processed/colorize_a.png", got)

	_, err = NewClient("gpu-box", 0)
	require.Error(t, err)
}
