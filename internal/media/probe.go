package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	fileutil "colorizer/internal/file"
)

// sniffBytes is how much of the artifact is fetched for type detection.
const sniffBytes = 3072

// Prober checks that a video artifact is reachable and decodable as video.
type Prober struct {
	http *http.Client
}

func NewProber(httpClient *http.Client) *Prober {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Prober{http: httpClient}
}

// ProbeVideo fetches the head of url and returns the detected MIME type,
// or an *Error classified into the media enumeration.
func (p *Prober) ProbeVideo(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{Code: CodeSrcNotSupported, Detail: err.Error()}
	}
	req.Header.Set("Range", "bytes=0-"+strconv.Itoa(sniffBytes-1))

	resp, err := p.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", &Error{Code: CodeAborted, Detail: ctx.Err().Error()}
		}
		return "", &Error{Code: CodeNetwork, Detail: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return "", &Error{Code: CodeNetwork, Detail: resp.Status}
	case resp.StatusCode >= 400:
		return "", &Error{Code: CodeSrcNotSupported, Detail: resp.Status}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", &Error{Code: CodeUnknown, Detail: resp.Status}
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, sniffBytes))
	if err != nil {
		if ctx.Err() != nil {
			return "", &Error{Code: CodeAborted, Detail: ctx.Err().Error()}
		}
		return "", &Error{Code: CodeNetwork, Detail: err.Error()}
	}
	if len(head) == 0 {
		return "", &Error{Code: CodeDecode, Detail: "empty media file"}
	}
	if want := expectedLength(resp); want > 0 && int64(len(head)) < min(want, sniffBytes) {
		return "", &Error{Code: CodeDecode, Detail: fmt.Sprintf("truncated media: got %d of %d bytes", len(head), want)}
	}

	detected := mimetype.Detect(head)
	if !isVideo(detected) {
		return detected.String(), &Error{Code: CodeSrcNotSupported, Detail: "detected " + detected.String()}
	}
	return detected.String(), nil
}

// Download saves the artifact at url to dest atomically.
func (p *Prober) Download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	n, err := fileutil.CopyAtomic(dest, resp.Body)
	if err != nil {
		return n, fmt.Errorf("save %s: %w", dest, err)
	}
	return n, nil
}

// expectedLength reports the total size for a full or ranged response.
func expectedLength(resp *http.Response) int64 {
	if resp.StatusCode == http.StatusPartialContent {
		// Content-Range: bytes 0-3071/123456
		if _, total, ok := strings.Cut(resp.Header.Get("Content-Range"), "/"); ok && total != "*" {
			if n, err := strconv.ParseInt(total, 10, 64); err == nil {
				return n
			}
		}
	}
	return resp.ContentLength
}

func isVideo(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") {
			return true
		}
	}
	return false
}

// AsError extracts an *Error, defaulting to CodeUnknown for foreign errors.
func AsError(err error) *Error {
	var mediaErr *Error
	if errors.As(err, &mediaErr) {
		return mediaErr
	}
	return &Error{Code: CodeUnknown, Detail: err.Error()}
}
