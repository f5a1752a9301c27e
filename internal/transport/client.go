package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// MaxResponseBytes caps the JSON reply from /process.
	MaxResponseBytes = 1 << 20
	processPath      = "/process"
)

// Modes accepted by the backend.
const (
	ModeColorize = "colorize"
	ModeBW       = "bw"
)

// Request carries one submission.
type Request struct {
	Filename string
	Open     func() (io.ReadCloser, error)
	Mode     string
}

// Payload is the success body of POST /process.
type Payload struct {
	ProcessedFileURL string `json:"processed_file_url"`
	IsVideo          bool   `json:"is_video"`
	Filename         string `json:"filename"`
	Message          string `json:"message,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Client submits files to the processing backend.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a client for backendURL. A zero timeout leaves the
// request bounded only by the transport.
func NewClient(backendURL string, timeout time.Duration) (*Client, error) {
	return NewClientWithHTTP(backendURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(backendURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(backendURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute: %q", backendURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{base: base, http: httpClient}, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.base.String() }

// ResolveURL resolves a result locator such as "/processed/x.png" against the backend.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse result url: %w", err)
	}
	return c.base.ResolveReference(u).String(), nil
}

// Process sends exactly one multipart submission. Server-reported failures
// come back as *ServerError, everything else as *TransportError.
func (c *Client) Process(ctx context.Context, req Request) (Payload, error) {
	if req.Open == nil || req.Filename == "" {
		return Payload{}, ErrNoFile
	}
	if req.Mode != ModeColorize && req.Mode != ModeBW {
		return Payload{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}

	body, contentType := multipartBody(req)
	endpoint := c.base.JoinPath(processPath).String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		_ = body.Close()
		return Payload{}, &TransportError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Payload{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := readLimited(resp.Body)
	if err != nil {
		return Payload{}, &TransportError{Op: "read response", Err: err}
	}
	log.Debug().
		Str("file", req.Filename).
		Str("mode", req.Mode).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("process request completed")

	return decodeResponse(resp.StatusCode, raw)
}

func decodeResponse(status int, raw []byte) (Payload, error) {
	var payload Payload
	decodeErr := json.Unmarshal(raw, &payload)

	if status < 200 || status > 299 {
		msg := strings.TrimSpace(payload.Error)
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("Server error: %d", status)
		}
		return Payload{}, &ServerError{Status: status, Message: msg}
	}
	if decodeErr != nil {
		return Payload{}, &TransportError{Op: "decode response", Err: decodeErr}
	}
	if payload.Error != "" {
		return Payload{}, &ServerError{Status: status, Message: payload.Error}
	}
	if payload.ProcessedFileURL == "" {
		return Payload{}, &TransportError{Op: "decode response", Err: errors.New("missing processed_file_url")}
	}
	return payload, nil
}

// multipartBody streams the file through a pipe so large videos are not
// buffered in memory.
func multipartBody(req Request) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeParts(mw, req)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, req Request) error {
	src, err := req.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", req.Filename, err)
	}
	defer src.Close()

	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy file part: %w", err)
	}
	if err := mw.WriteField("mode", req.Mode); err != nil {
		return fmt.Errorf("write mode field: %w", err)
	}
	return nil
}

func readLimited(r io.Reader) ([]byte, error) {
	limited := &io.LimitedReader{R: r, N: MaxResponseBytes + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > MaxResponseBytes {
		return nil, fmt.Errorf("response body too large (limit %d bytes)", MaxResponseBytes)
	}
	return body, nil
}
