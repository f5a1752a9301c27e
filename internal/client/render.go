package client

import (
	"github.com/rs/zerolog/log"

	"colorizer/internal/media"
)

const (
	maxMediaWidth       = "100%"
	maxMediaHeight      = "500px"
	defaultImageLabel   = "Processed Image"
	defaultVideoName    = "video.mp4"
	defaultDownloadText = "Download Video"
)

// render replaces the output with a presentation of res. Constraints are
// configured before the source is assigned; video is then explicitly loaded.
func (c *Client) render(res Result) {
	c.clearOutput()
	c.state.Result = &res

	cfg := MediaConfig{MaxWidth: maxMediaWidth, MaxHeight: maxMediaHeight}
	kind := MediaImage
	if res.IsVideo {
		kind = MediaVideo
		cfg.Controls = true
		cfg.Autoplay = true
		cfg.Muted = true
		cfg.Loop = true
		cfg.PlaysInline = true
	} else {
		cfg.Alt = res.Filename
		if cfg.Alt == "" {
			cfg.Alt = defaultImageLabel
		}
	}

	el := c.surface.NewMedia(kind, c.state.RenderID)
	el.Configure(cfg)
	el.SetSource(res.URL)
	c.surface.AppendOutput(el)
	if res.IsVideo {
		el.Load()
	}
}

// clearOutput empties the output surface and invalidates pending media
// failures of the previous presentation.
func (c *Client) clearOutput() {
	c.state.Result = nil
	c.state.RenderID++
	c.surface.ClearOutput()
}

// handleMediaFailed swaps a failed video for a message and download link.
func (c *Client) handleMediaFailed(e MediaFailed) {
	res := c.state.Result
	if res == nil || !res.IsVideo || e.RenderID != c.state.RenderID {
		return
	}
	name := res.Filename
	text := res.Filename
	if name == "" {
		name = defaultVideoName
		text = defaultDownloadText
	}
	log.Warn().Str("url", res.URL).Str("code", e.Code.String()).Msg("video failed to load")

	c.state.RenderID++
	c.surface.ClearOutput()
	c.surface.ShowFallback(Fallback{
		Message:      MediaErrorMessage(e.Code),
		URL:          res.URL,
		DownloadName: name,
		LinkText:     text,
	})
}

// MediaErrorMessage explains a video failure to the user.
func MediaErrorMessage(code media.Code) string {
	switch code {
	case media.CodeAborted:
		return "Video playback aborted."
	case media.CodeNetwork:
		return "A network error caused video download to fail."
	case media.CodeDecode:
		return "Video decoding error. File may be corrupted or unsupported."
	case media.CodeSrcNotSupported:
		return "Video source not supported. Check the URL or format."
	default:
		return "An unknown error occurred while loading the video."
	}
}
