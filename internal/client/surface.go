package client

// MediaKind selects the presentation built for a Result.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaConfig holds display constraints and playback flags of a media
// element. Playback flags are only meaningful for video.
type MediaConfig struct {
	MaxWidth    string
	MaxHeight   string
	Alt         string
	Controls    bool
	Autoplay    bool
	Muted       bool
	Loop        bool
	PlaysInline bool
}

// MediaElement is a presentation created by the surface and filled in by
// the renderer in the order Configure, SetSource, then Load for video.
type MediaElement interface {
	Configure(MediaConfig)
	SetSource(url string)
	Load()
}

// Fallback replaces a failed video with a message and a download link.
type Fallback struct {
	Message      string
	URL          string
	DownloadName string
	LinkText     string
}

// Surface is the page the client drives: upload area, file input, browse
// button, filename display, both action buttons, status text, output
// container, progress bar and theme toggle.
//
// Methods are called from the event loop goroutine only. A surface that
// observes media failures reports them back with Post(MediaFailed{...}).
type Surface interface {
	SetFileName(name string)
	SetActionsEnabled(enabled bool)
	SetStatus(msg StatusMessage)
	SetProgress(percent int)
	SetProgressVisible(visible bool)
	SetDropActive(active bool)
	OpenChooser()
	ClearOutput()
	NewMedia(kind MediaKind, renderID int) MediaElement
	AppendOutput(el MediaElement)
	ShowFallback(fb Fallback)
	SetTheme(theme Theme, glyph string)
}
