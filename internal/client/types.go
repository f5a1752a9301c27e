package client

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"colorizer/internal/transport"
)

// Mode selects the processing operation.
type Mode string

const (
	ModeColorize Mode = transport.ModeColorize
	ModeBW       Mode = transport.ModeBW
)

func (m Mode) Valid() bool { return m == ModeColorize || m == ModeBW }

// Severity classifies a status message.
type Severity string

const (
	SeverityInfo       Severity = "info"
	SeverityProcessing Severity = "processing"
	SeveritySuccess    Severity = "success"
	SeverityError      Severity = "error"
)

// StatusMessage is the single current status line.
type StatusMessage struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Theme is the whole-document display mode.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Glyph returns the indicator icon name for the theme.
func (t Theme) Glyph() string {
	if t == ThemeDark {
		return "brightness_4"
	}
	return "brightness_7"
}

func (t Theme) opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func parseTheme(v string) (Theme, bool) {
	switch Theme(v) {
	case ThemeLight, ThemeDark:
		return Theme(v), true
	default:
		return "", false
	}
}

// File is a selected file reference. Open may be called once per submission.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
	// Release frees backing storage once the file is no longer selected.
	Release func()
}

func (f File) release() {
	if f.Release != nil {
		f.Release()
	}
}

// OpenPath builds a File backed by a path on disk.
func OpenPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) }, //nolint:gosec // user-selected file
	}, nil
}

// JobOutcome is the terminal state of a Job.
type JobOutcome string

const (
	OutcomePending JobOutcome = "pending"
	OutcomeSuccess JobOutcome = "success"
	OutcomeFailure JobOutcome = "failure"
)

// Result describes a processed artifact to present.
type Result struct {
	URL      string `json:"url"`
	IsVideo  bool   `json:"is_video"`
	Filename string `json:"filename,omitempty"`
}

// Job is one submit-and-process cycle.
type Job struct {
	ID        string
	Mode      Mode
	File      File
	Progress  int
	Outcome   JobOutcome
	Err       string
	Result    *Result
	StartedAt time.Time
}

// Active reports whether the job still awaits its response.
func (j *Job) Active() bool { return j != nil && j.Outcome == OutcomePending }

// State is the client-state record owned by the event loop.
type State struct {
	Selection     *File
	Job           *Job
	Result        *Result
	Theme         Theme
	ThemeExplicit bool
	Status        StatusMessage
	DropActive    bool
	RenderID      int
}
