package client

import (
	"colorizer/internal/media"
	"colorizer/internal/transport"
)

// Event is a message delivered to the client loop.
type Event interface {
	isEvent()
}

// NativeEvent lets a surface suppress its default handling (for a browser,
// navigating to a dropped file).
type NativeEvent interface {
	PreventDefault()
}

type (
	// FileChosen is the manual chooser result; nil File clears the selection.
	FileChosen struct {
		File *File
	}

	// FilesDropped is a drop on the upload area. Files holds only the file
	// items of the payload.
	FilesDropped struct {
		Files  []File
		Native NativeEvent
	}

	// DragOver fires while a drag hovers the upload area.
	DragOver struct {
		Native NativeEvent
	}

	// DragLeave fires when the drag leaves the upload area.
	DragLeave struct{}

	// BrowseClicked is a click on the explicit browse control.
	BrowseClicked struct{}

	// SurfaceClicked is a click anywhere on the upload area.
	SurfaceClicked struct {
		OnBrowse bool
	}

	// SubmitClicked is a press of one of the action buttons.
	SubmitClicked struct {
		Mode Mode
	}

	// ThemeToggled is a press of the theme toggle.
	ThemeToggled struct{}

	// SystemSchemeChanged carries a platform colour-scheme change.
	SystemSchemeChanged struct {
		Dark bool
	}

	// MediaFailed reports a load failure of a rendered media element.
	MediaFailed struct {
		RenderID int
		Code     media.Code
	}

	// Sync is a no-op; Do(ctx, Sync{}) returns once every earlier event has
	// been handled.
	Sync struct{}
)

type (
	progressTick struct{ jobID string }
	progressHide struct{ jobID string }
	jobFinished  struct {
		jobID   string
		payload transport.Payload
		err     error
	}
)

func (FileChosen) isEvent()          {}
func (FilesDropped) isEvent()        {}
func (DragOver) isEvent()            {}
func (DragLeave) isEvent()           {}
func (BrowseClicked) isEvent()       {}
func (SurfaceClicked) isEvent()      {}
func (SubmitClicked) isEvent()       {}
func (ThemeToggled) isEvent()        {}
func (SystemSchemeChanged) isEvent() {}
func (MediaFailed) isEvent()         {}
func (Sync) isEvent()                {}
func (progressTick) isEvent()        {}
func (progressHide) isEvent()        {}
func (jobFinished) isEvent()         {}
