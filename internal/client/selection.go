package client

import "github.com/rs/zerolog/log"

// selectFile replaces the Selection. Manual choice and drop both end here.
func (c *Client) selectFile(f *File) {
	c.retire(c.state.Selection)
	if f == nil {
		c.state.Selection = nil
		c.surface.SetFileName("")
		c.refreshActions()
		c.report("Select a file to begin.", SeverityInfo)
		return
	}

	selected := *f
	c.state.Selection = &selected
	c.surface.SetFileName(selected.Name)
	c.refreshActions()
	c.clearOutput()
	c.report("File selected: "+selected.Name, SeverityInfo)
	log.Info().Str("file", selected.Name).Int64("size", selected.Size).Msg("file selected")
}

// handleDrop selects the first dropped file. Payloads without file items
// leave the Selection untouched.
func (c *Client) handleDrop(e FilesDropped) {
	if e.Native != nil {
		e.Native.PreventDefault()
	}
	c.setDropActive(false)
	if len(e.Files) == 0 {
		log.Debug().Msg("drop without files ignored")
		return
	}
	if len(e.Files) > 1 {
		log.Info().Int("dropped", len(e.Files)).Str("kept", e.Files[0].Name).Msg("multiple files dropped, keeping the first")
	}
	first := e.Files[0]
	for _, extra := range e.Files[1:] {
		extra.release()
	}
	c.selectFile(&first)
}

func (c *Client) handleDragOver(e DragOver) {
	if e.Native != nil {
		e.Native.PreventDefault()
	}
	c.setDropActive(true)
}

func (c *Client) setDropActive(active bool) {
	if c.state.DropActive == active {
		return
	}
	c.state.DropActive = active
	c.surface.SetDropActive(active)
}

// handleSurfaceClick opens the chooser unless the click came from the browse
// control, which opens it on its own.
func (c *Client) handleSurfaceClick(e SurfaceClicked) {
	if e.OnBrowse {
		return
	}
	c.surface.OpenChooser()
}

// retire gives up a replaced Selection. A Job in flight may still be reading
// it, so the release then waits for the Job to finish.
func (c *Client) retire(f *File) {
	if f == nil {
		return
	}
	if c.state.Job.Active() {
		c.retired = append(c.retired, *f)
		return
	}
	f.release()
}

func (c *Client) releaseRetired() {
	for _, f := range c.retired {
		f.release()
	}
	c.retired = nil
}
