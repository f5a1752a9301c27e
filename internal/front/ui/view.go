package ui

import (
	"sync"

	"colorizer/internal/client"
)

// View is the server-side model of the page. It implements client.Surface;
// the loop writes it and request handlers read snapshots of it.
type View struct {
	mu sync.RWMutex
	pg Page
}

// Page is one rendering of the view.
type Page struct {
	FileName        string
	ActionsEnabled  bool
	Status          client.StatusMessage
	Progress        int
	ProgressVisible bool
	DropActive      bool
	ChooserOpen     bool
	Theme           client.Theme
	Glyph           string
	Media           *Media
	Fallback        *client.Fallback
}

// Media is the rendered output element.
type Media struct {
	Kind     client.MediaKind
	RenderID int
	Config   client.MediaConfig
	Src      string
	Loaded   bool
}

// Processing reports whether a job is in flight, so the page keeps polling.
func (p Page) Processing() bool {
	return p.Status.Severity == client.SeverityProcessing
}

// Dark reports whether the dark theme is applied.
func (p Page) Dark() bool { return p.Theme == client.ThemeDark }

func NewView() *View {
	return &View{pg: Page{Theme: client.ThemeLight, Glyph: client.ThemeLight.Glyph()}}
}

// Snapshot copies the current page.
func (v *View) Snapshot() Page {
	v.mu.RLock()
	defer v.mu.RUnlock()
	pg := v.pg
	if pg.Media != nil {
		m := *pg.Media
		pg.Media = &m
	}
	if pg.Fallback != nil {
		fb := *pg.Fallback
		pg.Fallback = &fb
	}
	return pg
}

// takeChooser returns and clears a pending chooser request.
func (v *View) takeChooser() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	open := v.pg.ChooserOpen
	v.pg.ChooserOpen = false
	return open
}

func (v *View) update(fn func(*Page)) {
	v.mu.Lock()
	fn(&v.pg)
	v.mu.Unlock()
}

func (v *View) SetFileName(name string) { v.update(func(p *Page) { p.FileName = name }) }

func (v *View) SetActionsEnabled(enabled bool) {
	v.update(func(p *Page) { p.ActionsEnabled = enabled })
}

func (v *View) SetStatus(msg client.StatusMessage) { v.update(func(p *Page) { p.Status = msg }) }

func (v *View) SetProgress(percent int) { v.update(func(p *Page) { p.Progress = percent }) }

func (v *View) SetProgressVisible(visible bool) {
	v.update(func(p *Page) { p.ProgressVisible = visible })
}

func (v *View) SetDropActive(active bool) { v.update(func(p *Page) { p.DropActive = active }) }

func (v *View) OpenChooser() { v.update(func(p *Page) { p.ChooserOpen = true }) }

func (v *View) ClearOutput() {
	v.update(func(p *Page) {
		p.Media = nil
		p.Fallback = nil
	})
}

func (v *View) NewMedia(kind client.MediaKind, renderID int) client.MediaElement { //nolint:ireturn
	return &element{view: v, media: Media{Kind: kind, RenderID: renderID}}
}

func (v *View) AppendOutput(el client.MediaElement) {
	e, ok := el.(*element)
	if !ok {
		return
	}
	v.update(func(p *Page) {
		m := e.media
		p.Media = &m
		e.attached = true
	})
}

func (v *View) ShowFallback(fb client.Fallback) { v.update(func(p *Page) { p.Fallback = &fb }) }

func (v *View) SetTheme(theme client.Theme, glyph string) {
	v.update(func(p *Page) {
		p.Theme = theme
		p.Glyph = glyph
	})
}

// element builds a Media before it is attached. Load on an attached
// element marks the page copy so the browser is told to start loading.
type element struct {
	view     *View
	media    Media
	attached bool
}

func (e *element) Configure(cfg client.MediaConfig) { e.media.Config = cfg }

func (e *element) SetSource(url string) { e.media.Src = url }

func (e *element) Load() {
	e.media.Loaded = true
	e.view.update(func(p *Page) {
		if e.attached && p.Media != nil && p.Media.RenderID == e.media.RenderID {
			p.Media.Loaded = true
		}
	})
}
