// Package term renders the client on a terminal for one-shot submissions.
package term

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog/log"
	xterm "golang.org/x/term"

	"colorizer/internal/client"
	"colorizer/internal/media"
)

const (
	defaultWidth = 80
	barWidth     = 30
	clearLine    = "\r\033[K"
)

// Options wires the surface to the backend.
type Options struct {
	// Resolve turns a result locator into a fetchable URL.
	Resolve func(ref string) (string, error)
	Prober  *media.Prober
	// Context bounds media probes.
	Context context.Context
}

// Surface implements client.Surface on an io.Writer.
type Surface struct {
	mu       sync.Mutex
	out      io.Writer
	tty      bool
	width    int
	renderer *lipgloss.Renderer
	light    palette
	dark     palette
	palette  palette
	opts     Options
	post    func(client.Event)
	probes  sync.WaitGroup

	enabled     bool
	barVisible  bool
	barDrawn    bool
	lastPercent int
	fallback    *client.Fallback
}

// New builds a surface writing to out. Colours and the live progress bar
// are used only when out is a terminal.
func New(out io.Writer, opts Options) *Surface {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Prober == nil {
		opts.Prober = media.NewProber(nil)
	}
	s := &Surface{out: out, width: defaultWidth, renderer: lipgloss.NewRenderer(out), opts: opts, lastPercent: -1}
	s.light, s.dark = newPalettes(s.renderer)
	s.palette = s.light
	if f, ok := out.(*os.File); ok && xterm.IsTerminal(int(f.Fd())) {
		s.tty = true
		if w, _, err := xterm.GetSize(int(f.Fd())); err == nil && w > 0 {
			s.width = w
		}
	}
	return s
}

// Attach sets where observed media failures are reported.
func (s *Surface) Attach(post func(client.Event)) {
	s.mu.Lock()
	s.post = post
	s.mu.Unlock()
}

// Wait blocks until every started media probe has reported.
func (s *Surface) Wait() { s.probes.Wait() }

// ActionsEnabled reports the last enablement applied to the action buttons.
func (s *Surface) ActionsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Fallback returns the fallback shown for a failed video, if any.
func (s *Surface) Fallback() *client.Fallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

func (s *Surface) SetFileName(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linef("File: %s", fit(name, s.width-len("File: ")))
}

func (s *Surface) SetActionsEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

func (s *Surface) SetStatus(msg client.StatusMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linef("%s", s.palette.paint(msg.Severity, msg.Text))
}

func (s *Surface) SetProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if percent == s.lastPercent {
		return
	}
	s.lastPercent = percent
	if !s.tty || !s.barVisible {
		return
	}
	filled := percent * barWidth / 100
	fmt.Fprintf(s.out, "%s[%s%s] %3d%%", clearLine, strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), percent)
	s.barDrawn = true
}

func (s *Surface) SetProgressVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barVisible = visible
	if !visible {
		s.endBar()
		s.lastPercent = -1
	}
}

func (s *Surface) SetDropActive(bool) {}

func (s *Surface) OpenChooser() {
	log.Debug().Msg("file chooser requested; the terminal takes files as arguments")
}

func (s *Surface) ClearOutput() {
	s.mu.Lock()
	s.fallback = nil
	s.mu.Unlock()
}

func (s *Surface) NewMedia(kind client.MediaKind, renderID int) client.MediaElement { //nolint:ireturn
	return &element{surface: s, kind: kind, renderID: renderID}
}

func (s *Surface) AppendOutput(el client.MediaElement) {
	e, ok := el.(*element)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	label := e.cfg.Alt
	if e.kind == client.MediaVideo {
		label = "video (muted, looping)"
	}
	s.linef("Output %s: %s [%s]", e.kind, s.display(e.src), label)
}

func (s *Surface) ShowFallback(fb client.Fallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &fb
	s.linef("%s", s.palette.paint(client.SeverityError, fb.Message))
	s.linef("Try downloading it: %s (%s)", fb.LinkText, s.display(fb.URL))
}

func (s *Surface) SetTheme(theme client.Theme, glyph string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if theme == client.ThemeDark {
		s.palette = s.dark
	} else {
		s.palette = s.light
	}
	log.Debug().Str("theme", string(theme)).Str("glyph", glyph).Msg("terminal theme applied")
}

// linef prints a full line, first closing any live progress bar.
func (s *Surface) linef(format string, args ...any) {
	if s.barDrawn {
		fmt.Fprint(s.out, clearLine)
		s.barDrawn = false
		s.lastPercent = -1
	}
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Surface) endBar() {
	if s.barDrawn {
		fmt.Fprintln(s.out)
		s.barDrawn = false
	}
}

func (s *Surface) display(ref string) string {
	if s.opts.Resolve == nil {
		return ref
	}
	abs, err := s.opts.Resolve(ref)
	if err != nil {
		return ref
	}
	return abs
}

// probe checks a video the way a player would and reports failures back.
func (s *Surface) probe(renderID int, src string) {
	s.probes.Add(1)
	go func() {
		defer s.probes.Done()
		target := src
		if s.opts.Resolve != nil {
			abs, err := s.opts.Resolve(src)
			if err != nil {
				s.report(renderID, &media.Error{Code: media.CodeSrcNotSupported, Detail: err.Error()})
				return
			}
			target = abs
		}
		mime, err := s.opts.Prober.ProbeVideo(s.opts.Context, target)
		if err != nil {
			s.report(renderID, err)
			return
		}
		log.Debug().Str("url", target).Str("mime", mime).Msg("video probe ok")
	}()
}

func (s *Surface) report(renderID int, err error) {
	mediaErr := media.AsError(err)
	log.Debug().Err(err).Int("render_id", renderID).Msg("video probe failed")
	s.mu.Lock()
	post := s.post
	s.mu.Unlock()
	if post != nil {
		post(client.MediaFailed{RenderID: renderID, Code: mediaErr.Code})
	}
}

// element is a media presentation printed as a line.
type element struct {
	surface  *Surface
	kind     client.MediaKind
	renderID int
	cfg      client.MediaConfig
	src      string
}

func (e *element) Configure(cfg client.MediaConfig) { e.cfg = cfg }

func (e *element) SetSource(url string) { e.src = url }

func (e *element) Load() {
	if e.kind == client.MediaVideo && e.src != "" {
		e.surface.probe(e.renderID, e.src)
	}
}

// fit truncates s to limit display cells, counting wide graphemes correctly.
func fit(s string, limit int) string {
	if limit <= 1 || uniseg.StringWidth(s) <= limit {
		return s
	}
	var b strings.Builder
	width := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if width+w > limit-1 {
			break
		}
		b.WriteString(g.Str())
		width += w
	}
	return b.String() + "…"
}
