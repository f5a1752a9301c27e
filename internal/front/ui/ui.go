// Package ui serves the colorizer page. Form posts and the page's small
// script become client events; the page renders the View the client
// drives.
package ui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"colorizer/internal/client"
	fileutil "colorizer/internal/file"
	"colorizer/internal/media"
)

//go:embed templates/*
var templatesFS embed.FS

const refreshSeconds = 1

// Poster is the part of client.Client the handlers drive.
type Poster interface {
	Do(ctx context.Context, ev client.Event) error
}

// Options configures the UI handlers.
type Options struct {
	// UploadDir holds spooled uploads until they are submitted.
	UploadDir string
	// Backend is the processing service; /processed/* is proxied to it.
	Backend *url.URL
}

type UI struct {
	client    Poster
	view      *View
	uploadDir string
	proxy     *httputil.ReverseProxy
	templates *template.Template

	mu      sync.Mutex
	spooled map[string]struct{}
}

// reply is the JSON answer to script-driven posts.
type reply struct {
	OpenChooser bool `json:"open_chooser"`
	DropActive  bool `json:"drop_active"`
}

func NewUI(c Poster, view *View, opts Options) (*UI, error) {
	if opts.Backend == nil {
		return nil, errors.New("ui: backend url is required")
	}
	if err := fileutil.EnsureDir(opts.UploadDir); err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &UI{
		client:    c,
		view:      view,
		uploadDir: opts.UploadDir,
		proxy:     newProcessedProxy(opts.Backend),
		templates: tmpl,
		spooled:   make(map[string]struct{}),
	}, nil
}

func (u *UI) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(u.templates)
	router.GET("/", u.UIHome)
	router.POST("/ui/select", u.UISelect)
	router.POST("/ui/drop", u.UIDrop)
	router.POST("/ui/browse", u.UIBrowse)
	router.POST("/ui/surface-click", u.UISurfaceClick)
	router.POST("/ui/dragover", u.UIDragOver)
	router.POST("/ui/dragleave", u.UIDragLeave)
	router.POST("/ui/process", u.UIProcess)
	router.POST("/ui/theme", u.UITheme)
	router.POST("/ui/media-error", u.UIMediaError)
	router.GET("/processed/*name", u.Processed)
}

func (u *UI) UIHome(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "page", gin.H{
		"Page":           u.view.Snapshot(),
		"ChooserOpen":    u.view.takeChooser(),
		"RefreshSeconds": refreshSeconds,
	})
}

// UISelect applies the chooser result. An empty chooser clears the selection.
func (u *UI) UISelect(c *gin.Context) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || (err == nil && fh.Filename == "") {
		u.send(c, client.FileChosen{})
		return
	}
	if err != nil {
		c.String(http.StatusBadRequest, "invalid upload: %v", err)
		return
	}
	f, err := u.spool(fh)
	if err != nil {
		log.Error().Err(err).Str("file", fh.Filename).Msg("spool upload failed")
		c.String(http.StatusInternalServerError, "could not store upload")
		return
	}
	u.send(c, client.FileChosen{File: &f})
}

// UIDrop accepts the file items of a drop; the first one becomes the selection.
func (u *UI) UIDrop(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		u.send(c, client.FilesDropped{})
		return
	}
	headers := form.File["files"]
	files := make([]client.File, 0, len(headers))
	for i, fh := range headers {
		if i > 0 {
			// Only the first item is selected, the rest stay unread.
			files = append(files, client.File{Name: fh.Filename, Size: fh.Size, Open: func() (io.ReadCloser, error) { return fh.Open() }})
			continue
		}
		f, err := u.spool(fh)
		if err != nil {
			log.Error().Err(err).Str("file", fh.Filename).Msg("spool upload failed")
			c.String(http.StatusInternalServerError, "could not store upload")
			return
		}
		files = append(files, f)
	}
	u.send(c, client.FilesDropped{Files: files})
}

func (u *UI) UIBrowse(c *gin.Context) { u.send(c, client.BrowseClicked{}) }

// UISurfaceClick reports a click on the upload area; on_browse marks clicks
// that landed on the browse control.
func (u *UI) UISurfaceClick(c *gin.Context) {
	onBrowse, _ := strconv.ParseBool(c.PostForm("on_browse"))
	u.send(c, client.SurfaceClicked{OnBrowse: onBrowse})
}

// UIDragOver reports a hovering drag. The page script already suppressed the
// browser's drop navigation, so no native handle is passed on.
func (u *UI) UIDragOver(c *gin.Context) { u.send(c, client.DragOver{}) }

func (u *UI) UIDragLeave(c *gin.Context) { u.send(c, client.DragLeave{}) }

func (u *UI) UIProcess(c *gin.Context) {
	u.send(c, client.SubmitClicked{Mode: client.Mode(strings.TrimSpace(c.PostForm("mode")))})
}

func (u *UI) UITheme(c *gin.Context) { u.send(c, client.ThemeToggled{}) }

// UIMediaError receives the browser's video error code for a rendering.
func (u *UI) UIMediaError(c *gin.Context) {
	renderID, err := strconv.Atoi(c.PostForm("render"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid render id")
		return
	}
	raw, _ := strconv.Atoi(c.PostForm("code"))
	if err := u.client.Do(c.Request.Context(), client.MediaFailed{RenderID: renderID, Code: media.ParseCode(raw)}); err != nil {
		u.stopped(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Processed proxies result artifacts from the backend with caching disabled.
func (u *UI) Processed(c *gin.Context) {
	u.proxy.ServeHTTP(c.Writer, c.Request)
}

// send delivers ev to the loop. Once handled, script posts get the
// resulting reply and form posts are redirected back to the page.
func (u *UI) send(c *gin.Context, ev client.Event) {
	if err := u.client.Do(c.Request.Context(), ev); err != nil {
		u.stopped(c, err)
		return
	}
	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, reply{OpenChooser: u.view.takeChooser(), DropActive: u.view.Snapshot().DropActive})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Cleanup removes uploads still spooled. Call it once the loop has stopped.
func (u *UI) Cleanup() {
	u.mu.Lock()
	paths := make([]string, 0, len(u.spooled))
	for p := range u.spooled {
		paths = append(paths, p)
	}
	u.mu.Unlock()
	for _, p := range paths {
		u.unspool(p)
	}
}

func (u *UI) unspool(path string) {
	u.mu.Lock()
	delete(u.spooled, path)
	u.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("spool", path).Msg("remove spooled upload failed")
		return
	}
	log.Debug().Str("spool", path).Msg("spooled upload removed")
}

func (u *UI) stopped(c *gin.Context, err error) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("client loop unavailable")
	c.String(http.StatusServiceUnavailable, "client unavailable")
}

// spool copies an upload into the upload directory under a fresh name.
func (u *UI) spool(fh *multipart.FileHeader) (client.File, error) {
	src, err := fh.Open()
	if err != nil {
		return client.File{}, err
	}
	defer src.Close()

	dest := filepath.Join(u.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	n, err := fileutil.CopyAtomic(dest, src)
	if err != nil {
		return client.File{}, err
	}
	u.mu.Lock()
	u.spooled[dest] = struct{}{}
	u.mu.Unlock()
	log.Debug().Str("file", fh.Filename).Str("spool", dest).Int64("bytes", n).Msg("upload spooled")
	return client.File{
		Name:    filepath.Base(fh.Filename),
		Size:    n,
		Open:    func() (io.ReadCloser, error) { return os.Open(dest) }, //nolint:gosec // path built from uuid
		Release: func() { u.unspool(dest) },
	}, nil
}

func newProcessedProxy(backend *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(backend)
		},
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
			resp.Header.Set("Pragma", "no-cache")
			resp.Header.Set("Expires", "0")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("processed proxy failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
