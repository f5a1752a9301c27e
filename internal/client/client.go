// Package client implements the upload-and-preview workflow: file
// selection, job orchestration with simulated progress, result rendering,
// status reporting and the theme preference. All state lives in one State
// record mutated only by the event loop goroutine.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"colorizer/internal/prefs"
	"colorizer/internal/system"
	"colorizer/internal/transport"
)

const defaultQueueSize = 64

// Submitter performs the processing request.
type Submitter interface {
	Process(ctx context.Context, req transport.Request) (transport.Payload, error)
}

// Progress tunes the cosmetic progress simulation.
type Progress struct {
	Interval  time.Duration
	Step      int
	Cap       int
	HideDelay time.Duration
}

// DefaultProgress advances 5 points every 200ms up to 95%.
func DefaultProgress() Progress {
	return Progress{Interval: 200 * time.Millisecond, Step: 5, Cap: 95, HideDelay: 500 * time.Millisecond}
}

// Options configures a Client.
type Options struct {
	Surface   Surface
	Submitter Submitter
	Prefs     prefs.Store
	System    system.Source
	Scheduler Scheduler
	Progress  Progress
	// OnJobDone is called on the loop goroutine after each job's outcome is applied.
	OnJobDone func(Job)
	QueueSize int
}

// Client owns the State record and the event loop.
type Client struct {
	surface   Surface
	submitter Submitter
	prefs     prefs.Store
	system    system.Source
	sched     Scheduler
	progress  Progress
	onJobDone func(Job)

	events  chan envelope
	stopped chan struct{}
	baseCtx context.Context

	state       State
	initialized bool
	tickTimer   Timer
	hideTimer   Timer
	retired     []File
}

type envelope struct {
	ev   Event
	done chan struct{}
}

// New validates options and fills defaults.
func New(opts Options) (*Client, error) {
	if opts.Surface == nil {
		return nil, ErrNoSurface
	}
	if opts.Submitter == nil {
		return nil, ErrNoSubmitter
	}
	if opts.Prefs == nil {
		opts.Prefs = prefs.NewMemory()
	}
	if opts.System == nil {
		opts.System = system.Static(false)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler()
	}
	defaults := DefaultProgress()
	if opts.Progress.Interval <= 0 {
		opts.Progress.Interval = defaults.Interval
	}
	if opts.Progress.Step <= 0 {
		opts.Progress.Step = defaults.Step
	}
	if opts.Progress.Cap <= 0 || opts.Progress.Cap >= 100 {
		opts.Progress.Cap = defaults.Cap
	}
	if opts.Progress.HideDelay < 0 {
		opts.Progress.HideDelay = defaults.HideDelay
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &Client{
		surface:   opts.Surface,
		submitter: opts.Submitter,
		prefs:     opts.Prefs,
		system:    opts.System,
		sched:     opts.Scheduler,
		progress:  opts.Progress,
		onJobDone: opts.OnJobDone,
		events:    make(chan envelope, opts.QueueSize),
		stopped:   make(chan struct{}),
		baseCtx:   context.Background(),
	}, nil
}

// State returns a copy of the client-state record. Call it from the loop
// goroutine or while no loop is running.
func (c *Client) State() State {
	s := c.state
	if s.Job != nil {
		job := *s.Job
		s.Job = &job
	}
	return s
}

// Init applies the initial theme and status. Run calls it if needed.
func (c *Client) Init() {
	if c.initialized {
		return
	}
	c.initialized = true
	c.initTheme()
	c.surface.SetActionsEnabled(false)
	c.surface.SetProgressVisible(false)
	c.report("Select a file to begin.", SeverityInfo)
}

// Post enqueues an event. It is safe for concurrent use and drops the event
// once the loop has stopped.
func (c *Client) Post(ev Event) {
	select {
	case c.events <- envelope{ev: ev}:
	case <-c.stopped:
		log.Debug().Type("event", ev).Msg("event dropped after loop stop")
	}
}

// Do enqueues an event and waits until the loop has handled it.
func (c *Client) Do(ctx context.Context, ev Event) error {
	env := envelope{ev: ev, done: make(chan struct{})}
	select {
	case c.events <- env:
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-env.done:
		return nil
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Step handles exactly one event, blocking until one is available.
func (c *Client) Step(ctx context.Context) error {
	select {
	case env := <-c.events:
		c.dispatch(env.ev)
		if env.done != nil {
			close(env.done)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run initializes the client, subscribes to the system colour scheme and
// handles events until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	c.baseCtx = ctx
	c.Init()
	defer close(c.stopped)
	defer c.releaseAll()
	defer c.stopTimers()

	if err := c.system.Subscribe(ctx, func(dark bool) {
		c.Post(SystemSchemeChanged{Dark: dark})
	}); err != nil {
		log.Warn().Err(err).Msg("system colour scheme subscription failed")
	}

	for {
		if err := c.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (c *Client) dispatch(ev Event) {
	switch e := ev.(type) {
	case FileChosen:
		c.selectFile(e.File)
	case FilesDropped:
		c.handleDrop(e)
	case DragOver:
		c.handleDragOver(e)
	case DragLeave:
		c.setDropActive(false)
	case BrowseClicked:
		c.surface.OpenChooser()
	case SurfaceClicked:
		c.handleSurfaceClick(e)
	case SubmitClicked:
		c.submit(e.Mode)
	case progressTick:
		c.handleTick(e)
	case progressHide:
		c.handleHide(e)
	case jobFinished:
		c.handleFinished(e)
	case MediaFailed:
		c.handleMediaFailed(e)
	case ThemeToggled:
		c.toggleTheme()
	case SystemSchemeChanged:
		c.handleSystemScheme(e.Dark)
	case Sync:
	default:
		log.Warn().Type("event", ev).Msg("unhandled client event")
	}
}

func (c *Client) stopTimers() {
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

// releaseAll frees every file the client still holds once the loop is done.
func (c *Client) releaseAll() {
	c.releaseRetired()
	if c.state.Selection != nil {
		c.state.Selection.release()
	}
}

// report overwrites the single current status message.
func (c *Client) report(text string, severity Severity) {
	c.state.Status = StatusMessage{Text: text, Severity: severity}
	c.surface.SetStatus(c.state.Status)
	log.Debug().Str("severity", string(severity)).Msg(text)
}

// refreshActions applies the control invariant: enabled iff a Selection is
// present and no Job is in flight.
func (c *Client) refreshActions() {
	c.surface.SetActionsEnabled(c.state.Selection != nil && !c.state.Job.Active())
}
