package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"colorizer/internal/transport"
)

const transportErrorPrefix = "Client-side or network error: "

// submit starts a Job for the current Selection.
func (c *Client) submit(mode Mode) {
	if c.state.Selection == nil {
		c.report("Please select a file first.", SeverityError)
		return
	}
	if c.state.Job.Active() {
		log.Warn().Str("job_id", c.state.Job.ID).Msg("submission rejected: a job is already in flight")
		return
	}
	if !mode.Valid() {
		c.report(fmt.Sprintf("Unknown mode %q.", mode), SeverityError)
		return
	}

	job := &Job{
		ID:        uuid.NewString(),
		Mode:      mode,
		File:      *c.state.Selection,
		Outcome:   OutcomePending,
		StartedAt: time.Now(),
	}
	c.stopTimers()
	c.state.Job = job

	c.refreshActions()
	c.clearOutput()
	c.surface.SetProgress(0)
	c.surface.SetProgressVisible(true)
	c.report(fmt.Sprintf("Processing %s (%s)... This may take a while.", job.File.Name, job.Mode), SeverityProcessing)

	jobID := job.ID
	c.tickTimer = c.sched.Every(c.progress.Interval, func() {
		c.Post(progressTick{jobID: jobID})
	})

	req := transport.Request{Filename: job.File.Name, Open: job.File.Open, Mode: string(job.Mode)}
	ctx := c.baseCtx
	go func() {
		payload, err := c.submitter.Process(ctx, req)
		c.Post(jobFinished{jobID: jobID, payload: payload, err: err})
	}()

	log.Info().Str("job_id", jobID).Str("file", job.File.Name).Str("mode", string(mode)).Msg("job started")
}

// handleTick advances the cosmetic progress and stops at the cap.
func (c *Client) handleTick(e progressTick) {
	job := c.state.Job
	if !job.Active() || job.ID != e.jobID {
		return
	}
	if job.Progress < c.progress.Cap {
		job.Progress = min(job.Progress+c.progress.Step, c.progress.Cap)
		c.surface.SetProgress(job.Progress)
	}
	if job.Progress >= c.progress.Cap && c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
}

func (c *Client) handleFinished(e jobFinished) {
	job := c.state.Job
	if !job.Active() || job.ID != e.jobID {
		log.Warn().Str("job_id", e.jobID).Msg("stale job completion ignored")
		return
	}
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}

	var serverErr *transport.ServerError
	switch {
	case e.err == nil:
		c.completeJob(job, e.payload)
	case errors.As(e.err, &serverErr):
		c.failJob(job, "Error: "+serverErr.Message)
	default:
		c.failJob(job, transportErrorPrefix+e.err.Error())
	}

	c.refreshActions()
	c.releaseRetired()
	log.Info().
		Str("job_id", job.ID).
		Str("outcome", string(job.Outcome)).
		Dur("elapsed", time.Since(job.StartedAt)).
		Msg("job finished")
	if c.onJobDone != nil {
		c.onJobDone(*job)
	}
}

func (c *Client) completeJob(job *Job, payload transport.Payload) {
	job.Outcome = OutcomeSuccess
	job.Progress = 100
	job.Result = &Result{URL: payload.ProcessedFileURL, IsVideo: payload.IsVideo, Filename: payload.Filename}
	c.surface.SetProgress(100)

	jobID := job.ID
	c.hideTimer = c.sched.After(c.progress.HideDelay, func() {
		c.Post(progressHide{jobID: jobID})
	})

	msg := payload.Message
	if msg == "" {
		msg = "Processing complete!"
	}
	c.report(msg, SeveritySuccess)
	c.render(*job.Result)
}

func (c *Client) failJob(job *Job, msg string) {
	job.Outcome = OutcomeFailure
	job.Err = msg
	c.surface.SetProgressVisible(false)
	c.report(msg, SeverityError)
	log.Warn().Str("job_id", job.ID).Str("error", msg).Msg("job failed")
}

// handleHide hides the progress bar unless a newer job owns it.
func (c *Client) handleHide(e progressHide) {
	if c.state.Job == nil || c.state.Job.ID != e.jobID {
		return
	}
	c.hideTimer = nil
	c.surface.SetProgressVisible(false)
}
