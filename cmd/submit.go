package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"colorizer/internal/client"
	"colorizer/internal/config"
	"colorizer/internal/media"
	"colorizer/internal/term"
	"colorizer/internal/transport"
)

var errVideoUnplayable = errors.New("processed video could not be played")

type submitFlags struct {
	mode string
	save string
}

func newSubmitCmd(flags *rootFlags) *cobra.Command {
	sf := &submitFlags{}
	cmd := &cobra.Command{
		Use:   "submit <file>",
		Short: "Submit one file for processing and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return submit(ctx, cfg, args[0], sf)
		},
	}
	cmd.Flags().StringVarP(&sf.mode, "mode", "m", string(client.ModeColorize), "processing mode: colorize or bw")
	cmd.Flags().StringVarP(&sf.save, "save", "o", "", "also download the processed file to this path")
	return cmd
}

func submit(ctx context.Context, cfg config.Config, path string, sf *submitFlags) error {
	file, err := client.OpenPath(path)
	if err != nil {
		return err
	}
	tc, err := transport.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	prober := media.NewProber(nil)

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()

	surface := term.New(os.Stdout, term.Options{Resolve: tc.ResolveURL, Prober: prober, Context: loopCtx})
	done := make(chan client.Job, 1)
	opts := clientOptions(cfg, surface, tc)
	opts.OnJobDone = func(j client.Job) { done <- j }
	c, err := client.New(opts)
	if err != nil {
		return err
	}
	surface.Attach(c.Post)

	loopDone := make(chan error, 1)
	go func() { loopDone <- c.Run(loopCtx) }()

	if err := c.Do(ctx, client.FileChosen{File: &file}); err != nil {
		return err
	}
	if err := c.Do(ctx, client.SubmitClicked{Mode: client.Mode(sf.mode)}); err != nil {
		return err
	}
	if !client.Mode(sf.mode).Valid() {
		cancelLoop()
		<-loopDone
		return fmt.Errorf("%w: %q", transport.ErrInvalidMode, sf.mode)
	}

	var job client.Job
	select {
	case job = <-done:
	case <-ctx.Done():
		cancelLoop()
		<-loopDone
		return ctx.Err()
	}

	// A failed probe lands in the loop before the barrier completes.
	surface.Wait()
	if err := c.Do(ctx, client.Sync{}); err != nil {
		return err
	}
	cancelLoop()
	if err := <-loopDone; err != nil {
		return err
	}

	if job.Outcome != client.OutcomeSuccess {
		return errors.New(job.Err)
	}
	if fb := surface.Fallback(); fb != nil {
		log.Warn().Str("url", fb.URL).Msg(fb.Message)
		if sf.save == "" {
			return errVideoUnplayable
		}
	}
	if sf.save == "" {
		return nil
	}
	return save(ctx, prober, tc, job.Result.URL, sf.save)
}

func save(ctx context.Context, prober *media.Prober, tc *transport.Client, ref, dest string) error {
	src, err := tc.ResolveURL(ref)
	if err != nil {
		return err
	}
	n, err := prober.Download(ctx, src, dest)
	if err != nil {
		return err
	}
	log.Info().Str("path", dest).Int64("bytes", n).Msg("processed file saved")
	return nil
}
