package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"colorizer/internal/client"
	"colorizer/internal/term"
	"colorizer/internal/transport"
)

func newThemeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "theme [show|toggle]",
		Short:     "Show or toggle the persisted theme preference",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"show", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "show"
			if len(args) == 1 {
				action = args[0]
			}
			return runTheme(cmd.Context(), cmd.OutOrStdout(), flags, action == "toggle")
		},
	}
	return cmd
}

// runTheme drives the client loop by hand: Init applies the stored or
// system theme and one ThemeToggled step flips and persists it.
func runTheme(ctx context.Context, out io.Writer, flags *rootFlags, toggle bool) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	tc, err := transport.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	c, err := client.New(clientOptions(cfg, term.New(io.Discard, term.Options{}), tc))
	if err != nil {
		return err
	}
	c.Init()
	if toggle {
		c.Post(client.ThemeToggled{})
		if err := c.Step(ctx); err != nil {
			return err
		}
	}
	st := c.State()
	source := "system"
	if st.ThemeExplicit {
		source = "saved"
	}
	_, err = fmt.Fprintf(out, "%s (%s, %s)\n", st.Theme, source, st.Theme.Glyph())
	return err
}
