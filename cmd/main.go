package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"colorizer/internal/client"
	"colorizer/internal/config"
	"colorizer/internal/prefs"
	"colorizer/internal/system"
	"colorizer/internal/transport"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "colorizer",
		Short:        "Upload images and videos to the colorization service and preview the results",
		SilenceUsage: true,
	}
	addGlobalFlags(root.PersistentFlags(), flags)
	root.AddCommand(newServeCmd(flags), newSubmitCmd(flags), newThemeCmd(flags))
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, flags *rootFlags) {
	fs.StringVarP(&flags.configPath, "config", "c", "config.yml", "path to the YAML config file")
	fs.StringVar(&flags.logLevel, "log-level", "", "override the configured log level")
}

// loadConfig reads the config and applies the log level.
func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

// clientOptions wires the parts every command shares.
func clientOptions(cfg config.Config, surface client.Surface, tc *transport.Client) client.Options {
	return client.Options{
		Surface:   surface,
		Submitter: tc,
		Prefs:     prefs.NewFileStore(cfg.PrefsPath),
		System:    system.FromConfig(cfg.SystemScheme, cfg.GTKSettingsPath),
		Progress: client.Progress{
			Interval:  cfg.Progress.TickInterval,
			Step:      cfg.Progress.Step,
			Cap:       cfg.Progress.Cap,
			HideDelay: cfg.Progress.HideDelay,
		},
	}
}
