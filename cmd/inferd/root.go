package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
)

// app carries the resolved configuration and logger shared by all
// subcommands. Flags win over config-file values, which win over the
// package defaults.
type app struct {
	configPath string
	flags      config.Config

	cfg config.Config
	log zerolog.Logger
}

// resolve loads the config file (when given), overlays the flag values
// and fills the remaining defaults.
func (a *app) resolve() error {
	var cfg config.Config
	if a.configPath != "" {
		c, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if a.flags.Addr != "" {
		cfg.Addr = a.flags.Addr
	}
	if a.flags.ModelsDir != "" {
		cfg.ModelsDir = a.flags.ModelsDir
	}
	if a.flags.DefaultModel != "" {
		cfg.DefaultModel = a.flags.DefaultModel
	}
	if a.flags.LogLevel != "" {
		cfg.LogLevel = a.flags.LogLevel
	}
	if a.flags.LogFormat != "" {
		cfg.LogFormat = a.flags.LogFormat
	}
	a.cfg = cfg.ApplyDefaults()
	a.log = newLogger(a.cfg)
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "inferd",
		Short:         "Offline LLM inference daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.resolve()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (.yaml/.json/.toml)")
	pf.StringVar(&a.flags.Addr, "addr", "", "Diagnostics listen address (default :8090)")
	pf.StringVar(&a.flags.ModelsDir, "models-dir", "", "Directory holding *.gguf model files")
	pf.StringVar(&a.flags.DefaultModel, "default-model", "", "Model id loaded at startup and used when no model is named")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "Log output: console|json")

	root.AddCommand(
		newServeCmd(a),
		newModelsCmd(a),
		newGenerateCmd(a),
		newStatusCmd(a),
	)
	return root
}
