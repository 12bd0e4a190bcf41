package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"kitenav/internal/analysis"
	"kitenav/internal/config"
	"kitenav/internal/scanner"
	"kitenav/internal/server"
	"kitenav/internal/workspace"
)

var version = "0.3.0"

var (
	flagConfig   string
	flagRoot     string
	flagLogLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "kitenav",
		Short: "Language intelligence server for the Kite infrastructure DSL",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "kitenav.toml", "path to config file")
	root.PersistentFlags().StringVar(&flagRoot, "root", "", "workspace root (overrides config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(serveCmd(), scanCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			// stdout carries the protocol; glsp's own log goes to stderr.
			commonlog.Configure(1, nil)

			ws := workspace.NewDir(cfg.Root, log, workspace.WithExcludes(cfg.Exclude), workspace.WithExtension(cfg.Extension))
			cache := workspace.NewDeclCache()

			if cfg.Watch {
				watcher, err := workspace.NewWatcher(cfg.Root, cache, cfg.Extension, log)
				if err != nil {
					log.Warn().Err(err).Msg("file watcher unavailable")
				} else {
					defer watcher.Close()
				}
			}

			engine := analysis.NewEngine(ws, cache, log)
			srv := server.New(engine, cache, version, log)

			log.Info().Str("root", cfg.Root).Str("version", version).Msg("serving")
			return srv.Run()
		},
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file>",
		Short: "Print the declarations of one source file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			decls := scanner.New(log).Scan(workspace.PathToURI(args[0]), string(data))

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(decls)
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagRoot != "" {
		cfg.Root = flagRoot
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
