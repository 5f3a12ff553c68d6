package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/geodash/modules/dashboard"
	"github.com/dmitrymomot/geodash/pkg/config"
	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/requestid"
)

const serviceName = "geodash"

// app is shared by all subcommands. It is filled in by the root pre-run hook.
type app struct {
	envFile string
	apiURL  string
	verbose bool

	cfg  dashboard.Config
	log  *slog.Logger
	dash *dashboard.Dashboard

	// configOpts is replaced by tests.
	configOpts []config.Option
}

// newRootCmd builds the command tree with a fresh app.
func newRootCmd() *cobra.Command {
	a := &app{}
	return a.rootCmd()
}

// rootCmd wires the persistent flags, the setup hooks and all subcommands.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "geodash",
		Short:         "Explore St. Louis County municipal boundaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.dash == nil {
				return nil
			}
			return a.dash.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading GEODASH_* variables")
	flags.StringVar(&a.apiURL, "api-url", "", "session backend base URL (overrides GEODASH_API_URL)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.forgotPasswordCmd(),
		a.layersCmd(),
		a.featuresCmd(),
		a.facetsCmd(),
		a.searchCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads the configuration, builds the logger and the dashboard.
func (a *app) setup(cmd *cobra.Command) error {
	opts := append([]config.Option{config.WithEnvFiles(a.envFile)}, a.configOpts...)
	cfg, err := dashboard.LoadConfig(opts...)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	a.cfg = cfg

	logOpts := []logger.Option{
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithEnvironment(cfg.Env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogFormat != "" {
		logOpts = append(logOpts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	if a.verbose {
		logOpts = append(logOpts, logger.WithLevelName("debug"))
	}
	a.log = logger.New(logOpts...)

	a.dash, err = dashboard.New(cmd.Context(), cfg, dashboard.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("build dashboard: %w", err)
	}
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
