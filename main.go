// Package main provides the moodsense CLI entry point.
// moodsense analyzes exported chat conversations for emotion, sentiment and
// activity patterns, locally or as an HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/cmd"
	"github.com/otherjamesbrown/moodsense/config"
	"github.com/otherjamesbrown/moodsense/pkg/buildinfo"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
)

// envEnvironment names the deployment environment in log entries.
const envEnvironment = "MOODSENSE_ENVIRONMENT"

// rootFlags are the global flags.
type rootFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	debug      bool
}

// newRootCommand builds the command tree around deps.
func newRootCommand(deps *cmd.Deps) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "moodsense",
		Short: "Emotion and activity analysis for chat exports",
		Long: `moodsense reads WhatsApp text exports and reports who talks, when, how
much, and in which mood.

Every message is scored for seven emotions (anger, disgust, fear, joy,
neutral, sadness, surprise) and a sentiment polarity. The report adds
activity by hour and weekday, the longest streak of shared days, and
per-participant emoji and word rankings.

COMMON WORKFLOWS:
  Local analysis:  moodsense analyze chat.txt  |  moodsense analyze chat.txt -o json
  Inspect parsing: moodsense parse chat.txt --user "Mario Rossi"
  Run the API:     moodsense keygen >> .env, then moodsense serve
  Plan hosting:    moodsense cost --requests-per-day 100

Settings come from ~/.moodsense/config.yaml, MOODSENSE_* environment
variables, a .env file in the working directory, and flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return setup(c, deps, &flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default is ~/.moodsense/config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: auto, json, console")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	root.AddGroup(
		&cobra.Group{ID: "analysis", Title: "Analysis:"},
		&cobra.Group{ID: "server", Title: "Server:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	analyzeCmd := cmd.NewAnalyzeCommand(deps)
	analyzeCmd.GroupID = "analysis"
	root.AddCommand(analyzeCmd)

	parseCmd := cmd.NewParseCommand(deps)
	parseCmd.GroupID = "analysis"
	root.AddCommand(parseCmd)

	serveCmd := cmd.NewServeCommand(deps)
	serveCmd.GroupID = "server"
	root.AddCommand(serveCmd)

	keygenCmd := cmd.NewKeygenCommand(deps)
	keygenCmd.GroupID = "server"
	root.AddCommand(keygenCmd)

	costCmd := cmd.NewCostCommand(deps)
	costCmd.GroupID = "server"
	root.AddCommand(costCmd)

	configCmd := cmd.NewConfigCommand(&cmd.ConfigCommandDeps{Deps: deps})
	configCmd.GroupID = "setup"
	root.AddCommand(configCmd)

	versionCmd := cmd.NewVersionCommand(deps)
	versionCmd.GroupID = "setup"
	root.AddCommand(versionCmd)

	root.SetHelpCommandGroupID("setup")
	root.SetCompletionCommandGroupID("setup")

	return root
}

// setup loads configuration, applies the global flags and installs the
// logger before any command runs.
func setup(c *cobra.Command, deps *cmd.Deps, flags *rootFlags) error {
	if err := cmd.LoadDotEnv(); err != nil {
		return err
	}

	var cfg *config.Config
	var err error
	if flags.configFile != "" {
		cfg, err = config.Load(flags.configFile)
	} else {
		cfg, err = deps.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.debug {
		cfg.Log.Level = string(logging.LevelDebug)
	}
	if flags.logFormat != "" {
		cfg.Log.Format = logging.Format(flags.logFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	environment := os.Getenv(envEnvironment)
	if environment == "" {
		environment = "development"
	}

	logOut := c.ErrOrStderr()
	logger := logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.Log.Level),
		ServiceName: buildinfo.ServiceName,
		Environment: environment,
		JSONFormat:  logging.ResolveFormat(cfg.Log.Format, logOut),
		Output:      logOut,
	})
	logging.SetGlobal(logger)

	deps.Config = cfg
	deps.Logger = logger
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(cmd.DefaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
