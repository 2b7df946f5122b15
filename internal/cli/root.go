// Package cli implements the docassist command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AndreyKorzunin/projectassist/internal/chatbot"
	"github.com/AndreyKorzunin/projectassist/internal/config"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=...".
var version = "dev"

var (
	configPath  string
	apiURL      string
	dataDir     string
	taskType    string
	timeoutSecs int
	debug       bool
	noTelemetry bool

	// cfg is the configuration resolved before every command.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docassist",
	Short: "Chat with your documents",
	Long: `docassist uploads Word, Excel and PDF documents to the document-analysis
service and lets you ask questions about them, check grammar, find repeated
phrases and analyze structure.

Configuration is read from ~/.docassist/config.toml, then DOCASSIST_*
environment variables, then command line flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.docassist/config.toml)")
	pf.StringVar(&apiURL, "api-url", "", "document service URL")
	pf.StringVar(&dataDir, "data-dir", "", "directory for the database and logs")
	pf.StringVar(&taskType, "task", "", "default task type (answer|grammar_check|find_repeats|structure_analysis)")
	pf.IntVar(&timeoutSecs, "timeout", 0, "request timeout in seconds")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.BoolVar(&noTelemetry, "no-telemetry", false, "do not write trace and metric files")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	return resolveConfig(cmd, configPath)
}

// resolveConfig loads the config file at path and applies the flags the
// user set explicitly.
func resolveConfig(cmd *cobra.Command, path string) error {
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		loaded.APIURL = apiURL
	}
	if flags.Changed("data-dir") {
		loaded.DataDir = dataDir
	}
	if flags.Changed("task") {
		loaded.TaskType = taskType
	}
	if flags.Changed("timeout") {
		loaded.TimeoutSeconds = timeoutSecs
	}
	if flags.Changed("debug") {
		loaded.Debug = debug
	}
	if flags.Changed("no-telemetry") {
		loaded.Telemetry = !noTelemetry
	}

	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// openBot creates the chatbot for a command. The caller must Close it.
func openBot(cmd *cobra.Command) (*chatbot.ChatBot, error) {
	bot, err := chatbot.NewChatBot(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return bot, nil
}
