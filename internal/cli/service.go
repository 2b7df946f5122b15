package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AndreyKorzunin/projectassist/internal/config"
	"github.com/AndreyKorzunin/projectassist/internal/render"
)

var (
	healthJSON   bool
	statsJSON    bool
	historyLimit int
	configForce  bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the document service",
	RunE:  runHealth,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many documents and queries were sent",
	RunE:  runStats,
}

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List past sessions, or print the transcript of one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cfg.Encode(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to the config file",
	// The file may not exist yet, so it is not read.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return resolveConfig(cmd, "")
	},
	RunE: runConfigInit,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of sessions")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	h, err := bot.CheckHealth(cmd.Context())
	if err != nil {
		return err
	}
	if healthJSON {
		return printJSON(cmd, h)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", h)
	fmt.Fprintf(cmd.OutOrStdout(), "URL: %s\n", cfg.APIURL)
	if !h.Online {
		return fmt.Errorf("service reported status %q", h.Status)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	st := bot.Stats()
	if statsJSON {
		return printJSON(cmd, st)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Documents uploaded: %d\n", st.Documents)
	fmt.Fprintf(cmd.OutOrStdout(), "Queries sent: %d\n", st.Queries)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	if len(args) == 1 {
		msgs, err := bot.LoadHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return fmt.Errorf("no messages for session %s", args[0])
		}
		styles := render.DefaultStyles()
		for _, msg := range msgs {
			fmt.Fprintln(cmd.OutOrStdout(), render.Message(msg, styles))
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}

	list, err := bot.ListHistory(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet.")
		return nil
	}
	for _, s := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-30s %-18s %d messages\n",
			s.StartTime.Format("2006-01-02 15:04"), s.ID, s.Filename, s.DocType.Label(), s.MessageCount)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := cfg.Write(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
