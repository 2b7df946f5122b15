package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AndreyKorzunin/projectassist/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [file]",
	Short: "Start an interactive chat in the terminal",
	Long: `Start a line-oriented chat. Enter the path of a document to upload it,
then type questions. Type /help for the list of commands.

If a file is given it is uploaded before the prompt appears.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the full-screen terminal UI",
	Long: `Launch the full-screen interface.

Controls:
  Enter     - Upload the typed path / send the query
  Tab       - Next task type
  Alt+1..4  - Quick replies
  Esc       - Back to upload / close an alert
  Ctrl+N    - New document
  Ctrl+R    - Refresh service status
  Ctrl+C    - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(tuiCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	if len(args) == 1 {
		if _, err := bot.UploadFile(cmd.Context(), args[0]); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	}

	return bot.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	app, err := tui.NewApp(bot)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app.WithContext(cmd.Context()), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
