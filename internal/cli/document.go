package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AndreyKorzunin/projectassist/internal/render"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

var (
	askHTML bool
	askKeep bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and print its summary",
	Long: `Uploads a document, prints the service's summary of it and the session id.
The session stays open on the service until it expires.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var askCmd = &cobra.Command{
	Use:   "ask <file> <query>",
	Short: "Upload a document and ask one question about it",
	Long: `Uploads a document, sends one query with the task type selected by --task
and prints the formatted result. The session is closed afterwards unless
--keep is given.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askHTML, "html", false, "print the answer as HTML")
	askCmd.Flags().BoolVar(&askKeep, "keep", false, "keep the session open on the service")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	sess, err := bot.UploadFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	styles := render.DefaultStyles()
	for _, msg := range bot.Messages() {
		fmt.Fprintln(cmd.OutOrStdout(), render.Message(msg, styles))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSession: %s\n", sess.ID)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	bot, err := openBot(cmd)
	if err != nil {
		return err
	}
	defer bot.Close()

	if _, err := bot.UploadFile(ctx, args[0]); err != nil {
		return err
	}
	if !askKeep {
		defer bot.NewSession(ctx)
	}

	msg, err := bot.SendMessage(ctx, args[1])
	if err != nil && msg.Kind != session.KindError {
		return err
	}

	if askHTML {
		fmt.Fprintln(cmd.OutOrStdout(), render.FormatText(msg.Text))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), render.Terminal(msg.Text, render.DefaultStyles()))
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(data)))
	return nil
}
