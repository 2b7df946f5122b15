package chatbot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/AndreyKorzunin/projectassist/internal/render"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// repl is the state of one interactive session on a terminal.
type repl struct {
	cb     *ChatBot
	out    io.Writer
	styles *render.Styles
	seen   int // transcript messages already printed
}

// Run starts the line-oriented chat. In the upload view a line is taken as
// the path of a document to upload; in the chat view it is a query.
func (cb *ChatBot) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	r := &repl{cb: cb, out: out, styles: render.DefaultStyles()}

	fmt.Fprintln(out, r.styles.Title.Render("=== Document Assistant ==="))
	if h, err := cb.CheckHealth(ctx); err == nil {
		fmt.Fprintln(out, r.status(h))
	} else {
		fmt.Fprintln(out, r.styles.Offline.Render("Service unreachable: "+cb.config.APIURL))
	}
	fmt.Fprintln(out, "Type /help for commands, /quit to exit")
	fmt.Fprintln(out)
	r.printNew()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, r.prompt())
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := r.handleCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				cb.logger.Error("command error", "command", input, "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		if cb.View() == session.ViewUpload {
			r.upload(ctx, input)
			continue
		}
		r.send(ctx, func() error {
			_, err := cb.SendMessage(ctx, input)
			return err
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(out, "Goodbye!")
	return nil
}

func (r *repl) prompt() string {
	if r.cb.View() == session.ViewUpload {
		return "File: "
	}
	return fmt.Sprintf("[%s] You: ", r.cb.TaskType())
}

func (r *repl) status(h Health) string {
	if h.Online {
		return r.styles.Online.Render("● " + h.String())
	}
	return r.styles.Offline.Render("● " + h.String())
}

// printNew prints the transcript messages not printed yet.
func (r *repl) printNew() {
	msgs := r.cb.transcript.Since(r.seen)
	for _, msg := range msgs {
		if msg.Kind == session.KindUser || msg.Kind == session.KindLoading {
			continue
		}
		fmt.Fprintln(r.out, render.Message(msg, r.styles))
		fmt.Fprintln(r.out)
	}
	r.seen += len(msgs)
}

func (r *repl) upload(ctx context.Context, path string) {
	fmt.Fprintln(r.out, r.styles.Loading.Render("Uploading "+path+"..."))
	if _, err := r.cb.UploadFile(ctx, path); err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	r.seen = 0
	r.printNew()
}

// send runs a query and prints what it appended. Queries that were not
// sent only print the reason.
func (r *repl) send(ctx context.Context, fn func() error) {
	fmt.Fprintln(r.out, r.styles.Loading.Render(LoadingText))
	if err := fn(); notSent(err) {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	r.printNew()
}

// handleCommand handles special commands
func (r *repl) handleCommand(ctx context.Context, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}
	cb := r.cb
	arg := strings.TrimSpace(strings.TrimPrefix(cmd, parts[0]))

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/upload":
		if arg == "" {
			return false, fmt.Errorf("usage: /upload <path>")
		}
		r.upload(ctx, arg)
		return false, nil

	case "/new-session", "/back":
		if parts[0] == "/back" {
			cb.Back(ctx)
		} else {
			cb.NewSession(ctx)
		}
		r.seen = 0
		fmt.Fprintln(r.out, "Session closed. Enter the path of a document to upload.")
		return false, nil

	case "/task":
		if arg == "" {
			fmt.Fprintln(r.out, "Task types:")
			for _, t := range session.TaskTypes {
				current := ""
				if t == cb.TaskType() {
					current = " (current)"
				}
				fmt.Fprintf(r.out, "  %-20s %s%s\n", t, t.Label(), current)
			}
			return false, nil
		}
		t, err := session.ParseTaskType(arg)
		if err != nil {
			return false, err
		}
		if err := cb.SetTaskType(t); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Task type set to: %s\n", t.Label())
		return false, nil

	case "/quick":
		if arg == "" {
			for i, q := range cb.QuickReplies() {
				fmt.Fprintf(r.out, "%d. %s - %s\n", i+1, q.Label, q.Query)
			}
			return false, nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("usage: /quick <number>")
		}
		if n < 1 || n > len(quickReplies) {
			return false, fmt.Errorf("no quick reply %d (1-%d)", n, len(quickReplies))
		}
		r.send(ctx, func() error {
			_, err := cb.SendQuickReply(ctx, n-1)
			return err
		})
		return false, nil

	case "/info":
		info, err := cb.SessionInfo(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Session:  %s\n", info.SessionID)
		fmt.Fprintf(r.out, "File:     %s (%s)\n", info.Filename, info.DocType)
		fmt.Fprintf(r.out, "Created:  %s\n", info.CreatedAt)
		fmt.Fprintf(r.out, "Accessed: %s\n", info.LastAccessed)
		for _, k := range slices.Sorted(maps.Keys(info.Statistics)) {
			fmt.Fprintf(r.out, "  %s: %s\n", strings.ReplaceAll(k, "_", " "), strconv.FormatFloat(info.Statistics[k], 'f', -1, 64))
		}
		return false, nil

	case "/health":
		h, err := cb.CheckHealth(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, r.status(h))
		return false, nil

	case "/stats":
		st := cb.Stats()
		fmt.Fprintf(r.out, "Documents uploaded: %d\nQueries sent: %d\n", st.Documents, st.Queries)
		return false, nil

	case "/export":
		path := arg
		if path == "" {
			path = fmt.Sprintf("transcript_%s.html", time.Now().Format("20060102_150405"))
		}
		if err := cb.ExportHTML(path); err != nil {
			return false, err
		}
		fmt.Fprintf(r.out, "Transcript exported to %s\n", path)
		return false, nil

	case "/history":
		limit := 10
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return false, fmt.Errorf("usage: /history [count]")
			}
			limit = n
		}
		list, err := cb.ListHistory(ctx, limit)
		if err != nil {
			return false, err
		}
		if len(list) == 0 {
			fmt.Fprintln(r.out, "No sessions yet.")
			return false, nil
		}
		for _, s := range list {
			fmt.Fprintf(r.out, "%s  %-30s %-18s %3d messages\n",
				s.StartTime.Format("2006-01-02 15:04"), s.Filename, s.DocType.Label(), s.MessageCount)
		}
		return false, nil

	case "/help":
		fmt.Fprintln(r.out, "Available commands:")
		fmt.Fprintln(r.out, "  /upload <path>     - Upload a document (.docx, .xlsx, .xls, .pdf)")
		fmt.Fprintln(r.out, "  /task [type]       - Show or set the task type")
		fmt.Fprintln(r.out, "  /quick [n]         - List quick replies or send quick reply n")
		fmt.Fprintln(r.out, "  /info              - Show details of the loaded document")
		fmt.Fprintln(r.out, "  /new-session       - Close the document and upload another")
		fmt.Fprintln(r.out, "  /back              - Return to the upload screen")
		fmt.Fprintln(r.out, "  /health            - Check the service")
		fmt.Fprintln(r.out, "  /stats             - Show usage counters")
		fmt.Fprintln(r.out, "  /export [path]     - Save the chat as HTML")
		fmt.Fprintln(r.out, "  /history [n]       - List recent sessions")
		fmt.Fprintln(r.out, "  /quit, /exit       - Exit")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (try /help)", parts[0])
	}
}

// notSent reports whether err stopped a query before anything was appended
// to the transcript.
func notSent(err error) bool {
	for _, sentinel := range []error{ErrEmptyQuery, ErrNoSession, ErrBusy, ErrSessionClosed} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
