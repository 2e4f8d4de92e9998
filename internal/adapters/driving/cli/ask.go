package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
)

// isTerminal reports whether stdin is interactive.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a question",
	Long: `Sends a question to the running query service and prints the answer.

Curated answers from the shortcut file are returned without contacting the
service. Questions the service cannot answer are recorded for an
administrator (see "ncdb questions").

With no argument on a terminal, opens the interactive chat. With no
argument and piped input, asks one question per input line.

Chat controls:
  Enter      - Ask
  PgUp/PgDn  - Scroll
  Ctrl+L     - Clear
  Esc        - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := newQuestions(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise question service: %w", err)
	}
	defer closeFn()

	switch {
	case len(args) == 1:
		answer, err := svc.Ask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	case isTerminal():
		return runChat(cmd, svc)
	default:
		return askLines(cmd, svc, cmd.InOrStdin())
	}
}

// askLines asks each non-blank line of r and prints the answers in order.
func askLines(cmd *cobra.Command, svc driving.Asker, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		answer, err := svc.Ask(cmd.Context(), q)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
	}
	return scanner.Err()
}

func runChat(cmd *cobra.Command, svc driving.Asker) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{Asker: svc})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
