package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage questions waiting for an answer",
	Long: `Questions the assistant could not answer are kept until an administrator
answers them. An answered question is published to the shortcut file so it
is answered directly from then on.`,
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending questions, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runQuestionsList,
}

var questionsAnswerCmd = &cobra.Command{
	Use:   "answer <hash> <answer>",
	Short: "Answer a pending question",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runQuestionsAnswer,
}

func init() {
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsAnswerCmd)
	rootCmd.AddCommand(questionsCmd)
}

func runQuestionsList(cmd *cobra.Command, _ []string) error {
	svc, closeFn, err := newQuestions(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise question service: %w", err)
	}
	defer closeFn()

	pending, err := svc.Pending(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list questions: %w", err)
	}

	if len(pending) == 0 {
		cmd.Println("No pending questions.")
		return nil
	}

	cmd.Printf("%d pending questions:\n\n", len(pending))
	for _, q := range pending {
		cmd.Printf("  %s  %s\n", q.Hash, q.CreatedAt.Format("2006-01-02 15:04"))
		cmd.Printf("      %s\n", q.Content)
	}
	return nil
}

// runQuestionsAnswer joins every argument after the hash so that unquoted
// answers work.
func runQuestionsAnswer(cmd *cobra.Command, args []string) error {
	hash := args[0]
	answer := strings.Join(args[1:], " ")

	svc, closeFn, err := newQuestions(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise question service: %w", err)
	}
	defer closeFn()

	if err := svc.AnswerPending(cmd.Context(), hash, answer); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no pending question with hash %s", hash)
		}
		return fmt.Errorf("failed to answer question: %w", err)
	}

	cmd.Printf("Answered %s\n", hash)
	return nil
}
