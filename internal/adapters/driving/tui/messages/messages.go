// Package messages defines Bubbletea message types for the chat TUI.
package messages

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries the reply to a submitted question.
type AnswerReceived struct {
	Question string
	Answer   string
	Err      error
}

// Role identifies who wrote a transcript entry.
type Role int

const (
	// RoleUser is a question typed by the user.
	RoleUser Role = iota
	// RoleAssistant is a reply from the question service.
	RoleAssistant
)

// String returns the label shown in the transcript.
func (r Role) String() string {
	if r == RoleUser {
		return "You"
	}
	return "NCDB"
}
