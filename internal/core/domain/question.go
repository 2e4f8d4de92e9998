package domain

import "time"

// PendingQuestion is a question the service could not answer, waiting for
// a human answer.
type PendingQuestion struct {
	// Hash is the hex MD5 of the question text.
	Hash string

	// Content is the question as asked.
	Content string

	// CreatedAt is when the question was first recorded.
	CreatedAt time.Time
}

// Shortcut is a curated exact-match question and its answer.
type Shortcut struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
