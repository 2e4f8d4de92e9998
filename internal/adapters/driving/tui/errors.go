package tui

import "errors"

// ErrMissingAsker is returned when the question service is not provided.
var ErrMissingAsker = errors.New("tui: question service is required")
