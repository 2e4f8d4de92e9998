package mcp

import "errors"

// ErrMissingAsker means NewServer was given no way to answer questions.
var ErrMissingAsker = errors.New("mcp: an asker is required")
