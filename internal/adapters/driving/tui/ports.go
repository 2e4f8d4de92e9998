// Package tui provides the interactive chat interface for ncdb.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Asker answers end-user questions.
	Asker driving.Asker
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Asker == nil {
		return ErrMissingAsker
	}
	return nil
}
