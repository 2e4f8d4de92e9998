package mcp

import (
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Asker answers end-user questions.
	Asker driving.Asker

	// Questions lists questions awaiting a human answer. Optional.
	Questions driving.QuestionAdmin
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Asker == nil {
		return ErrMissingAsker
	}
	return nil
}
