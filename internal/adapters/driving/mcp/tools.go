package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a question about Cadillac V16 cars"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the New Cadillac Database assistant a question about Cadillac V16 cars",
	}, s.handleAsk)

	if s.ports.Questions != nil {
		mcp.AddTool(s.mcp, &mcp.Tool{
			Name:        "answer_pending",
			Description: "Publish an answer for a pending question; later askers get it directly",
		}, s.handleAnswerPending)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, domain.ErrEmptyQuery
	}

	answer, err := s.ports.Asker.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}

// AnswerPendingInput is the input schema for the answer_pending tool.
type AnswerPendingInput struct {
	Hash   string `json:"hash" jsonschema:"hash of the pending question"`
	Answer string `json:"answer" jsonschema:"the answer to publish"`
}

// AnswerPendingOutput is the output schema for the answer_pending tool.
type AnswerPendingOutput struct {
	Hash string `json:"hash"`
}

func (s *Server) handleAnswerPending(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnswerPendingInput,
) (*mcp.CallToolResult, AnswerPendingOutput, error) {
	if input.Hash == "" || strings.TrimSpace(input.Answer) == "" {
		return nil, AnswerPendingOutput{}, fmt.Errorf("hash and answer are required: %w", domain.ErrInvalidInput)
	}
	if err := s.ports.Questions.AnswerPending(ctx, input.Hash, input.Answer); err != nil {
		return nil, AnswerPendingOutput{}, err
	}
	return nil, AnswerPendingOutput{Hash: input.Hash}, nil
}
