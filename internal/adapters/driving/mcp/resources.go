package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for ncdb resources.
	uriScheme = "ncdb://"
)

type pendingInfo struct {
	Hash      string    `json:"hash"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         uriScheme + "questions/pending",
		Name:        "pending-questions",
		Description: "Questions the assistant could not answer, oldest first",
		MIMEType:    "application/json",
	}, s.handlePendingResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "questions/{hash}",
		Name:        "pending-question",
		Description: "A single pending question by hash",
		MIMEType:    "text/plain",
	}, s.handleQuestionResource)
}

// handlePendingResource returns the pending question list.
func (s *Server) handlePendingResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := []pendingInfo{}
	if s.ports.Questions != nil {
		pending, err := s.ports.Questions.Pending(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing pending questions: %w", err)
		}
		for _, q := range pending {
			infos = append(infos, pendingInfo{Hash: q.Hash, Question: q.Content, CreatedAt: q.CreatedAt})
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling pending questions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleQuestionResource returns the text of one pending question.
func (s *Server) handleQuestionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Questions == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	hash := extractHash(req.Params.URI)
	if hash == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	pending, err := s.ports.Questions.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending questions: %w", err)
	}
	for _, q := range pending {
		if q.Hash == hash {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     q.Content,
				}},
			}, nil
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// extractHash extracts the hash from a URI like ncdb://questions/{hash}.
func extractHash(uri string) string {
	const prefix = uriScheme + "questions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	hash := strings.TrimPrefix(uri, prefix)
	if hash == "pending" || strings.Contains(hash, "/") {
		return ""
	}
	return hash
}
