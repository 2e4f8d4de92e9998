package driven

import "context"

// QueryClient sends one question to the query service and returns its
// raw reply.
type QueryClient interface {
	Query(ctx context.Context, question string) (string, error)
}
