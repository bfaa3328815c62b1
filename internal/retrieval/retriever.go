package retrieval

import "context"

// Passage is one ranked piece of reference text returned for a query.
type Passage struct {
	Question string
	Content  string
	Focus    string
	Score    float64
}

// Retriever returns reference passages relevant to a query, best first.
// An empty result set is not an error; callers decide how to degrade.
type Retriever interface {
	Query(ctx context.Context, query string) ([]Passage, error)
}
