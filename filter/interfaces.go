package filter

import (
	"context"

	"github.com/s0up4200/filmforum/filmapi"
)

// Filter decides whether a film is kept
type Filter interface {
	// Match checks if a film satisfies the filter
	Match(film filmapi.Film) bool
}

// CompiledFilter is a filter expression ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator applies a filter to a list of films
type Evaluator interface {
	// Evaluate returns the matching films in their original order
	Evaluate(ctx context.Context, filter CompiledFilter, films []filmapi.Film) ([]filmapi.Film, error)
}
