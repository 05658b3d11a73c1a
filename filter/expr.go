package filter

import (
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/filmforum/filmapi"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*ExprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *ExprCompiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *ExprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) *ExprCompiler {
	c := &ExprCompiler{
		helperFuncs: make(map[string]any, 16),
	}
	addHelperFunctions(c.helperFuncs)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExprCompiler implements Compiler for expr-based filters
type ExprCompiler struct {
	helperFuncs map[string]any
	cache       *programCache
}

// Compile compiles an expression into an executable filter
func (c *ExprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.get(expression); ok {
			return cached, nil
		}
	}

	// A zero film gives the checker the field types
	env := c.environment(filmapi.Film{})

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &compiledFilter{
		exprFilter: exprFilter{expression: expression, program: program},
		compiler:   c,
	}

	if c.cache != nil {
		c.cache.put(expression, f)
	}

	return f, nil
}

// Clear removes all cached filters
func (c *ExprCompiler) Clear() {
	if c.cache != nil {
		c.cache.clear()
	}
}

// Size returns the number of cached filters
func (c *ExprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.len()
	}
	return 0
}

// compiledFilter binds a program to the compiler whose helpers it uses
type compiledFilter struct {
	exprFilter
	compiler *ExprCompiler
}

// Match evaluates the filter against a film. Runtime errors count as no match.
func (f *compiledFilter) Match(film filmapi.Film) bool {
	result, err := expr.Run(f.program, f.compiler.environment(film))
	if err != nil {
		return false
	}
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// environment builds the variables and helpers visible to an expression
func (c *ExprCompiler) environment(film filmapi.Film) map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+16)
	maps.Copy(env, c.helperFuncs)

	env["hasSeason"] = createHasSeasonFunc(film.Episodes)
	env["hasEpisode"] = createHasEpisodeFunc(film.Episodes)

	env["ID"] = film.ID
	env["Title"] = film.Title
	env["Description"] = film.Description
	env["IsMovie"] = film.IsMovie
	env["IsSeries"] = !film.IsMovie
	env["Episodes"] = film.Episodes
	env["EpisodeCount"] = len(film.Episodes)
	env["Seasons"] = film.Seasons()
	env["Year"] = film.Year()
	env["Length"] = film.Length()

	return env
}

// addHelperFunctions adds the film independent helpers to env. contains,
// startsWith and endsWith are expr operators, so the case-insensitive
// helpers carry a Fold suffix.
func addHelperFunctions(env map[string]any) {
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["hasPrefixFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["hasSuffixFold"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

func createHasSeasonFunc(episodes []filmapi.Episode) func(int) bool {
	seasons := make([]int, 0, len(episodes))
	for _, ep := range episodes {
		seasons = append(seasons, ep.SeasonNumber)
	}
	return func(season int) bool {
		return slices.Contains(seasons, season)
	}
}

func createHasEpisodeFunc(episodes []filmapi.Episode) func(int, int) bool {
	return func(season, episode int) bool {
		return slices.ContainsFunc(episodes, func(ep filmapi.Episode) bool {
			return ep.SeasonNumber == season && ep.EpisodeNumber == episode
		})
	}
}
