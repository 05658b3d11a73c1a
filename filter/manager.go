package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/filmforum/filmapi"
)

// Manager keeps named filter presets and applies filters to films
type Manager struct {
	compiler  Compiler
	evaluator Evaluator
	presets   map[string]CompiledFilter
	mu        sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithEvaluator sets a custom evaluator
func WithEvaluator(evaluator Evaluator) ManagerOption {
	return func(m *Manager) {
		m.evaluator = evaluator
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler:  NewExprCompiler(WithCache(100)),
		evaluator: NewConcurrentEvaluator(),
		presets:   make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterPresets compiles and registers named expressions. Nothing is
// registered if any expression fails to compile.
func (m *Manager) RegisterPresets(presets map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(presets))

	for name, expression := range presets {
		f, err := m.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile preset '%s': %w", name, err)
		}
		compiled[name] = f
	}

	m.mu.Lock()
	maps.Copy(m.presets, compiled)
	m.mu.Unlock()

	return nil
}

// Preset returns a registered preset
func (m *Manager) Preset(name string) (CompiledFilter, error) {
	m.mu.RLock()
	f, ok := m.presets[name]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return f, nil
}

// Presets returns the registered preset names in sorted order
func (m *Manager) Presets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.presets))
}

// Resolve picks the filter to use: an explicit expression wins over a preset.
// It returns nil when neither is given.
func (m *Manager) Resolve(expression, preset string) (CompiledFilter, error) {
	switch {
	case expression != "":
		return m.compiler.Compile(expression)
	case preset != "":
		return m.Preset(preset)
	default:
		return nil, nil
	}
}

// Apply narrows films with f. A nil filter keeps every film.
func (m *Manager) Apply(ctx context.Context, f CompiledFilter, films []filmapi.Film) ([]filmapi.Film, error) {
	if f == nil {
		return films, nil
	}
	return m.evaluator.Evaluate(ctx, f, films)
}
