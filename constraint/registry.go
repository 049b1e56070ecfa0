package constraint

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

var (
	// ErrUnknown is returned when a template references a constraint name
	// that is not registered.
	ErrUnknown = errors.New("constraint: unknown constraint")

	// ErrInvalidArgs is returned when a constraint argument list cannot be
	// parsed or is out of range.
	ErrInvalidArgs = errors.New("constraint: invalid arguments")

	// ErrInvalidName is returned when a constraint name is empty or contains
	// characters other than letters, digits, '-' and '_'.
	ErrInvalidName = errors.New("constraint: invalid name")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("constraint: name already registered")

	// ErrSealed is returned by Register once the registry has been sealed.
	ErrSealed = errors.New("constraint: registry is sealed")

	// ErrNilFactory is returned when Register is called with a nil factory.
	ErrNilFactory = errors.New("constraint: nil factory")
)

// Matcher validates a single raw path segment value.
// Implementations must be pure and safe for concurrent use.
type Matcher interface {
	Match(value string) bool
	String() string
}

// Factory builds a Matcher from the raw argument string of a reference,
// i.e. the text between the parentheses of "name(args)". Factories are
// invoked once per route at registration time.
type Factory func(args string) (Matcher, error)

// Registry maps constraint names to factories. Names are case-insensitive.
//
// Register is not safe for concurrent use and is meant to be called during
// startup only. After Seal the registry is read-only and may be shared by
// any number of goroutines.
type Registry struct {
	factories map[string]Factory
	sealed    atomic.Bool
}

// NewRegistry returns a registry pre-populated with the built-in constraints.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for name, f := range builtins {
		r.factories[name] = f
	}

	return r
}

// NewEmptyRegistry returns a registry without any constraints.
func NewEmptyRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if r.sealed.Load() {
		return fmt.Errorf("%w: cannot register %q", ErrSealed, name)
	}

	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if f == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, name)
	}

	key := strings.ToLower(name)
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}

	r.factories[key] = f

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Resolve returns the factory registered under name.
func (r *Registry) Resolve(name string) (Factory, bool) {
	f, ok := r.factories[strings.ToLower(name)]
	return f, ok
}

// Build resolves ref and invokes its factory.
func (r *Registry) Build(ref Ref) (Matcher, error) {
	f, ok := r.Resolve(ref.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, ref.Name)
	}

	m, err := f(ref.Args)
	if err != nil {
		return nil, fmt.Errorf("constraint %s: %w", ref, err)
	}

	return m, nil
}

// BuildAll parses a chained reference list such as "int:range(1,9)" and
// builds every matcher in it.
func (r *Registry) BuildAll(s string) ([]Matcher, error) {
	refs, err := ParseRefs(s)
	if err != nil {
		return nil, err
	}

	matchers := make([]Matcher, 0, len(refs))
	for _, ref := range refs {
		m, err := r.Build(ref)
		if err != nil {
			return nil, err
		}

		matchers = append(matchers, m)
	}

	return matchers, nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func validName(name string) bool {
	if name == "" {
		return false
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '_'):
		default:
			return false
		}
	}

	return true
}
