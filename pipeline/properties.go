package pipeline

import (
	"context"
	"net/http"
	"slices"
)

// Properties is the per-request key/value store shared by the handlers of
// one request. It is not safe for concurrent use; a request is processed by
// one goroutine at a time. All methods are no-ops on a nil receiver.
type Properties struct {
	values map[string]any
}

// NewProperties returns an empty store.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}

	v, ok := p.values[key]
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (p *Properties) Set(key string, v any) {
	if p == nil {
		return
	}

	p.values[key] = v
}

// Delete removes key.
func (p *Properties) Delete(key string) {
	if p == nil {
		return
	}

	delete(p.values, key)
}

// Len returns the number of stored keys.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}

	return len(p.values)
}

// Keys returns the stored keys in sorted order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}

	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Value returns the value under key when it is present and of type T.
func Value[T any](p *Properties, key string) (T, bool) {
	v, ok := p.Get(key)
	if !ok {
		var zero T
		return zero, false
	}

	t, ok := v.(T)
	return t, ok
}

type propertiesKey struct{}

// WithProperties returns a copy of ctx carrying p.
func WithProperties(ctx context.Context, p *Properties) context.Context {
	return context.WithValue(ctx, propertiesKey{}, p)
}

// FromContext returns the Properties attached by the pipeline, or nil when
// the request did not go through one.
func FromContext(ctx context.Context) *Properties {
	p, _ := ctx.Value(propertiesKey{}).(*Properties)
	return p
}

// Ensure returns the Properties of r. When r did not go through a pipeline,
// a new store is attached and the derived request is returned.
func Ensure(r *http.Request) (*Properties, *http.Request) {
	if p := FromContext(r.Context()); p != nil {
		return p, r
	}

	p := NewProperties()

	return p, r.WithContext(WithProperties(r.Context(), p))
}
