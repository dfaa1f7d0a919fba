// Package wrap provides ready-made factories for wrapper-group options.
package wrap

import (
	"fmt"

	optproxy "github.com/goliatone/go-optproxy"
	"github.com/goliatone/go-optproxy/internal/hydrate"
)

var encode = hydrate.Encode

// Object holds one decoded wrapper entry and serializes it back into a
// mapping keyed by struct tags.
type Object[T any] struct {
	Value T
	tag   string
	raw   any
}

// Serialize implements optproxy.Serializer. When Value cannot be encoded back
// into a mapping it returns the entry as it was read from the provider.
func (o *Object[T]) Serialize(*optproxy.Host) any {
	if o == nil {
		return nil
	}
	out, err := encode(o.Value, o.tag)
	if err != nil {
		return o.raw
	}
	return out
}

type config[T any] struct {
	tag  string
	opts []hydrate.DecoderOption[T]
}

// Option configures a struct factory.
type Option[T any] func(*config[T])

// WithTagName reads field names from tag instead of `option`.
func WithTagName[T any](tag string) Option[T] {
	return func(cfg *config[T]) {
		cfg.tag = tag
		cfg.opts = append(cfg.opts, hydrate.WithTagName[T](tag))
	}
}

// WithStrictTypes rejects values needing weak conversion.
func WithStrictTypes[T any]() Option[T] {
	return func(cfg *config[T]) {
		cfg.opts = append(cfg.opts, hydrate.WithStrictTypes[T]())
	}
}

// WithErrorUnused rejects entries carrying unknown keys.
func WithErrorUnused[T any]() Option[T] {
	return func(cfg *config[T]) {
		cfg.opts = append(cfg.opts, hydrate.WithErrorUnused[T]())
	}
}

// WithValidate runs fn on every decoded value; a non-nil error drops the
// entry.
func WithValidate[T any](fn func(*T) error) Option[T] {
	return func(cfg *config[T]) {
		if fn == nil {
			return
		}
		cfg.opts = append(cfg.opts, hydrate.WithPostHook(func(_ hydrate.Context, value *T) error {
			return fn(value)
		}))
	}
}

// Struct returns a factory decoding each mapping entry into T.
func Struct[T any](opts ...Option[T]) optproxy.Factory[*Object[T]] {
	cfg := config[T]{tag: hydrate.DefaultTagName}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	decoder := hydrate.NewDecoder(cfg.opts...)
	return func(raw any) (*Object[T], error) {
		value, err := decoder.Decode(hydrate.Context{}, raw)
		if err != nil {
			return nil, err
		}
		return &Object[T]{Value: value, tag: cfg.tag, raw: raw}, nil
	}
}

// Value wraps a scalar entry. It serializes to the validated value.
type Value[T any] struct {
	V T
}

// Serialize implements optproxy.Serializer.
func (v Value[T]) Serialize(*optproxy.Host) any {
	return v.V
}

// Scalar returns a factory validating each entry with validator.
func Scalar[T any](validator optproxy.Validator[T]) optproxy.Factory[Value[T]] {
	return func(raw any) (Value[T], error) {
		if validator == nil {
			return Value[T]{}, fmt.Errorf("wrap: nil validator")
		}
		value, err := validator(raw)
		if err != nil {
			return Value[T]{}, err
		}
		return Value[T]{V: value}, nil
	}
}
