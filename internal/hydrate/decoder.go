// Package hydrate decodes raw provider values into typed structs and back,
// using mapstructure.
package hydrate

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// DefaultTagName is the struct tag consulted for field names.
const DefaultTagName = "option"

// Context identifies the provider entry being decoded.
type Context struct {
	Path string
	Key  string
}

func (c Context) label() string {
	if c.Key == "" {
		return c.Path
	}
	return c.Path + "[" + c.Key + "]"
}

// PreHook lets callers normalise the raw value before decoding.
type PreHook func(Context, any) (any, error)

// PostHook lets callers adjust or validate the hydrated value after decoding.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts raw provider values into T.
type Decoder[T any] struct {
	preHooks    []PreHook
	postHooks   []PostHook[T]
	decodeHooks []mapstructure.DecodeHookFunc
	tagName     string
	weak        bool
	errorUnused bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithTagName overrides the struct tag used for field names.
func WithTagName[T any](tag string) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if tag != "" {
			d.tagName = tag
		}
	}
}

// WithStrictTypes disables weak typing, so "8080" no longer decodes into an
// int field.
func WithStrictTypes[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.weak = false
	}
}

// WithErrorUnused fails decoding when the input has keys without a field.
func WithErrorUnused[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.errorUnused = true
	}
}

// WithDecodeHook appends a mapstructure decode hook.
func WithDecodeHook[T any](hook mapstructure.DecodeHookFunc) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.decodeHooks = append(d.decodeHooks, hook)
		}
	}
}

// NewDecoder returns a weakly typed decoder understanding duration strings.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{
		tagName: DefaultTagName,
		weak:    true,
		decodeHooks: []mapstructure.DecodeHookFunc{
			mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts raw into T applying the configured hooks.
func (d *Decoder[T]) Decode(ctx Context, raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, fmt.Errorf("hydrate: value is nil for %q", ctx.label())
	}

	current := raw
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(d.decodeHooks...),
		WeaklyTypedInput: d.weak,
		ErrorUnused:      d.errorUnused,
		TagName:          d.tagName,
		Result:           &result,
	})
	if err != nil {
		return zero, fmt.Errorf("hydrate: configure decoder: %w", err)
	}
	if err := decoder.Decode(current); err != nil {
		return zero, fmt.Errorf("hydrate: decode %q: %w", ctx.label(), err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.label(), err)
		}
	}
	return result, nil
}

// Encode converts a struct (or pointer to one) back into a mapping keyed by
// tag names. Non-struct values are returned unchanged.
func Encode(value any, tagName string) (any, error) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return value, nil
	}
	if tagName == "" {
		tagName = DefaultTagName
	}
	out := map[string]any{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  &out,
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate: configure encoder: %w", err)
	}
	if err := decoder.Decode(rv.Interface()); err != nil {
		return nil, fmt.Errorf("hydrate: encode %s: %w", rv.Type(), err)
	}
	return out, nil
}
