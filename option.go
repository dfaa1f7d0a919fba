package optproxy

import (
	"cmp"
	"fmt"
	"reflect"
	"time"
)

// Option is a typed proxy over one provider key. The value is resolved once,
// at construction; there is no lazy refresh.
type Option[T any] struct {
	value    T
	def      T
	name     string
	group    string
	path     string
	kind     Kind
	provider Provider
	loaded   bool
	changed  bool
}

// NewOption declares an option of any type on host. A nil validator accepts
// raw values that already have type T.
func NewOption[T any](host *Host, name string, def T, validator Validator[T], opts ...ProxyOption) *Option[T] {
	o := newOption(host, KindCustom, name, def, validator, applyProxyOptions(opts))
	host.register(o)
	return o
}

func newOption[T any](host *Host, kind Kind, name string, def T, validator Validator[T], cfg proxyConfig) *Option[T] {
	b := cfg.bind(host)
	o := &Option[T]{
		value:    def,
		def:      def,
		name:     name,
		group:    b.group,
		path:     joinPath(b.prefix, name),
		kind:     kind,
		provider: b.provider,
	}
	if validator == nil {
		validator = AssertValidator[T]()
	}

	start := time.Now()
	diag, failed := o.load(host, validator, cfg.constraints)
	event := LoadEvent{
		HostID:   host.ID(),
		Path:     o.path,
		Kind:     kind,
		Loaded:   o.loaded,
		Duration: time.Since(start),
	}
	if failed {
		event.Err = diag
		host.report(diag)
	}
	host.loadLogger().LogLoad(event)
	return o
}

func (o *Option[T]) load(host *Host, validator Validator[T], constraints []string) (Diagnostic, bool) {
	raw, ok := o.provider[o.name]
	if !ok {
		return missingKey(o.path, o.group, o.name), true
	}
	value, err := guard(func() (T, error) { return validator(raw) })
	if err != nil {
		return validationFailure(o.path, o.group, o.name, err), true
	}
	for _, rule := range constraints {
		if err := host.checkConstraint(rule, o.ruleContext(value)); err != nil {
			return validationFailure(o.path, o.group, o.name, err), true
		}
	}
	o.value = value
	o.loaded = true
	return Diagnostic{}, false
}

func (o *Option[T]) ruleContext(value T) RuleContext {
	return RuleContext{
		Path: o.path,
		Snapshot: map[string]any{
			"value":   value,
			"default": o.def,
			"name":    o.name,
			"group":   o.group,
			"path":    o.path,
		},
	}
}

// Value returns the current wrapped value.
func (o *Option[T]) Value() T {
	if o == nil {
		var zero T
		return zero
	}
	return o.value
}

// Default returns the fallback value.
func (o *Option[T]) Default() T {
	if o == nil {
		var zero T
		return zero
	}
	return o.def
}

func (o *Option[T]) Name() string {
	if o == nil {
		return ""
	}
	return o.name
}

// Group returns the tag of the scope this option belongs to.
func (o *Option[T]) Group() string {
	if o == nil {
		return RootGroup
	}
	return o.group
}

// Path returns the dotted provider path, used in diagnostics.
func (o *Option[T]) Path() string {
	if o == nil {
		return ""
	}
	return o.path
}

func (o *Option[T]) Kind() Kind {
	if o == nil {
		return KindCustom
	}
	return o.kind
}

// Provider returns the mapping the option was read from.
func (o *Option[T]) Provider() Provider {
	if o == nil {
		return nil
	}
	return o.provider
}

// Loaded reports whether the key was present and the value validated.
func (o *Option[T]) Loaded() bool {
	return o != nil && o.loaded
}

// Changed is reserved for mutation tracking. Options have no setters, so it
// always reports false.
func (o *Option[T]) Changed() bool {
	return o != nil && o.changed
}

// Serialize returns the current value as-is.
func (o *Option[T]) Serialize(*Host) any {
	return o.Value()
}

// Equal reports whether the wrapped value deeply equals v.
func (o *Option[T]) Equal(v T) bool {
	return reflect.DeepEqual(o.Value(), v)
}

func (o *Option[T]) String() string {
	return fmt.Sprint(o.Value())
}

func (o *Option[T]) TypeName() string {
	return typeNameOf[T]()
}

func (o *Option[T]) DefaultValue() any {
	return o.Default()
}

// Compare orders the wrapped value against v like cmp.Compare.
func Compare[T cmp.Ordered](o *Option[T], v T) int {
	return cmp.Compare(o.Value(), v)
}
