package optproxy

import (
	"fmt"
	"reflect"
	"time"
)

// Provider is the raw, untyped mapping options read their values from.
type Provider = map[string]any

// RootGroup tags options that live in the top-level scope of their host.
const RootGroup = ""

// Kind identifies the proxy variant backing an option.
type Kind string

const (
	KindCustom       Kind = "custom"
	KindInt          Kind = "int"
	KindFloat        Kind = "float"
	KindString       Kind = "string"
	KindBool         Kind = "bool"
	KindDuration     Kind = "duration"
	KindGroup        Kind = "group"
	KindEnumGroup    Kind = "enum_group"
	KindWrapperGroup Kind = "wrapper_group"
	KindList         Kind = "list"
)

// Proxy is the contract every option kind satisfies once registered on a
// Host. Serialization scans hosts through this interface only.
type Proxy interface {
	Name() string
	Group() string
	Loaded() bool
	Changed() bool
	Serialize(host *Host) any
}

// Serializer converts a wrapped domain object back into its raw value.
type Serializer interface {
	Serialize(host *Host) any
}

// HostProvider is implemented by anything that owns a Host. Structs that embed
// *Host satisfy it automatically.
type HostProvider interface {
	OptionHost() *Host
}

// Validator converts a raw provider value into the wrapped type.
type Validator[T any] func(raw any) (T, error)

// Factory builds a wrapped domain object from one raw mapping entry.
type Factory[W any] func(raw any) (W, error)

// GroupScope is the view child options need from their parent group.
type GroupScope interface {
	GroupName() string
	Path() string
	Value() Provider
}

type describable interface {
	Path() string
	Kind() Kind
	TypeName() string
	DefaultValue() any
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Path names the option under evaluation, empty for host-level rules.
	Path string
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx RuleContext) pathLabel() string {
	if ctx.Path != "" {
		return ctx.Path
	}
	return "host"
}

func (ctx RuleContext) snapshotMap() map[string]any {
	if m, ok := ctx.Snapshot.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

func typeNameOf[T any]() string {
	t := reflect.TypeFor[T]()
	if t == nil {
		return "any"
	}
	return t.String()
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return fmt.Sprintf("%s.%s", prefix, segment)
}
