package optproxy

import (
	"fmt"
	"maps"
	"sort"
)

// EnumKey is implemented by enumerated types used as enum-group keys.
// EnumRaw returns the raw provider key the member was parsed from.
type EnumKey interface {
	comparable
	EnumRaw() string
}

// EnumParser converts a raw mapping key into an enum member.
type EnumParser[E EnumKey] func(raw string) (E, error)

// EnumGroupOption is a group whose keys are remapped through an enumerated
// type. Keys that do not parse are dropped; values are kept as-is.
type EnumGroupOption[E EnumKey] struct {
	*Option[Provider]
	entries map[E]any
	keys    []E
}

// EnumGroup declares an enum-group option.
func EnumGroup[E EnumKey](host *Host, name string, parse EnumParser[E], opts ...ProxyOption) *EnumGroupOption[E] {
	cfg := applyProxyOptions(opts)
	base := newOption(host, KindEnumGroup, name, cfg.defaultMapping(), MappingValidator, cfg)
	eg := &EnumGroupOption[E]{
		Option:  base,
		entries: make(map[E]any),
	}

	raw := base.Value()
	for _, key := range sortedKeys(raw) {
		member, err := guard(func() (E, error) { return parse(key) })
		if err != nil {
			host.report(conversionFailure(base.Path(), base.Group(), base.Name(), key, err))
			continue
		}
		if _, seen := eg.entries[member]; !seen {
			eg.keys = append(eg.keys, member)
		}
		eg.entries[member] = raw[key]
	}
	sort.SliceStable(eg.keys, func(i, j int) bool {
		return eg.keys[i].EnumRaw() < eg.keys[j].EnumRaw()
	})

	host.register(eg)
	return eg
}

// Value returns a copy of the converted entries.
func (eg *EnumGroupOption[E]) Value() map[E]any {
	if eg == nil {
		return map[E]any{}
	}
	return maps.Clone(eg.entries)
}

// Has reports whether member survived conversion.
func (eg *EnumGroupOption[E]) Has(member E) bool {
	if eg == nil {
		return false
	}
	_, ok := eg.entries[member]
	return ok
}

// Get returns the value stored for member.
func (eg *EnumGroupOption[E]) Get(member E) (any, bool) {
	if eg == nil {
		return nil, false
	}
	value, ok := eg.entries[member]
	return value, ok
}

// Keys returns the retained members ordered by raw key.
func (eg *EnumGroupOption[E]) Keys() []E {
	if eg == nil {
		return nil
	}
	return append([]E(nil), eg.keys...)
}

func (eg *EnumGroupOption[E]) Len() int {
	if eg == nil {
		return 0
	}
	return len(eg.entries)
}

// Serialize maps every member back to its raw key.
func (eg *EnumGroupOption[E]) Serialize(*Host) any {
	out := make(map[string]any, eg.Len())
	if eg == nil {
		return out
	}
	for _, member := range eg.keys {
		out[member.EnumRaw()] = eg.entries[member]
	}
	return out
}

func (eg *EnumGroupOption[E]) TypeName() string {
	return fmt.Sprintf("map[%s]any", typeNameOf[E]())
}
