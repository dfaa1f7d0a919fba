package optproxy

import (
	"fmt"
	"strconv"
)

// ListOption holds an ordered, homogeneous sequence. Each element is
// validated on its own; elements that fail are dropped and the rest keep
// their relative order.
type ListOption[T any] struct {
	*Option[[]any]
	items []T
	owner *Host
}

// List declares a list option validating every element with element. A nil
// element validator accepts elements that already have type T.
func List[T any](host *Host, name string, element Validator[T], opts ...ProxyOption) *ListOption[T] {
	cfg := applyProxyOptions(opts)
	base := newOption(host, KindList, name, cfg.defaultSequence(), SequenceValidator, cfg)
	if element == nil {
		element = AssertValidator[T]()
	}
	lo := &ListOption[T]{
		Option: base,
		items:  make([]T, 0, len(base.Value())),
		owner:  host,
	}
	for i, raw := range base.Value() {
		item, err := guard(func() (T, error) { return element(raw) })
		if err != nil {
			host.report(conversionFailure(base.Path(), base.Group(), base.Name(), strconv.Itoa(i), err))
			continue
		}
		lo.items = append(lo.items, item)
	}
	host.register(lo)
	return lo
}

// Value returns a copy of the retained items.
func (lo *ListOption[T]) Value() []T {
	if lo == nil {
		return nil
	}
	return append([]T(nil), lo.items...)
}

func (lo *ListOption[T]) Len() int {
	if lo == nil {
		return 0
	}
	return len(lo.items)
}

// At returns the item at index i.
func (lo *ListOption[T]) At(i int) (T, bool) {
	if lo == nil || i < 0 || i >= len(lo.items) {
		var zero T
		return zero, false
	}
	return lo.items[i], true
}

// Serialize returns the items as a raw sequence. Items implementing
// Serializer serialize themselves.
func (lo *ListOption[T]) Serialize(host *Host) any {
	out := make([]any, 0, lo.Len())
	if lo == nil {
		return out
	}
	if host == nil {
		host = lo.owner
	}
	for _, item := range lo.items {
		if s, ok := any(item).(Serializer); ok {
			out = append(out, s.Serialize(host))
			continue
		}
		out = append(out, item)
	}
	return out
}

func (lo *ListOption[T]) TypeName() string {
	return fmt.Sprintf("[]%s", typeNameOf[T]())
}
