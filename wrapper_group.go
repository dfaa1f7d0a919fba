package optproxy

import (
	"fmt"
	"maps"
)

// WrapperGroupOption is a group whose values are converted into domain
// objects by an injected factory. Serialization delegates to the objects, so
// round-trip fidelity depends on the factory and Serialize being inverses.
type WrapperGroupOption[W Serializer] struct {
	*Option[Provider]
	entries map[string]W
	keys    []string
	owner   *Host
}

// WrapperGroup declares a wrapper-group option.
func WrapperGroup[W Serializer](host *Host, name string, factory Factory[W], opts ...ProxyOption) *WrapperGroupOption[W] {
	cfg := applyProxyOptions(opts)
	base := newOption(host, KindWrapperGroup, name, cfg.defaultMapping(), MappingValidator, cfg)
	wg := &WrapperGroupOption[W]{
		Option:  base,
		entries: make(map[string]W),
		owner:   host,
	}

	raw := base.Value()
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		wrapped, err := guard(func() (W, error) { return factory(value) })
		if err != nil {
			host.report(conversionFailure(base.Path(), base.Group(), base.Name(), key, err))
			continue
		}
		wg.entries[key] = wrapped
		wg.keys = append(wg.keys, key)
	}

	host.register(wg)
	return wg
}

// Value returns a copy of the wrapped entries.
func (wg *WrapperGroupOption[W]) Value() map[string]W {
	if wg == nil {
		return map[string]W{}
	}
	return maps.Clone(wg.entries)
}

func (wg *WrapperGroupOption[W]) Has(key string) bool {
	if wg == nil {
		return false
	}
	_, ok := wg.entries[key]
	return ok
}

func (wg *WrapperGroupOption[W]) Get(key string) (W, bool) {
	if wg == nil {
		var zero W
		return zero, false
	}
	value, ok := wg.entries[key]
	return value, ok
}

// Keys returns the retained keys in sorted order.
func (wg *WrapperGroupOption[W]) Keys() []string {
	if wg == nil {
		return nil
	}
	return append([]string(nil), wg.keys...)
}

func (wg *WrapperGroupOption[W]) Len() int {
	if wg == nil {
		return 0
	}
	return len(wg.entries)
}

// Serialize emits each wrapped object's own serialized form.
func (wg *WrapperGroupOption[W]) Serialize(host *Host) any {
	out := make(map[string]any, wg.Len())
	if wg == nil {
		return out
	}
	if host == nil {
		host = wg.owner
	}
	for _, key := range wg.keys {
		out[key] = wg.entries[key].Serialize(host)
	}
	return out
}

func (wg *WrapperGroupOption[W]) TypeName() string {
	return fmt.Sprintf("map[string]%s", typeNameOf[W]())
}
