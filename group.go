package optproxy

import (
	"maps"
	"strconv"
	"strings"
)

// GroupOption wraps a nested mapping. Child options declared with InGroup read
// from it and are tagged with its group name, so serializing the group
// reproduces the nested shape of the original provider.
type GroupOption struct {
	*Option[Provider]
	groupName string
	// lineage holds the tags of this group and of every enclosing scope.
	lineage map[string]struct{}
	owner   *Host
}

// Group declares a group option. Its value defaults to an empty mapping.
//
// The tag handed to children defaults to the parent's tag joined with the
// escaped name, so a top level key "a.b" and a key "b" nested in "a" get
// distinct tags. A custom name already used by an enclosing group falls back
// to the default.
func Group(host *Host, name string, opts ...ProxyOption) *GroupOption {
	cfg := applyProxyOptions(opts)
	base := newOption(host, KindGroup, name, cfg.defaultMapping(), MappingValidator, cfg)

	lineage := map[string]struct{}{RootGroup: {}, base.Group(): {}}
	if parent, ok := cfg.parent.(*GroupOption); ok && parent != nil {
		maps.Copy(lineage, parent.lineage)
	} else if cfg.parent != nil {
		lineage[cfg.parent.GroupName()] = struct{}{}
	}

	tag := cfg.groupName
	if _, taken := lineage[tag]; taken {
		fallback := joinPath(base.Group(), escapeSegment(name))
		tag = fallback
		for i := 2; ; i++ {
			if _, taken := lineage[tag]; !taken {
				break
			}
			tag = fallback + "#" + strconv.Itoa(i)
		}
	}
	lineage[tag] = struct{}{}

	g := &GroupOption{
		Option:    base,
		groupName: tag,
		lineage:   lineage,
		owner:     host,
	}
	host.register(g)
	return g
}

// GroupName returns the tag carried by this group's children.
func (g *GroupOption) GroupName() string {
	if g == nil {
		return ""
	}
	return g.groupName
}

// Value returns the wrapped mapping children read from.
func (g *GroupOption) Value() Provider {
	if g == nil || g.Option == nil {
		return Provider{}
	}
	return g.Option.Value()
}

func (g *GroupOption) Path() string {
	if g == nil || g.Option == nil {
		return ""
	}
	return g.Option.Path()
}

// Serialize collects the children tagged with this group from host, falling
// back to the host the group was declared on.
func (g *GroupOption) Serialize(host *Host) any {
	return g.serializeGroup(host, map[string]bool{})
}

func (g *GroupOption) serializeGroup(host *Host, visiting map[string]bool) any {
	if g == nil {
		return map[string]any{}
	}
	if host == nil {
		host = g.owner
	}
	if visiting[g.groupName] {
		return map[string]any{}
	}
	return serializeOptions(host, g.groupName, visiting)
}

// Options returns the children declared in this group, in declaration order.
func (g *GroupOption) Options() []Proxy {
	if g == nil {
		return nil
	}
	var out []Proxy
	for _, proxy := range g.owner.Options() {
		if proxy.Group() == g.groupName {
			out = append(out, proxy)
		}
	}
	return out
}

var segmentEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`)

func escapeSegment(name string) string {
	return segmentEscaper.Replace(name)
}
