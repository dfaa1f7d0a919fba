package optproxy

// SerializeOptionsFrom collects the serialized value of every option on the
// host tagged with group, keyed by option name. Group options recurse through
// their own Serialize, so the result mirrors the provider's nested shape. The
// returned map is never nil.
func SerializeOptionsFrom(hp HostProvider, group string) map[string]any {
	return serializeOptions(hostOf(hp), group, map[string]bool{})
}

// Serialize collects the top-level options of the host.
func Serialize(hp HostProvider) map[string]any {
	return SerializeOptionsFrom(hp, RootGroup)
}

// groupSerializer is implemented by options that recurse into a group tag.
// A group reached again while its tag is being serialized yields an empty
// mapping instead of recursing.
type groupSerializer interface {
	serializeGroup(host *Host, visiting map[string]bool) any
}

func serializeOptions(host *Host, group string, visiting map[string]bool) map[string]any {
	out := map[string]any{}
	if host == nil {
		return out
	}
	visiting[group] = true
	defer delete(visiting, group)

	for _, proxy := range host.Options() {
		if proxy.Group() != group {
			continue
		}
		if nested, ok := proxy.(groupSerializer); ok {
			out[proxy.Name()] = nested.serializeGroup(host, visiting)
			continue
		}
		out[proxy.Name()] = proxy.Serialize(host)
	}
	return out
}
