package layering

import "strings"

// Lookup walks a dotted path through nested mappings. An empty path returns
// the mapping itself.
func Lookup(m map[string]any, path string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if path == "" {
		return m, true
	}
	var current any = m
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
