// Package layering merges nested provider mappings ordered by precedence.
package layering

// MergeLayers composes mappings ordered from strongest to weakest and returns
// a new mapping. Nested mappings are merged key by key; any other value from a
// stronger layer, sequences included, replaces the weaker one outright. The
// inputs are never modified.
func MergeLayers(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return nil
	}
	merged := Clone(layers[len(layers)-1])
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeMaps(layers[i], merged)
	}
	return merged
}

func mergeMaps(strong, weak map[string]any) map[string]any {
	if strong == nil {
		return weak
	}
	out := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		out[key] = value
	}
	for key, value := range strong {
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := out[key].(map[string]any)
		if strongIsMap && weakIsMap {
			out[key] = mergeMaps(strongMap, weakMap)
			continue
		}
		out[key] = cloneValue(value)
	}
	return out
}

// Clone deep copies nested mappings and sequences. Other values are shared.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return Clone(typed)
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
