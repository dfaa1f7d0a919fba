package provider

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	optproxy "github.com/goliatone/go-optproxy"
)

// NestingSeparator splits environment keys into nested provider paths:
// SERVER__PORT=80 becomes {"server": {"port": "80"}}.
const NestingSeparator = "__"

// Dotenv decodes .env documents. Keys are lower-cased and nested on "__".
// Only keys starting with Prefix are kept, with the prefix removed.
type Dotenv struct {
	Prefix string
}

func (Dotenv) Format() Format { return FormatDotenv }

func (d Dotenv) Decode(data []byte) (optproxy.Provider, error) {
	flat, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, err
	}
	return nestFlat(flat, d.Prefix)
}

// FromEnviron builds a provider from the process environment, keeping only
// variables starting with prefix.
func FromEnviron(prefix string) (optproxy.Provider, error) {
	flat := map[string]string{}
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			flat[key] = value
		}
	}
	return nestFlat(flat, prefix)
}

func nestFlat(flat map[string]string, prefix string) (optproxy.Provider, error) {
	out := optproxy.Provider{}
	for key, value := range flat {
		if prefix != "" {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			key = strings.TrimPrefix(key, prefix)
		}
		segments := strings.Split(strings.ToLower(key), NestingSeparator)
		if err := setPath(out, segments, value); err != nil {
			return nil, fmt.Errorf("provider: env key %q: %w", key, err)
		}
	}
	return out, nil
}

func setPath(node map[string]any, segments []string, value string) error {
	for i, segment := range segments {
		if segment == "" {
			return fmt.Errorf("empty path segment")
		}
		if i == len(segments)-1 {
			if _, isMap := node[segment].(map[string]any); isMap {
				return fmt.Errorf("%q is already a mapping", segment)
			}
			node[segment] = value
			return nil
		}
		next, exists := node[segment]
		if !exists {
			child := map[string]any{}
			node[segment] = child
			node = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%q is already a value", segment)
		}
		node = child
	}
	return nil
}
