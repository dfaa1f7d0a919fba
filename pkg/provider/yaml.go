package provider

import (
	"github.com/goccy/go-yaml"

	optproxy "github.com/goliatone/go-optproxy"
)

// YAML decodes and encodes YAML documents. Non-string mapping keys, such as
// the integer keys of an enum group, are converted to strings.
type YAML struct{}

func (YAML) Format() Format { return FormatYAML }

func (YAML) Decode(data []byte) (optproxy.Provider, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return normalize(raw)
}

func (YAML) Encode(value map[string]any) ([]byte, error) {
	return yaml.Marshal(value)
}
