package provider

import (
	json "github.com/goccy/go-json"

	optproxy "github.com/goliatone/go-optproxy"
)

// JSON decodes and encodes JSON objects. Numbers decode as float64.
type JSON struct {
	Indent string
}

func (JSON) Format() Format { return FormatJSON }

func (JSON) Decode(data []byte) (optproxy.Provider, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return normalize(raw)
}

func (j JSON) Encode(value map[string]any) ([]byte, error) {
	if j.Indent != "" {
		return json.MarshalIndent(value, "", j.Indent)
	}
	return json.Marshal(value)
}
