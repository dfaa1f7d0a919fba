package optproxy

import json "github.com/goccy/go-json"

// Trace captures provenance for a path looked up across the layers of a
// Stack.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how one scope contributed to a traced path.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Path       string `json:"path"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Effective returns the strongest layer holding the path.
func (t Trace) Effective() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	var trace Trace
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return trace, nil
}
