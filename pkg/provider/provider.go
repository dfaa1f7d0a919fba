// Package provider decodes raw option providers from YAML, JSON and dotenv
// sources and encodes serialized hosts back into those formats.
package provider

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	optproxy "github.com/goliatone/go-optproxy"
)

// Format names a provider encoding.
type Format string

const (
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatDotenv Format = "env"
)

var ErrUnknownFormat = errors.New("provider: unknown format")

// Decoder turns a document into a provider mapping.
type Decoder interface {
	Format() Format
	Decode(data []byte) (optproxy.Provider, error)
}

// Encoder renders a serialized mapping as a document.
type Encoder interface {
	Format() Format
	Encode(value map[string]any) ([]byte, error)
}

// DecoderFor returns the decoder registered for format.
func DecoderFor(format Format) (Decoder, error) {
	switch format {
	case FormatYAML:
		return YAML{}, nil
	case FormatJSON:
		return JSON{}, nil
	case FormatDotenv:
		return Dotenv{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// EncoderFor returns the encoder registered for format. Dotenv output is not
// supported.
func EncoderFor(format Format) (Encoder, error) {
	switch format {
	case FormatYAML:
		return YAML{}, nil
	case FormatJSON:
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatOf guesses the format from a file name.
func FormatOf(path string) (Format, error) {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		return FormatYAML, nil
	case strings.HasSuffix(base, ".json"):
		return FormatJSON, nil
	case base == ".env", strings.HasSuffix(base, ".env"):
		return FormatDotenv, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Decode parses data in format.
func Decode(format Format, data []byte) (optproxy.Provider, error) {
	decoder, err := DecoderFor(format)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(data)
}

// Encode renders value in format.
func Encode(format Format, value map[string]any) ([]byte, error) {
	encoder, err := EncoderFor(format)
	if err != nil {
		return nil, err
	}
	return encoder.Encode(value)
}

// LoadFile reads path and decodes it by extension.
func LoadFile(path string) (optproxy.Provider, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("provider: read %s: %w", path, err)
	}
	out, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("provider: decode %s: %w", path, err)
	}
	return out, nil
}

// SaveHost serializes hp and writes it to path, formatted by extension.
func SaveHost(path string, hp optproxy.HostProvider) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(format, optproxy.Serialize(hp))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func normalize(raw any) (optproxy.Provider, error) {
	if raw == nil {
		return optproxy.Provider{}, nil
	}
	return optproxy.NormalizeMapping(raw)
}
