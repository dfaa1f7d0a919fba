package hydrate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type endpoint struct {
	URL     string        `option:"url"`
	Retries int           `option:"retries"`
	Timeout time.Duration `option:"timeout"`
}

func TestDecodeWeaklyTyped(t *testing.T) {
	decoder := NewDecoder[endpoint]()

	got, err := decoder.Decode(Context{Path: "endpoints", Key: "primary"}, map[string]any{
		"url":     "https://example.org",
		"retries": "3",
		"timeout": "1500ms",
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := endpoint{URL: "https://example.org", Retries: 3, Timeout: 1500 * time.Millisecond}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeStrictRejectsStrings(t *testing.T) {
	decoder := NewDecoder(WithStrictTypes[endpoint]())
	_, err := decoder.Decode(Context{Path: "endpoints"}, map[string]any{"retries": "3"})
	if err == nil {
		t.Fatalf("expected strict decode to fail")
	}
	if !strings.Contains(err.Error(), `decode "endpoints"`) {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestDecodeErrorUnused(t *testing.T) {
	decoder := NewDecoder(WithErrorUnused[endpoint]())
	if _, err := decoder.Decode(Context{}, map[string]any{"url": "x", "extra": 1}); err == nil {
		t.Fatalf("expected unused key error")
	}
}

func TestDecodeHooks(t *testing.T) {
	errInvalid := errors.New("retries must be positive")
	decoder := NewDecoder(
		WithPreHook[endpoint](func(_ Context, raw any) (any, error) {
			if s, ok := raw.(string); ok {
				return map[string]any{"url": s}, nil
			}
			return raw, nil
		}),
		WithPostHook(func(_ Context, e *endpoint) error {
			if e.Retries < 0 {
				return errInvalid
			}
			if e.Retries == 0 {
				e.Retries = 1
			}
			return nil
		}),
	)

	got, err := decoder.Decode(Context{Key: "short"}, "https://short.example")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.URL != "https://short.example" || got.Retries != 1 {
		t.Fatalf("unexpected result %+v", got)
	}

	_, err = decoder.Decode(Context{Key: "bad"}, map[string]any{"retries": -1})
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected post-hook error, got %v", err)
	}
}

func TestDecodeNil(t *testing.T) {
	if _, err := NewDecoder[endpoint]().Decode(Context{Path: "x"}, nil); err == nil {
		t.Fatalf("expected error for nil input")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := endpoint{URL: "https://example.org", Retries: 2, Timeout: time.Second}

	encoded, err := Encode(&in, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := map[string]any{"url": "https://example.org", "retries": 2, "timeout": time.Second}
	if diff := cmp.Diff(want, encoded); diff != "" {
		t.Fatalf("encode mismatch (-want +got):\n%s", diff)
	}

	back, err := NewDecoder[endpoint]().Decode(Context{}, encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != in {
		t.Fatalf("round trip mismatch: %+v", back)
	}

	scalar, err := Encode(42, "")
	if err != nil || scalar != 42 {
		t.Fatalf("expected scalar passthrough, got %v %v", scalar, err)
	}
}
