package optproxy

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type letter int

const (
	letterA letter = 1
	letterB letter = 2
	letterC letter = 3
)

func (l letter) EnumRaw() string {
	return strconv.Itoa(int(l))
}

func parseLetter(raw string) (letter, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	switch l := letter(n); l {
	case letterA, letterB, letterC:
		return l, nil
	}
	return 0, fmt.Errorf("unknown letter %d", n)
}

func TestEnumGroupFiltersUnknownKeys(t *testing.T) {
	host := NewHost(Provider{
		"letters": map[int]any{1: "x", 2: "y", 9: "z"},
	})
	letters := EnumGroup(host, "letters", parseLetter)

	if !letters.Has(letterA) || !letters.Has(letterB) || letters.Has(letterC) {
		t.Fatalf("unexpected membership %v", letters.Value())
	}
	if diff := cmp.Diff([]letter{letterA, letterB}, letters.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if value, _ := letters.Get(letterB); value != "y" {
		t.Fatalf("B = %v", value)
	}
	if diff := cmp.Diff(map[string]any{"1": "x", "2": "y"}, letters.Serialize(nil)); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}

	diags := host.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != DiagnosticConversionFailure || diags[0].Key != "9" {
		t.Fatalf("expected one conversion diagnostic for key 9, got %+v", diags)
	}
	if !letters.Loaded() {
		t.Fatalf("dropping an entry must not default the whole group")
	}
}

func TestEnumGroupParserPanicDropsEntry(t *testing.T) {
	host := NewHost(Provider{"letters": map[string]any{"1": "x", "2": "y"}})
	letters := EnumGroup(host, "letters", func(raw string) (letter, error) {
		if raw == "2" {
			panic("bad key")
		}
		return parseLetter(raw)
	})
	if letters.Len() != 1 || !letters.Has(letterA) {
		t.Fatalf("expected only A to survive, got %v", letters.Value())
	}
}

type wrapped struct {
	value any
}

func (w wrapped) Serialize(*Host) any {
	return w.value
}

func wrapValue(raw any) (wrapped, error) {
	return wrapped{value: raw}, nil
}

func TestWrapperGroupRoundTrip(t *testing.T) {
	host := NewHost(Provider{"limits": map[string]any{"a": 23, "b": 2323}})
	limits := WrapperGroup(host, "limits", wrapValue)

	if diff := cmp.Diff([]string{"a", "b"}, limits.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if a, ok := limits.Get("a"); !ok || a.value != 23 {
		t.Fatalf("a = %+v ok=%v", a, ok)
	}
	want := map[string]any{"limits": map[string]any{"a": 23, "b": 2323}}
	if diff := cmp.Diff(want, Serialize(host)); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestWrapperGroupFactoryFailureDropsEntry(t *testing.T) {
	errOdd := errors.New("odd")
	host := NewHost(Provider{"limits": map[string]any{"a": 1, "b": 2, "c": 4}})
	limits := WrapperGroup(host, "limits", func(raw any) (wrapped, error) {
		if raw.(int)%2 != 0 {
			return wrapped{}, errOdd
		}
		return wrapped{value: raw}, nil
	})

	if limits.Has("a") || limits.Len() != 2 {
		t.Fatalf("expected a to be dropped, got keys %v", limits.Keys())
	}
	diags := host.Diagnostics()
	if len(diags) != 1 || !errors.Is(diags[0], errOdd) || !errors.Is(diags[0], ErrConversion) {
		t.Fatalf("expected conversion diagnostic wrapping errOdd, got %+v", diags)
	}
	if diff := cmp.Diff(map[string]any{"b": 2, "c": 4}, limits.Serialize(nil)); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestListDropsFailingElements(t *testing.T) {
	host := NewHost(Provider{"ports": []any{80, "443", "http", 8080}})
	ports := List(host, "ports", IntValidator)

	if diff := cmp.Diff([]int{80, 443, 8080}, ports.Value()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if item, ok := ports.At(1); !ok || item != 443 {
		t.Fatalf("At(1) = %d ok=%v", item, ok)
	}
	if _, ok := ports.At(5); ok {
		t.Fatalf("At out of range must report false")
	}
	diags := host.Diagnostics()
	if len(diags) != 1 || diags[0].Key != "2" {
		t.Fatalf("expected diagnostic for index 2, got %+v", diags)
	}
	if diff := cmp.Diff([]any{80, 443, 8080}, ports.Serialize(nil)); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
	if ports.TypeName() != "[]int" {
		t.Fatalf("TypeName = %q", ports.TypeName())
	}
}

func TestListDefaultsAndSerializerItems(t *testing.T) {
	host := NewHost(Provider{"names": "not a list"})
	names := List(host, "names", StringValidator, WithDefaultSequence([]any{"a", "b"}))
	items := List(host, "items", wrapValue, WithDefaultSequence([]any{1, 2}))
	raw := List[string](host, "raw", nil, WithDefaultSequence([]any{"x", 1}))

	if names.Loaded() || names.Len() != 2 {
		t.Fatalf("expected default sequence, got %v", names.Value())
	}
	if diff := cmp.Diff([]any{1, 2}, items.Serialize(nil)); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x"}, raw.Value()); diff != "" {
		t.Fatalf("nil element validator must assert the type (-want +got):\n%s", diff)
	}
}
