package optproxy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Int declares an integer option.
func Int(host *Host, name string, def int, opts ...ProxyOption) *Option[int] {
	return scalar(host, KindInt, name, def, IntValidator, opts)
}

// Float declares a float option.
func Float(host *Host, name string, def float64, opts ...ProxyOption) *Option[float64] {
	return scalar(host, KindFloat, name, def, FloatValidator, opts)
}

// String declares a string option.
func String(host *Host, name string, def string, opts ...ProxyOption) *Option[string] {
	return scalar(host, KindString, name, def, StringValidator, opts)
}

// Bool declares a boolean option.
func Bool(host *Host, name string, def bool, opts ...ProxyOption) *Option[bool] {
	return scalar(host, KindBool, name, def, BoolValidator, opts)
}

// Duration declares a duration option. Strings use time.ParseDuration syntax,
// bare numbers are nanoseconds.
func Duration(host *Host, name string, def time.Duration, opts ...ProxyOption) *Option[time.Duration] {
	return scalar(host, KindDuration, name, def, DurationValidator, opts)
}

func scalar[T any](host *Host, kind Kind, name string, def T, validator Validator[T], opts []ProxyOption) *Option[T] {
	o := newOption(host, kind, name, def, validator, applyProxyOptions(opts))
	host.register(o)
	return o
}

// IntValidator coerces numbers and numeric strings into int. Strings are
// always read in base 10, so "010" is 10 and "0x10" is rejected.
func IntValidator(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
		if err != nil {
			return 0, fmt.Errorf("unable to cast %q to int: %w", s, err)
		}
		return int(n), nil
	}
	return cast.ToIntE(raw)
}

// FloatValidator coerces numbers and numeric strings into float64.
func FloatValidator(raw any) (float64, error) {
	return cast.ToFloat64E(raw)
}

// StringValidator coerces scalars into their string form. Mappings and
// sequences are rejected.
func StringValidator(raw any) (string, error) {
	return cast.ToStringE(raw)
}

// BoolValidator accepts booleans, numbers and strconv.ParseBool strings.
func BoolValidator(raw any) (bool, error) {
	return cast.ToBoolE(raw)
}

// DurationValidator accepts durations, numbers and duration strings.
func DurationValidator(raw any) (time.Duration, error) {
	return cast.ToDurationE(raw)
}

// AssertValidator accepts raw values that already hold type T.
func AssertValidator[T any]() Validator[T] {
	return func(raw any) (T, error) {
		value, ok := raw.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("expected %s, got %T", typeNameOf[T](), raw)
		}
		return value, nil
	}
}
