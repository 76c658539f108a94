package internal

import (
	"fmt"
	"strconv"
)

// Scalar is the set of types path and query values convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the request value stored under key, or the zero value
// when it is missing or of another type.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param returns a typed path variable, zero when it cannot be parsed.
func Param[T Scalar](c Context, name string) T {
	v, _ := Parse[T](c.Param(name))
	return v
}

// Query returns a typed query parameter, zero when it cannot be parsed.
func Query[T Scalar](c Context, name string) T {
	v, _ := Parse[T](c.Query(name))
	return v
}

// QueryDefault returns a typed query parameter.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, err := Parse[T](raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// Parse converts a raw string to T.
func Parse[T Scalar](raw string) (T, error) {
	var (
		zero T
		v    any
		err  error
	)
	switch any(zero).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return zero, fmt.Errorf("unsupported type %T", zero)
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
