// Package validation turns flat form payloads into typed, constraint-checked
// values. Each schema returns a Result: either the parsed value or the
// Violations explaining why it was rejected.
package validation

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/samber/mo"
)

// Violations maps a field key to an error code. The first code recorded for a
// field wins.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already failed.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = code
}

// Has reports whether field already carries a violation.
func (v Violations) Has(field string) bool {
	_, ok := v[field]
	return ok
}

func (v Violations) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Result is the outcome of a schema: Ok(value) or Err(Violations).
type Result[T any] = mo.Result[T]

func finish[T any](value T, v Violations) Result[T] {
	if v.Empty() {
		return mo.Ok(value)
	}
	return mo.Err[T](v)
}

// Unwrap splits a Result into its value and violations. A non-violation
// error is reported under the empty key.
func Unwrap[T any](res Result[T]) (T, Violations) {
	value, err := res.Get()
	if err == nil {
		return value, nil
	}
	var v Violations
	if errors.As(err, &v) {
		return value, v
	}
	return value, Violations{"": err.Error()}
}

// Payload is a flat key/value submission. Nested collections arrive as
// JSON-encoded strings under a single key.
type Payload map[string]string

// Get returns the trimmed value for key.
func (p Payload) Get(key string) string { return strings.TrimSpace(p[key]) }

// Has reports whether key was submitted with a non-blank value.
func (p Payload) Has(key string) bool { return p.Get(key) != "" }

var validate = validator.New()

// Required records "required" when value is blank.
func Required(field, value string, v Violations) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
		return false
	}
	return true
}

// Email checks an optional email. Blank values pass.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if validate.Var(value, "email") != nil {
		v.Add(field, "invalid_email")
	}
}

// URL checks an optional absolute URL. Blank values pass.
func URL(field, value string, v Violations) {
	if value == "" {
		return
	}
	if validate.Var(value, "url") != nil {
		v.Add(field, "invalid_url")
	}
}

// OneOf checks value is a member of allowed.
func OneOf(field, value string, allowed []string, code string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, code)
}

// MinLength checks the rune length of value.
func MinLength(field, value string, min int, code string, v Violations) {
	if utf8.RuneCountInString(value) < min {
		v.Add(field, code)
	}
}

// MaxLength records "too_long" when value has more than max runes.
func MaxLength(field, value string, max int, v Violations) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, "too_long")
	}
}

type limit struct {
	field string
	value string
	max   int
}

func maxLengths(v Violations, limits ...limit) {
	for _, l := range limits {
		MaxLength(l.field, l.value, l.max, v)
	}
}

// Upper bounds shared by numeric fields. Integers must fit an SQL INTEGER
// column; amounts stay well inside float64 precision for cents.
const (
	MaxInt    = math.MaxInt32
	MaxAmount = 1e12
)

// Int parses an integer field and enforces a lower bound and MaxInt.
func Int(field, raw string, min int, code string, v Violations) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange):
		v.Add(field, "number_too_large")
		return 0
	case err != nil:
		v.Add(field, "expected_number")
		return 0
	}
	if n < min {
		v.Add(field, code)
	}
	if n > MaxInt || n < -MaxInt {
		v.Add(field, "number_too_large")
	}
	return n
}

// Float parses a finite decimal field and enforces a lower bound and
// MaxAmount. NaN and Inf are rejected as non-numbers.
func Float(field, raw string, min float64, code string, v Violations) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	switch {
	case errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0):
		v.Add(field, "number_too_large")
		return 0
	case err != nil && !errors.Is(err, strconv.ErrRange), math.IsNaN(f), math.IsInf(f, 0):
		v.Add(field, "expected_number")
		return 0
	}
	if f < min {
		v.Add(field, code)
	}
	if f > MaxAmount {
		v.Add(field, "number_too_large")
	}
	return f
}
