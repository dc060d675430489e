package records

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// addressKeys orders the components of an address object when it is flattened.
var addressKeys = []string{"line1", "line2", "street", "area", "city", "district", "state", "zip", "zipCode", "postalCode", "pincode", "country"}

// Lookup resolves a dotted path such as "vendor.name" inside raw.
func Lookup(raw map[string]any, path string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if v, ok := raw[path]; ok {
		return v, v != nil
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil, false
	}
	nested, ok := raw[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return Lookup(nested, rest)
}

// ToString renders scalars and address-like objects as text.
func ToString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case bool:
		return strconv.FormatBool(t), true
	case map[string]any:
		s := flatten(t)
		return s, s != ""
	default:
		return "", false
	}
}

// ToDecimal parses JSON numbers and numeric strings. Thousands separators are allowed.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case int32:
		return decimal.NewFromInt32(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// ToBool accepts booleans, common textual flags and numbers.
func ToBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "active":
			return true, true
		case "false", "no", "n", "0", "inactive":
			return false, true
		}
		return false, false
	default:
		if d, ok := ToDecimal(v); ok {
			return !d.IsZero(), true
		}
		return false, false
	}
}

func firstString(raw Raw, paths []string) string {
	for _, p := range paths {
		v, ok := Lookup(raw, p)
		if !ok {
			continue
		}
		if s, ok := ToString(v); ok {
			return s
		}
	}
	return ""
}

func firstBool(raw Raw, paths []string) bool {
	for _, p := range paths {
		v, ok := Lookup(raw, p)
		if !ok {
			continue
		}
		if b, ok := ToBool(v); ok {
			return b
		}
	}
	return false
}

func firstDecimal(raw Raw, paths []string) decimal.Decimal {
	for _, p := range paths {
		v, ok := Lookup(raw, p)
		if !ok {
			continue
		}
		if d, ok := ToDecimal(v); ok {
			return d
		}
	}
	return decimal.Zero
}

func flatten(obj map[string]any) string {
	parts := make([]string, 0, len(obj))
	seen := make(map[string]bool, len(obj))
	for _, key := range addressKeys {
		if s, ok := scalarString(obj[key]); ok {
			parts = append(parts, s)
		}
		seen[key] = true
	}
	rest := make([]string, 0, len(obj))
	for key := range obj {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if s, ok := scalarString(obj[key]); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func scalarString(v any) (string, bool) {
	if _, nested := v.(map[string]any); nested {
		return "", false
	}
	return ToString(v)
}
