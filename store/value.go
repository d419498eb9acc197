package store

import "fmt"

// Values stored in the tree are JSON-object shaped: strings, booleans,
// numbers (normalized to int64 or float64), and string-keyed maps of the
// same. normalizeValue deep-copies caller data on the way in so a caller
// mutating its own map after a write cannot reach into the tree.
func normalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64, float64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if err := validateSegment(k); err != nil {
				return nil, fmt.Errorf("%w: field %q", ErrInvalidPath, k)
			}
			norm, err := normalizeValue(child)
			if err != nil {
				return nil, err
			}
			// Writing nil under a field means "no value there"; the field
			// is simply omitted, mirroring the delete-by-writing-null rule
			// of the wire format.
			if norm == nil {
				continue
			}
			out[k] = norm
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

// copyValue deep-copies a normalized value on the way out, so a snapshot
// holder can never mutate tree state.
func copyValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, child := range m {
		out[k] = copyValue(child)
	}
	return out
}
