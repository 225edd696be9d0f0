package insights

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	pkgerrors "netgraph-backend/pkg/errors"
)

// pathStep is one compiled segment of a dot-path: either a struct field
// (matched by json tag) or a numeric slice index.
type pathStep struct {
	field string
	index int
	isIdx bool
}

// pathCache holds compiled paths so each is parsed once per process.
var pathCache sync.Map // string -> []pathStep

// compilePath parses a dot-path like "communities.0.percentage" into steps.
func compilePath(path string) ([]pathStep, error) {
	if cached, ok := pathCache.Load(path); ok {
		return cached.([]pathStep), nil
	}
	if path == "" {
		return nil, pkgerrors.NewValidationError("empty field path")
	}
	parts := strings.Split(path, ".")
	steps := make([]pathStep, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, pkgerrors.NewValidationError("malformed field path: " + path)
		}
		if idx, err := strconv.Atoi(part); err == nil {
			if idx < 0 {
				return nil, pkgerrors.NewValidationError("negative index in field path: " + path)
			}
			steps = append(steps, pathStep{index: idx, isIdx: true})
		} else {
			steps = append(steps, pathStep{field: part})
		}
	}
	pathCache.Store(path, steps)
	return steps, nil
}

// resolvePath walks the compiled steps through a value using json tags for
// field matching. The boolean is false when the path cannot be resolved
// (missing field, index out of range, nil pointer).
func resolvePath(root interface{}, steps []pathStep) (interface{}, bool) {
	v := reflect.ValueOf(root)
	for _, step := range steps {
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if step.isIdx {
			if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
				return nil, false
			}
			if step.index >= v.Len() {
				return nil, false
			}
			v = v.Index(step.index)
			continue
		}
		switch v.Kind() {
		case reflect.Struct:
			f, ok := fieldByTag(v, step.field)
			if !ok {
				return nil, false
			}
			v = f
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := v.MapIndex(reflect.ValueOf(step.field))
			if !mv.IsValid() {
				return nil, false
			}
			v = mv
		default:
			return nil, false
		}
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

// fieldByTag finds a struct field whose json tag (or lower-cased name)
// matches the path segment.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if comma := strings.Index(tag, ","); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == name {
			return v.Field(i), true
		}
		if tag == "" && strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// asFloat coerces a resolved value into a float64 for comparison.
func asFloat(val interface{}) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
