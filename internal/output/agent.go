package output

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// ApplyAgentOptions applies --sort-by, --desc and --limit to list output.
// Sort keys are dotted paths matched against JSON field names or map keys,
// ignoring case, dashes and underscores (e.g. "scores.overall"). The input
// is never modified.
func ApplyAgentOptions(ctx context.Context, data interface{}) interface{} {
	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if data == nil || (limit == 0 && sortBy == "") {
		return data
	}

	v := indirect(reflect.ValueOf(data))
	if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) || v.Len() == 0 {
		return data
	}

	// Keep named slice types so methods such as Table survive.
	sliceType := v.Type()
	if v.Kind() == reflect.Array {
		sliceType = reflect.SliceOf(v.Type().Elem())
	}
	sorted := reflect.MakeSlice(sliceType, v.Len(), v.Len())
	reflect.Copy(sorted, v)

	if sortBy != "" {
		path := strings.Split(sortBy, ".")
		keys := make([]interface{}, sorted.Len())
		found := make([]bool, sorted.Len())
		for i := range keys {
			keys[i], found[i] = lookupPath(sorted.Index(i), path)
		}
		perm := make([]int, sorted.Len())
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(i, j int) bool {
			a, b := perm[i], perm[j]
			// Items without the key sort last either way.
			if !found[a] || !found[b] {
				return found[a] && !found[b]
			}
			c := compareValues(keys[a], keys[b])
			if desc {
				return c > 0
			}
			return c < 0
		})
		reordered := reflect.MakeSlice(sorted.Type(), sorted.Len(), sorted.Len())
		for i, idx := range perm {
			reordered.Index(i).Set(sorted.Index(idx))
		}
		sorted = reordered
	}

	if limit > 0 && limit < sorted.Len() {
		sorted = sorted.Slice(0, limit)
	}
	return sorted.Interface()
}

// lookupPath follows a dotted field path through structs and string-keyed maps.
func lookupPath(v reflect.Value, path []string) (interface{}, bool) {
	for _, name := range path {
		for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		if !v.IsValid() {
			return nil, false
		}

		want := normalizeName(name)
		switch v.Kind() {
		case reflect.Struct:
			next := reflect.Value{}
			for _, f := range exportedFields(v.Type()) {
				if normalizeName(f.name) == want {
					next = v.Field(f.index)
					break
				}
			}
			v = next
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			next := reflect.Value{}
			iter := v.MapRange()
			for iter.Next() {
				if normalizeName(iter.Key().String()) == want {
					next = iter.Value()
					break
				}
			}
			v = next
		default:
			return nil, false
		}
	}

	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(s))
}

// compareValues orders numbers numerically, times chronologically and
// everything else by its printed form.
func compareValues(a, b interface{}) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
