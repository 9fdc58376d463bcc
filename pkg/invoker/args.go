package invoker

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/retailbridge/retailbridge/pkg/models"
)

// args is the decoded tools/call argument bag. Absent arguments decode to an
// empty bag so required-field checks fail closed instead of crashing.
type args map[string]any

func decodeArgs(raw json.RawMessage) (args, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return args{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func (a args) requireInt(key string) (int64, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
	return int64(f), nil
}

func (a args) requireString(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

func (a args) requireIntSlice(key string) ([]int64, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of integers", key)
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		f, ok := item.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("argument %q must be an array of integers", key)
		}
		out = append(out, int64(f))
	}
	return out, nil
}

func (a args) requireObject(key string) (map[string]any, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an object", key)
	}
	return obj, nil
}

func (a args) requireObjectSlice(key string) ([]map[string]any, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of objects", key)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("argument %q must be an array of objects", key)
		}
		out = append(out, obj)
	}
	return out, nil
}

// querySettings extracts the optional queryResultSettings argument and
// applies defaults, so the block is never absent on the wire.
func (a args) querySettings(defaultTop int) models.QueryResultSettings {
	var qrs models.QueryResultSettings
	if v, ok := a["queryResultSettings"]; ok {
		if data, err := json.Marshal(v); err == nil {
			_ = json.Unmarshal(data, &qrs)
		}
	}
	qrs.Normalize(defaultTop)
	return qrs
}
