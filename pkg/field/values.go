package field

import (
	"fmt"
	"strconv"
	"strings"
)

// Values is the flat value map shared by every step of a form. Entries hold
// string, bool, nil or FileRef.
type Values map[string]any

// FileRef describes a file accepted by the upload endpoint.
type FileRef struct {
	URL  string `json:"url" msgpack:"url"`
	Name string `json:"name" msgpack:"name"`
	Key  string `json:"key,omitempty" msgpack:"key,omitempty"`
	Size int64  `json:"size" msgpack:"size"`
	Type string `json:"type" msgpack:"type"`
}

// Clone returns a shallow copy; stored values are immutable so this is enough
// to isolate callers from later edits.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns the value under name when it is a string.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns the value under name when it is a bool.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// File returns the uploaded file reference under name.
func (v Values) File(name string) (FileRef, bool) {
	switch ref := v[name].(type) {
	case FileRef:
		return ref, true
	case *FileRef:
		if ref != nil {
			return *ref, true
		}
	}
	return FileRef{}, false
}

// Present reports whether name carries a non-empty value.
func (v Values) Present(name string) bool {
	return !isEmpty(v[name])
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case bool:
		return !typed
	case *FileRef:
		return typed == nil
	default:
		return false
	}
}

// Normalize converts decoded values (JSON or MsgPack maps, numeric types)
// back into the kinds the engine stores. Maps carrying a url become FileRef.
func Normalize(raw map[string]any) Values {
	out := make(Values, len(raw))
	for k, v := range raw {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case nil, string, bool, FileRef:
		return typed
	case *FileRef:
		if typed == nil {
			return nil
		}
		return *typed
	case map[string]any:
		if ref, ok := fileRefFromMap(typed); ok {
			return ref
		}
		return typed
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for k, v := range typed {
			converted[fmt.Sprint(k)] = v
		}
		return normalizeValue(converted)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(typed)
	default:
		return typed
	}
}

func fileRefFromMap(m map[string]any) (FileRef, bool) {
	url, ok := m["url"].(string)
	if !ok || url == "" {
		return FileRef{}, false
	}
	ref := FileRef{URL: url}
	ref.Name, _ = m["name"].(string)
	ref.Key, _ = m["key"].(string)
	ref.Type, _ = m["type"].(string)
	switch size := m["size"].(type) {
	case float64:
		ref.Size = int64(size)
	case int64:
		ref.Size = size
	case int:
		ref.Size = int64(size)
	case int32:
		ref.Size = int64(size)
	case uint64:
		ref.Size = int64(size)
	case int8:
		ref.Size = int64(size)
	case int16:
		ref.Size = int64(size)
	case uint8:
		ref.Size = int64(size)
	case uint16:
		ref.Size = int64(size)
	case uint32:
		ref.Size = int64(size)
	}
	return ref, true
}
