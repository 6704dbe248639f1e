package hub

import (
	"encoding/json"
	"unicode"
	"unicode/utf8"
)

// Normalize is the single casing boundary for inbound event payloads.
// The backend emits field names in both camelCase and PascalCase
// depending on the serializer in play ("friendId" vs "FriendId");
// everything past this function sees camelCase only. Nested objects
// and arrays are normalized recursively.
func Normalize(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}

	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[camelKey(key)] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return Normalize(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

// camelKey lowers the first rune of key. Keys already in camelCase
// pass through unchanged, so normalization is idempotent.
func camelKey(key string) string {
	if key == "" {
		return key
	}
	r, size := utf8.DecodeRuneInString(key)
	if !unicode.IsUpper(r) {
		return key
	}
	return string(unicode.ToLower(r)) + key[size:]
}

// DecodeArgument unmarshals a raw invocation argument into a
// normalized map. Non-object arguments (strings, numbers) return nil.
func DecodeArgument(raw json.RawMessage) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return Normalize(payload)
}

// String reads a string field from a normalized payload, defaulting to
// empty when absent or mistyped.
func String(payload map[string]any, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}

// Int64 reads a numeric field from a normalized payload. JSON numbers
// decode as float64; anything else defaults to zero.
func Int64(payload map[string]any, key string) int64 {
	if f, ok := payload[key].(float64); ok {
		return int64(f)
	}
	return 0
}

// Bool reads a boolean field from a normalized payload.
func Bool(payload map[string]any, key string) bool {
	if b, ok := payload[key].(bool); ok {
		return b
	}
	return false
}
