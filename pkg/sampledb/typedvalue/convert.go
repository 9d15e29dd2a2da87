package typedvalue

// Convert returns a copy of data in which every tagged mapping with a known
// tag is replaced by its decoded Go value. Children are converted before
// their parent; arrays are walked. Untagged mappings, the file tag and
// unknown tags are kept as mappings. data itself is not modified.
func Convert(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		converted := Convert(x)
		if decoded, ok := Decode(converted); ok {
			return decoded
		}
		return converted
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = convertValue(e)
		}
		return out
	}
	return v
}
