package jsontree

// MapStrings returns a copy of n with fn applied to every string value at any
// depth. Object keys are left untouched.
func MapStrings(n Node, fn func(string) string) Node {
	switch v := n.(type) {
	case String:
		return String(fn(string(v)))
	case Array:
		out := make(Array, len(v))
		for i, item := range v {
			out[i] = MapStrings(item, fn)
		}
		return out
	case Object:
		out := make(Object, len(v))
		for i, f := range v {
			out[i] = Field{Key: f.Key, Value: MapStrings(f.Value, fn)}
		}
		return out
	}
	return n
}

// WalkStrings calls fn for every string value in n.
func WalkStrings(n Node, fn func(string)) {
	switch v := n.(type) {
	case String:
		fn(string(v))
	case Array:
		for _, item := range v {
			WalkStrings(item, fn)
		}
	case Object:
		for _, f := range v {
			WalkStrings(f.Value, fn)
		}
	}
}
