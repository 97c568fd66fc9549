package jsontree

// Tree is a JSON field of a record. The zero value is JSON null.
type Tree struct {
	Root Node
}

// Of wraps n in a Tree.
func Of(n Node) Tree {
	return Tree{Root: n}
}

// EmptyObject returns a Tree holding {}.
func EmptyObject() Tree {
	return Tree{Root: Object{}}
}

// IsNull reports whether the tree holds JSON null.
func (t Tree) IsNull() bool {
	switch t.Root.(type) {
	case nil, Null:
		return true
	}
	return false
}

// OrEmptyObject returns t, or {} when t is null.
func (t Tree) OrEmptyObject() Tree {
	if t.IsNull() {
		return EmptyObject()
	}
	return t
}

// MapStrings is MapStrings applied to the root.
func (t Tree) MapStrings(fn func(string) string) Tree {
	if t.Root == nil {
		return t
	}
	return Tree{Root: MapStrings(t.Root, fn)}
}

// WalkStrings is WalkStrings applied to the root.
func (t Tree) WalkStrings(fn func(string)) {
	WalkStrings(t.Root, fn)
}

func (t Tree) MarshalJSON() ([]byte, error) {
	return Encode(t.Root)
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	n, err := Parse(data)
	if err != nil {
		return err
	}
	t.Root = n
	return nil
}

// FromBytes parses a column value; nil or empty input yields a null tree.
func FromBytes(data []byte) (Tree, error) {
	if len(data) == 0 {
		return Tree{}, nil
	}
	var t Tree
	if err := t.UnmarshalJSON(data); err != nil {
		return Tree{}, err
	}
	return t, nil
}

// Bytes returns the encoded tree, or nil when it is null.
func (t Tree) Bytes() ([]byte, error) {
	if t.IsNull() {
		return nil, nil
	}
	return Encode(t.Root)
}
