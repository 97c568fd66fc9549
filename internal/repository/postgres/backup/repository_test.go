package backup

import (
	"testing"

	"cowrite/internal/jsontree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONArg(t *testing.T) {
	v, err := jsonArg(jsontree.Tree{})
	require.NoError(t, err)
	assert.Nil(t, v, "null trees become SQL NULL")

	tree, err := jsontree.FromBytes([]byte(`{"b":1,"a":"<x>"}`))
	require.NoError(t, err)
	v, err = jsonArg(tree)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"<x>"}`, v)
}

func TestDecodeTrees(t *testing.T) {
	var profile, empty jsontree.Tree
	err := decodeTrees(
		treeCol{&profile, []byte(`{"eyes":"green"}`)},
		treeCol{&empty, nil},
	)
	require.NoError(t, err)

	got, _ := profile.Root.(jsontree.Object).Get("eyes")
	assert.Equal(t, jsontree.String("green"), got)
	assert.True(t, empty.IsNull())

	err = decodeTrees(treeCol{&profile, []byte(`{broken`)})
	assert.Error(t, err)
}

func TestInsertBatch(t *testing.T) {
	b := &insertBatch{}

	assert.Equal(t, "{}", b.encode(jsontree.Tree{}, true))
	assert.Nil(t, b.encode(jsontree.Tree{}, false))

	b.queue("document d1", "INSERT INTO documents VALUES ($1)", "d1")
	b.queue("document d2", "INSERT INTO documents VALUES ($1)", "d2")
	assert.Equal(t, []string{"document d1", "document d2"}, b.labels)
	assert.Equal(t, 2, b.batch.Len())

	// an encoding failure stops further queueing
	b.encode(jsontree.Of(jsontree.Number("not-a-number")), false)
	require.Error(t, b.err)
	b.queue("document d3", "INSERT INTO documents VALUES ($1)", "d3")
	assert.Equal(t, 2, b.batch.Len())
}
