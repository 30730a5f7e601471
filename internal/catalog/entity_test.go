package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKindsFixedOrder(t *testing.T) {
	r := testRegistry()
	assert.Equal(t, []string{"container", "creator", "file", "fileset", "webcapture", "release", "work"}, r.Kinds())
}

func TestCreateBatchAutoacceptIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "alice")
	registry := testRegistry()

	ec, err := MakeEditContext(db, editor, nil, true, nil)
	require.NoError(t, err)

	entities := []interface{}{
		&ContainerEntity{Name: "One"},
		&ContainerEntity{Name: "Two"},
		&ContainerEntity{Name: "Three"},
	}
	edits, err := CreateBatch(db, registry, "container", ec, entities)
	require.NoError(t, err)
	require.Len(t, edits, 3)

	for _, e := range edits {
		got, err := ContainerCrud{}.Get(db, e.IdentID, HideFlags{})
		require.NoError(t, err)
		assert.True(t, got.(*ContainerEntity).IsLive)
	}
}

func TestCreateBatchRejectsWholeBatchOnAnyFailure(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "bob")
	registry := testRegistry()

	ec, err := MakeEditContext(db, editor, nil, true, nil)
	require.NoError(t, err)

	entities := []interface{}{
		&ContainerEntity{Name: "Good", ISSNL: "1234-5678"},
		&ContainerEntity{Name: "Bad", ISSNL: "not-an-issn"},
	}
	_, err = CreateBatch(db, registry, "container", ec, entities)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, OtherBadRequest, ce.Kind)

	var count int64
	db.Table(containerIdentTable).Count(&count)
	assert.Zero(t, count, "no idents should have been committed when the batch is rejected")
}

func TestCreateBatchUnknownKind(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "carol")
	registry := testRegistry()
	ec, err := MakeEditContext(db, editor, nil, true, nil)
	require.NoError(t, err)

	_, err = CreateBatch(db, registry, "bogus", ec, []interface{}{&ContainerEntity{Name: "X"}})
	require.Error(t, err)
}
