package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEditContextExplicitEditgroup(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "alice")

	first, err := MakeEditContext(db, editor, nil, false, nil)
	require.NoError(t, err)

	second, err := MakeEditContext(db, editor, &first.EditgroupID, false, nil)
	require.NoError(t, err)
	assert.Equal(t, first.EditgroupID.String(), second.EditgroupID.String())
}

func TestMakeEditContextAutoacceptAlwaysCreatesFresh(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "bob")

	a, err := MakeEditContext(db, editor, nil, true, nil)
	require.NoError(t, err)
	b, err := MakeEditContext(db, editor, nil, true, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.EditgroupID.String(), b.EditgroupID.String())
}

func TestMakeEditContextReusesActiveEditgroup(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "carol")

	a, err := MakeEditContext(db, editor, nil, false, nil)
	require.NoError(t, err)
	b, err := MakeEditContext(db, editor, nil, false, nil)
	require.NoError(t, err)
	assert.Equal(t, a.EditgroupID.String(), b.EditgroupID.String())
}

func TestAcceptEditgroupTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "dana")
	registry := testRegistry()

	ec, err := MakeEditContext(db, editor, nil, false, nil)
	require.NoError(t, err)
	_, err = ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "X"})
	require.NoError(t, err)

	_, err = AcceptEditgroup(db, registry, ec.EditgroupID)
	require.NoError(t, err)

	_, err = AcceptEditgroup(db, registry, ec.EditgroupID)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, EditgroupAlreadyAccepted, ce.Kind)
}

func TestEditContextCheckRejectsMutationAfterAccept(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "erin")
	registry := testRegistry()

	ec, err := MakeEditContext(db, editor, nil, false, nil)
	require.NoError(t, err)
	_, err = ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "Y"})
	require.NoError(t, err)
	_, err = AcceptEditgroup(db, registry, ec.EditgroupID)
	require.NoError(t, err)

	_, err = ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "Z"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, EditgroupAlreadyAccepted, ce.Kind)
}

func TestGetChangelogOrdersDescending(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "frank")
	registry := testRegistry()

	var last *Changelog
	for i := 0; i < 3; i++ {
		ec, err := MakeEditContext(db, editor, nil, false, nil)
		require.NoError(t, err)
		_, err = ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "N"})
		require.NoError(t, err)
		row, err := AcceptEditgroup(db, registry, ec.EditgroupID)
		require.NoError(t, err)
		last = row
	}

	rows, err := GetChangelog(db, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, last.ChangelogID, rows[0].ChangelogID)
}
