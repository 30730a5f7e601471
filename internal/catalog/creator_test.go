package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatorCreateAndLookupByORCID(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "alice")
	ec := autoacceptContext(t, db, editor)

	created, err := CreatorCrud{}.Create(db, ec, &CreatorEntity{
		DisplayName: "Ada Lovelace",
		ORCID:       "0000-0001-2345-678X",
	})
	require.NoError(t, err)
	acceptContext(t, db, ec)

	got, err := CreatorCrud{}.Get(db, created.IdentID, HideFlags{})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.(*CreatorEntity).DisplayName)

	found, err := LookupCreator(db, ExternalIDLookup{ORCID: "0000-0001-2345-678X"}, HideFlags{})
	require.NoError(t, err)
	assert.Equal(t, created.IdentID.String(), found.Ident.String())
}

func TestCreatorRejectsMalformedORCID(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "bob")
	ec := autoacceptContext(t, db, editor)

	_, err := CreatorCrud{}.Create(db, ec, &CreatorEntity{DisplayName: "X", ORCID: "garbage"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MalformedExternalId, ce.Kind)
}
