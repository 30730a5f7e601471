package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCreateAndLookupBySHA256(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "alice")
	ec := autoacceptContext(t, db, editor)

	sha256 := "cb1c378f464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e452"
	created, err := FileCrud{}.Create(db, ec, &FileEntity{
		Size: 1024, SHA256: sha256,
		URLs: []string{"https://example.com/a.pdf", "https://example.com/mirror/a.pdf"},
	})
	require.NoError(t, err)
	acceptContext(t, db, ec)

	got, err := FileCrud{}.Get(db, created.IdentID, HideFlags{})
	require.NoError(t, err)
	fe := got.(*FileEntity)
	assert.Equal(t, int64(1024), fe.Size)
	assert.Equal(t, []string{"https://example.com/a.pdf", "https://example.com/mirror/a.pdf"}, fe.URLs)

	found, err := LookupFile(db, ExternalIDLookup{SHA256: sha256})
	require.NoError(t, err)
	assert.Equal(t, created.IdentID.String(), found.Ident.String())
}

func TestFileRejectsMalformedHash(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "bob")
	ec := autoacceptContext(t, db, editor)

	_, err := FileCrud{}.Create(db, ec, &FileEntity{MD5: "not-hex"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MalformedChecksum, ce.Kind)
}

func TestLookupFileRequiresExactlyOneHash(t *testing.T) {
	db := setupTestDB(t)
	_, err := LookupFile(db, ExternalIDLookup{MD5: "1b39813549077b2347c0f370c3864b40", SHA1: "e9dd75237c94b209dc3ccd52722de6931a310ba3"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MissingOrMultipleExternalId, ce.Kind)
}
