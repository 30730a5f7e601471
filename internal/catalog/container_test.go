package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerCreateGetAccept(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "alice")
	ec := autoacceptContext(t, db, editor)

	in := &ContainerEntity{Name: "Journal of Testing", ISSNL: "1234-5678"}
	edit, err := ContainerCrud{}.Create(db, ec, in)
	require.NoError(t, err)
	require.NotZero(t, edit.EditID)
	acceptContext(t, db, ec)

	got, err := ContainerCrud{}.Get(db, edit.IdentID, HideFlags{})
	require.NoError(t, err)
	ce := got.(*ContainerEntity)
	assert.Equal(t, "Journal of Testing", ce.Name)
	assert.True(t, ce.IsLive)
}

func TestContainerRejectsMalformedISSN(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "bob")
	ec := autoacceptContext(t, db, editor)

	_, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "Bad Journal", ISSNL: "not-an-issn"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MalformedExternalId, ce.Kind)
}

func TestContainerUpdateReplacesOpenEdit(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "carol")

	// Non-autoaccept so the edit stays staged in one editgroup.
	ec, err := MakeEditContext(db, editor, nil, false, nil)
	require.NoError(t, err)

	created, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "First Name"})
	require.NoError(t, err)

	updated, err := ContainerCrud{}.Update(db, ec, created.IdentID, &ContainerEntity{Name: "Second Name"})
	require.NoError(t, err)
	// Same open edit row in this editgroup is replaced, not duplicated.
	assert.Equal(t, created.EditID, updated.EditID)

	_, err = AcceptEditgroup(db, testRegistry(), ec.EditgroupID)
	require.NoError(t, err)

	got, err := ContainerCrud{}.Get(db, created.IdentID, HideFlags{})
	require.NoError(t, err)
	assert.Equal(t, "Second Name", got.(*ContainerEntity).Name)
}

func TestContainerRedirectRejectsSelfAndDoubleHop(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "dave")
	ec := autoacceptContext(t, db, editor)

	a, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "A"})
	require.NoError(t, err)
	b, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "B"})
	require.NoError(t, err)
	c, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "C"})
	require.NoError(t, err)

	_, err = ContainerCrud{}.Redirect(db, ec, a.IdentID, a.IdentID)
	require.Error(t, err)
	acceptContext(t, db, ec)

	ec2 := autoacceptContext(t, db, editor)
	_, err = ContainerCrud{}.Redirect(db, ec2, a.IdentID, b.IdentID)
	require.NoError(t, err)
	acceptContext(t, db, ec2)

	// c -> a is fine (a is not yet a redirect when checked against c... )
	// but redirecting to a target that is itself a redirect must fail.
	ec3 := autoacceptContext(t, db, editor)
	_, err = ContainerCrud{}.Redirect(db, ec3, c.IdentID, a.IdentID)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, OtherBadRequest, ce.Kind)
}

func TestContainerGetNotFoundForTombstone(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "erin")
	ec := autoacceptContext(t, db, editor)

	created, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "Temp"})
	require.NoError(t, err)
	acceptContext(t, db, ec)

	ec2 := autoacceptContext(t, db, editor)
	_, err = ContainerCrud{}.Delete(db, ec2, created.IdentID)
	require.NoError(t, err)
	acceptContext(t, db, ec2)

	_, err = ContainerCrud{}.Get(db, created.IdentID, HideFlags{})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestContainerLookupByISSNL(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "frank")
	ec := autoacceptContext(t, db, editor)

	created, err := ContainerCrud{}.Create(db, ec, &ContainerEntity{Name: "Lookup Journal", ISSNL: "1234-5678"})
	require.NoError(t, err)
	acceptContext(t, db, ec)

	found, err := LookupContainer(db, ExternalIDLookup{ISSNL: "1234-5678"}, HideFlags{})
	require.NoError(t, err)
	assert.Equal(t, created.IdentID.String(), found.Ident.String())
}

func TestLookupRequiresExactlyOneIdentifier(t *testing.T) {
	db := setupTestDB(t)
	_, err := LookupContainer(db, ExternalIDLookup{}, HideFlags{})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MissingOrMultipleExternalId, ce.Kind)

	_, err = LookupContainer(db, ExternalIDLookup{ISSNL: "1234-5678", WikidataQID: "Q1"}, HideFlags{})
	require.Error(t, err)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MissingOrMultipleExternalId, ce.Kind)
}
