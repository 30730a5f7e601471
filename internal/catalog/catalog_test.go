package catalog

import (
	"testing"

	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB builds an in-memory SQLite database with every table the
// catalog package needs, mirroring the shape the real migrations (driven
// by internal/migrate) produce. Each kind's ident and edit tables reuse
// the shared IdentEnvelope/EditEnvelope structs with an explicit Table()
// override, since those tables differ only by name across kinds.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Editor{}, &Editgroup{}, &Changelog{}))

	kinds := []struct {
		ident, edit string
		rev         interface{}
	}{
		{containerIdentTable, containerEditTable, &ContainerRev{}},
		{creatorIdentTable, creatorEditTable, &CreatorRev{}},
		{fileIdentTable, fileEditTable, &FileRev{}},
		{filesetIdentTable, filesetEditTable, &FilesetRev{}},
		{webcaptureIdentTable, webcaptureEditTable, &WebcaptureRev{}},
		{releaseIdentTable, releaseEditTable, &ReleaseRev{}},
		{workIdentTable, workEditTable, &WorkRev{}},
	}
	for _, k := range kinds {
		require.NoError(t, db.Table(k.ident).AutoMigrate(&IdentEnvelope{}))
		require.NoError(t, db.Table(k.edit).AutoMigrate(&EditEnvelope{}))
		require.NoError(t, db.AutoMigrate(k.rev))
	}

	require.NoError(t, db.AutoMigrate(
		&FileRelease{}, &FilesetRelease{}, &WebcaptureRelease{},
		&ReleaseContrib{}, &ReleaseRef{},
	))

	return db
}

func testRegistry() *Registry {
	return NewRegistry(
		ContainerCrud{}, CreatorCrud{}, FileCrud{}, FilesetCrud{},
		WebcaptureCrud{}, ReleaseCrud{}, WorkCrud{},
	)
}

// seedEditor creates a non-bot, non-admin editor and returns its id.
func seedEditor(t *testing.T, db *gorm.DB, username string) fcid.FatCatId {
	t.Helper()
	id := fcid.New()
	_, err := CreateEditor(db, id, username, false, false)
	require.NoError(t, err)
	return id
}

// autoacceptContext builds an EditContext with autoaccept set, which gives
// each call a fresh editgroup of its own. Entity Create/Update/Delete/
// Redirect only stage edits in it; acceptContext makes them live.
func autoacceptContext(t *testing.T, db *gorm.DB, editorID fcid.FatCatId) *EditContext {
	t.Helper()
	ec, err := MakeEditContext(db, editorID, nil, true, nil)
	require.NoError(t, err)
	return ec
}

// acceptContext accepts ec's editgroup, making its staged edits live.
func acceptContext(t *testing.T, db *gorm.DB, ec *EditContext) {
	t.Helper()
	_, err := AcceptEditgroup(db, testRegistry(), ec.EditgroupID)
	require.NoError(t, err)
}
