package catalog

import (
	"testing"

	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseRequiresWorkID(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "alice")
	ec := autoacceptContext(t, db, editor)

	_, err := ReleaseCrud{}.Create(db, ec, &ReleaseEntity{Title: "No Work"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, OtherBadRequest, ce.Kind)
}

func TestReleaseCreateWithContribsAndRefs(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "bob")
	ec := autoacceptContext(t, db, editor)

	work, err := WorkCrud{}.Create(db, ec, &WorkEntity{})
	require.NoError(t, err)

	creator, err := CreatorCrud{}.Create(db, ec, &CreatorEntity{DisplayName: "Jane Doe"})
	require.NoError(t, err)

	in := &ReleaseEntity{
		Title:       "A Paper",
		ReleaseType: "article-journal",
		DOI:         "10.1234/abc",
		WorkID:      work.IdentID,
		Contribs: []ReleaseContribEntity{
			{Index: 0, CreatorID: &creator.IdentID, RawName: "Jane Doe", Role: "author"},
		},
		Refs: []ReleaseRefEntity{
			{Index: 0, RawDOI: "10.5555/other"},
		},
	}
	edit, err := ReleaseCrud{}.Create(db, ec, in)
	require.NoError(t, err)
	acceptContext(t, db, ec)

	got, err := ReleaseCrud{}.GetExpanded(db, edit.IdentID, HideFlags{}, ParseExpandFlags("creators"))
	require.NoError(t, err)
	re := got.(*ReleaseEntity)
	assert.Equal(t, "A Paper", re.Title)
	require.Len(t, re.Contribs, 1)
	assert.Equal(t, "author", re.Contribs[0].Role)
	require.NotNil(t, re.Contribs[0].Creator)
	assert.Equal(t, "Jane Doe", re.Contribs[0].Creator.DisplayName)
	require.Len(t, re.Refs, 1)
	assert.Equal(t, "10.5555/other", re.Refs[0].RawDOI)
}

func TestReleaseRejectsMalformedDOI(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "carol")
	ec := autoacceptContext(t, db, editor)
	work, err := WorkCrud{}.Create(db, ec, &WorkEntity{})
	require.NoError(t, err)

	ec2 := autoacceptContext(t, db, editor)
	_, err = ReleaseCrud{}.Create(db, ec2, &ReleaseEntity{Title: "Bad DOI", WorkID: work.IdentID, DOI: "not-a-doi"})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MalformedExternalId, ce.Kind)
}

func TestReleaseExpandFilesFilesetsWebcaptures(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "dana")
	ec := autoacceptContext(t, db, editor)

	work, err := WorkCrud{}.Create(db, ec, &WorkEntity{})
	require.NoError(t, err)
	release, err := ReleaseCrud{}.Create(db, ec, &ReleaseEntity{Title: "With Files", WorkID: work.IdentID})
	require.NoError(t, err)
	acceptContext(t, db, ec)

	ec2 := autoacceptContext(t, db, editor)
	_, err = FileCrud{}.Create(db, ec2, &FileEntity{
		Size: 100, MD5: "1b39813549077b2347c0f370c3864b40",
		ReleaseIDs: []fcid.FatCatId{release.IdentID},
	})
	require.NoError(t, err)
	acceptContext(t, db, ec2)

	ec3 := autoacceptContext(t, db, editor)
	_, err = FilesetCrud{}.Create(db, ec3, &FilesetEntity{ReleaseIDs: []fcid.FatCatId{release.IdentID}})
	require.NoError(t, err)
	acceptContext(t, db, ec3)

	ec4 := autoacceptContext(t, db, editor)
	_, err = WebcaptureCrud{}.Create(db, ec4, &WebcaptureEntity{OriginalURL: "http://example.com", ReleaseIDs: []fcid.FatCatId{release.IdentID}})
	require.NoError(t, err)
	acceptContext(t, db, ec4)

	got, err := ReleaseCrud{}.GetExpanded(db, release.IdentID, HideFlags{}, ParseExpandFlags("files,filesets,webcaptures"))
	require.NoError(t, err)
	re := got.(*ReleaseEntity)
	assert.Len(t, re.Files, 1)
	assert.Len(t, re.Filesets, 1)
	assert.Len(t, re.Webcaptures, 1)
}

func TestWorkExpandReleases(t *testing.T) {
	db := setupTestDB(t)
	editor := seedEditor(t, db, "erin")
	ec := autoacceptContext(t, db, editor)

	work, err := WorkCrud{}.Create(db, ec, &WorkEntity{})
	require.NoError(t, err)

	ec2 := autoacceptContext(t, db, editor)
	_, err = ReleaseCrud{}.Create(db, ec2, &ReleaseEntity{Title: "R1", WorkID: work.IdentID})
	require.NoError(t, err)
	acceptContext(t, db, ec2)

	releases, err := releasesForWork(db, work.IdentID, HideFlags{})
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "R1", releases[0].Title)
}
