package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExpandFlagsKnownAndUnknown(t *testing.T) {
	f := ParseExpandFlags("files,container,other_thing,releases,creators,filesets,webcaptures")
	assert.True(t, f.Files)
	assert.True(t, f.Container)
	assert.True(t, f.Releases)
	assert.True(t, f.Creators)
	assert.True(t, f.Filesets)
	assert.True(t, f.Webcaptures)
}

func TestParseExpandFlagsEmpty(t *testing.T) {
	f := ParseExpandFlags("")
	assert.True(t, f.None())
}

func TestParseHideFlagsIndependentManifestAndCdx(t *testing.T) {
	// Regression for the source's manifest/cdx-vs-contribs copy-paste bug:
	// contribs must stay false when only manifest and cdx are requested.
	f := ParseHideFlags("manifest,cdx")
	assert.True(t, f.Manifest)
	assert.True(t, f.Cdx)
	assert.False(t, f.Contribs)
}

func TestParseHideFlagsContribsAlone(t *testing.T) {
	f := ParseHideFlags("contribs")
	assert.True(t, f.Contribs)
	assert.False(t, f.Manifest)
	assert.False(t, f.Cdx)
}

func TestParseHideFlagsAllKnown(t *testing.T) {
	f := ParseHideFlags("abstracts,refs,contribs,manifest,cdx,bogus")
	assert.True(t, f.Abstracts)
	assert.True(t, f.Refs)
	assert.True(t, f.Contribs)
	assert.True(t, f.Manifest)
	assert.True(t, f.Cdx)
}
