package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDOI(t *testing.T) {
	assert.NoError(t, DOI("10.1234/foo"))
	assert.Error(t, DOI("doi:10.1/x"))
}

func TestORCID(t *testing.T) {
	assert.NoError(t, ORCID("0123-4567-3456-6789"))
	assert.NoError(t, ORCID("0123-4567-3456-678X"))
	assert.Error(t, ORCID("01234567-3456-6780"))
	assert.Error(t, ORCID("0x23-4567-3456-6780"))
}

func TestISSN(t *testing.T) {
	assert.NoError(t, ISSN("1234-5678"))
	assert.NoError(t, ISSN("1234-567X"))
	assert.Error(t, ISSN("12345678"))
}

func TestPMID(t *testing.T) {
	assert.NoError(t, PMID("1234"))
	assert.Error(t, PMID("PMC1234"))
}

func TestPMCID(t *testing.T) {
	assert.NoError(t, PMCID("PMC12345"))
	assert.Error(t, PMCID("12345"))
}

func TestWikidataQID(t *testing.T) {
	assert.NoError(t, WikidataQID("Q1234"))
	assert.Error(t, WikidataQID("1234"))
}

func TestMD5(t *testing.T) {
	assert.NoError(t, MD5("1b39813549077b2347c0f370c3864b40"))
	assert.Error(t, MD5("1g39813549077b2347c0f370c3864b40"))
	// Uppercase is rejected outright, not normalized.
	assert.Error(t, MD5("1B39813549077B2347C0F370c3864b40"))
	assert.Error(t, MD5("1b39813549077b2347c0f370c3864b4"))
	assert.Error(t, MD5("1b39813549077b2347c0f370c3864b411"))
}

func TestSHA1(t *testing.T) {
	assert.NoError(t, SHA1("e9dd75237c94b209dc3ccd52722de6931a310ba3"))
	assert.Error(t, SHA1("g9dd75237c94b209dc3ccd52722de6931a310ba3"))
	assert.Error(t, SHA1("e9DD75237C94B209DC3CCD52722de6931a310ba3"))
	assert.Error(t, SHA1("e9dd75237c94b209dc3ccd52722de6931a310ba"))
	assert.Error(t, SHA1("e9dd75237c94b209dc3ccd52722de6931a310ba33"))
}

func TestSHA256(t *testing.T) {
	assert.NoError(t, SHA256("cb1c378f464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e452"))
	assert.Error(t, SHA256("gb1c378f464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e452"))
	assert.Error(t, SHA256("UB1C378F464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e452"))
	assert.Error(t, SHA256("cb1c378f464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e45"))
	assert.Error(t, SHA256("cb1c378f464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e4522"))
}

func TestISBN13(t *testing.T) {
	assert.NoError(t, ISBN13("9780306406157"))
	assert.Error(t, ISBN13("9780306406158"))
	assert.Error(t, ISBN13("97803064061"))
	assert.Error(t, ISBN13("978030640615X"))
}

func TestReleaseType(t *testing.T) {
	assert.NoError(t, ReleaseType("book"))
	assert.NoError(t, ReleaseType("article-journal"))
	assert.NoError(t, ReleaseType("standard"))
	assert.Error(t, ReleaseType("journal-article"))
	assert.Error(t, ReleaseType("BOOK"))
	assert.Error(t, ReleaseType("book "))
}

func TestContribRole(t *testing.T) {
	assert.NoError(t, ContribRole("author"))
	assert.NoError(t, ContribRole("editor"))
	assert.Error(t, ContribRole("chair"))
	assert.Error(t, ContribRole("EDITOR"))
	assert.Error(t, ContribRole("editor "))
}
