// Package validate implements the controlled-vocabulary and external-
// identifier validators used to accept a revision (spec.md §4.2), ported
// from original_source/rust/src/api_helpers.rs's check_* functions.
// Patterns are compiled once at package load (spec.md §9 "Regex
// compilation") and reused across calls; every function is a pure,
// side-effect-free predicate over a string (spec.md P2).
package validate

import (
	"fmt"
	"regexp"
)

// Kind classifies why a validator rejected a value, mirroring spec.md §7's
// error taxonomy.
type Kind int

const (
	// KindMalformedExternalId marks a value that failed an identifier
	// syntax check (DOI, PMID, PMCID, QID, ISSN, ORCID).
	KindMalformedExternalId Kind = iota
	// KindMalformedChecksum marks a value that failed a checksum/hash
	// format check (MD5, SHA-1, SHA-256, ISBN-13).
	KindMalformedChecksum
	// KindNotInControlledVocabulary marks a value outside a fixed
	// enumeration (release_type, contrib.role).
	KindNotInControlledVocabulary
)

// Error reports a failed validation, carrying the Kind so callers (in
// internal/catalog) can map it to a catalog.Kind, and from there to the
// right HTTP status, without string matching.
type Error struct {
	Kind    Kind
	Field   string
	Value   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(kind Kind, field, value, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

var (
	doiPattern    = regexp.MustCompile(`^10\.\d{3,6}/.+$`)
	pmidPattern   = regexp.MustCompile(`^\d+$`)
	pmcidPattern  = regexp.MustCompile(`^PMC\d+$`)
	qidPattern    = regexp.MustCompile(`^Q\d+$`)
	issnPattern   = regexp.MustCompile(`^\d{4}-\d{3}[0-9X]$`)
	orcidPattern  = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
	md5Pattern    = regexp.MustCompile(`^[a-f0-9]{32}$`)
	sha1Pattern   = regexp.MustCompile(`^[a-f0-9]{40}$`)
	sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// DOI checks raw against the DOI syntax (not a resolver lookup).
func DOI(raw string) error {
	if doiPattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedExternalId, "doi", raw,
		"not a valid DOI: %q (expected, eg, '10.1234/aksjdfh')", raw)
}

// PMID checks raw against the PubMed ID syntax.
func PMID(raw string) error {
	if pmidPattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedExternalId, "pmid", raw,
		"not a valid PubMed ID (PMID): %q (expected, eg, '1234')", raw)
}

// PMCID checks raw against the PubMed Central ID syntax.
func PMCID(raw string) error {
	if pmcidPattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedExternalId, "pmcid", raw,
		"not a valid PubMed Central ID (PMCID): %q (expected, eg, 'PMC12345')", raw)
}

// WikidataQID checks raw against the Wikidata QID syntax.
func WikidataQID(raw string) error {
	if qidPattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedExternalId, "wikidata_qid", raw,
		"not a valid Wikidata QID: %q (expected, eg, 'Q1234')", raw)
}

// ISSN checks raw against the ISSN syntax (4 digits, hyphen, 3 digits + check char).
func ISSN(raw string) error {
	if issnPattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedExternalId, "issnl", raw,
		"not a valid ISSN: %q (expected, eg, '1234-5678')", raw)
}

// ORCID checks raw against the ORCID syntax.
func ORCID(raw string) error {
	if orcidPattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedExternalId, "orcid", raw,
		"not a valid ORCID: %q (expected, eg, '0123-4567-3456-6789')", raw)
}

// MD5 checks raw is 32 lowercase hex characters. Uppercase is rejected, not
// normalized (spec.md round-trip scenario 4).
func MD5(raw string) error {
	if md5Pattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedChecksum, "md5", raw,
		"not a valid MD5: %q (expected lower-case hex, eg, '1b39813549077b2347c0f370c3864b40')", raw)
}

// SHA1 checks raw is 40 lowercase hex characters.
func SHA1(raw string) error {
	if sha1Pattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedChecksum, "sha1", raw,
		"not a valid SHA-1: %q (expected lower-case hex, eg, 'e9dd75237c94b209dc3ccd52722de6931a310ba3')", raw)
}

// SHA256 checks raw is 64 lowercase hex characters.
func SHA256(raw string) error {
	if sha256Pattern.MatchString(raw) {
		return nil
	}
	return newErr(KindMalformedChecksum, "sha256", raw,
		"not a valid SHA-256: %q (expected lower-case hex, eg, 'cb1c378f464d5935ddaa8de28446d82638396c61f042295d7fb85e3cccc9e452')", raw)
}

// ISBN13 checks raw is a syntactically valid ISBN-13 (13 digits) whose
// modulo-10 weighted checksum is correct. The original fatcat source has no
// ISBN-13 validator (spec.md §9 "known source defects to fix"); this is the
// supplemented implementation.
func ISBN13(raw string) error {
	if len(raw) != 13 {
		return newErr(KindMalformedChecksum, "isbn13", raw,
			"not a valid ISBN-13: %q (expected 13 digits, eg, '9780306406157')", raw)
	}
	sum := 0
	for i, c := range raw {
		if c < '0' || c > '9' {
			return newErr(KindMalformedChecksum, "isbn13", raw,
				"not a valid ISBN-13: %q (expected 13 digits, eg, '9780306406157')", raw)
		}
		digit := int(c - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	if sum%10 != 0 {
		return newErr(KindMalformedChecksum, "isbn13", raw,
			"not a valid ISBN-13: %q (checksum digit incorrect)", raw)
	}
	return nil
}
