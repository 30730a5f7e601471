package catalog

import (
	"github.com/mm--/fatcat/pkg/fcid"
	"github.com/mm--/fatcat/pkg/validate"
	"gorm.io/gorm"
)

// ExternalIDLookup is exactly one external identifier supplied to a
// Lookup* call. Exactly one field must be set; spec.md §4.4 requires
// rejecting both zero and multiple supplied identifiers with
// MissingOrMultipleExternalId before the query ever runs.
type ExternalIDLookup struct {
	ISSNL       string
	ORCID       string
	MD5         string
	SHA1        string
	SHA256      string
	DOI         string
	PMID        string
	PMCID       string
	ISBN13      string
	CoreID      string
	WikidataQID string
}

func (l ExternalIDLookup) nonEmptyCount() int {
	n := 0
	for _, v := range []string{l.ISSNL, l.ORCID, l.MD5, l.SHA1, l.SHA256, l.DOI, l.PMID, l.PMCID, l.ISBN13, l.CoreID, l.WikidataQID} {
		if v != "" {
			n++
		}
	}
	return n
}

func requireExactlyOne(l ExternalIDLookup) error {
	if n := l.nonEmptyCount(); n != 1 {
		return NewError(MissingOrMultipleExternalId,
			"lookup requires exactly one external identifier, got %d", n)
	}
	return nil
}

// resolveLiveIdentByRev finds the live ident whose current revision
// satisfies the given gorm condition against the given rev table. A
// redirect ident has no current revision, so the ident returned is always
// a canonical one.
func resolveLiveIdentByRev(tx *gorm.DB, identTable, revModel string, cond string, args ...interface{}) (fcid.FatCatId, error) {
	var revIDs []fcid.FatCatId
	if err := tx.Table(revModel).Where(cond, args...).Pluck("rev_id", &revIDs).Error; err != nil {
		return fcid.FatCatId{}, WrapError(Internal, err, "looking up revision in %s", revModel)
	}
	if len(revIDs) == 0 {
		return fcid.FatCatId{}, NewError(NotFound, "no revision matches lookup")
	}
	var env IdentEnvelope
	err := tx.Table(identTable).Where("current_rev_id IN ? AND is_live = ?", revIDs, true).Limit(1).First(&env).Error
	if err == gorm.ErrRecordNotFound {
		return fcid.FatCatId{}, NewError(NotFound, "no live ident matches lookup")
	}
	if err != nil {
		return fcid.FatCatId{}, WrapError(Internal, err, "resolving ident in %s", identTable)
	}
	return env.IdentID, nil
}

// LookupContainer resolves a container by exactly one external
// identifier (ISSN-L or Wikidata QID).
func LookupContainer(tx *gorm.DB, l ExternalIDLookup, hide HideFlags) (*ContainerEntity, error) {
	if err := requireExactlyOne(l); err != nil {
		return nil, err
	}
	var ident fcid.FatCatId
	var err error
	switch {
	case l.ISSNL != "":
		if err := validate.ISSN(l.ISSNL); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, containerIdentTable, containerRevTable, "issnl = ?", l.ISSNL)
	case l.WikidataQID != "":
		if err := validate.WikidataQID(l.WikidataQID); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, containerIdentTable, containerRevTable, "wikidata_qid = ?", l.WikidataQID)
	default:
		return nil, NewError(MissingOrMultipleExternalId, "container lookup requires issnl or wikidata_qid")
	}
	if err != nil {
		return nil, err
	}
	out, err := ContainerCrud{}.Get(tx, ident, hide)
	if err != nil {
		return nil, err
	}
	return out.(*ContainerEntity), nil
}

// LookupCreator resolves a creator by exactly one external identifier
// (ORCID or Wikidata QID).
func LookupCreator(tx *gorm.DB, l ExternalIDLookup, hide HideFlags) (*CreatorEntity, error) {
	if err := requireExactlyOne(l); err != nil {
		return nil, err
	}
	var ident fcid.FatCatId
	var err error
	switch {
	case l.ORCID != "":
		if err := validate.ORCID(l.ORCID); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, creatorIdentTable, creatorRevTable, "orcid = ?", l.ORCID)
	case l.WikidataQID != "":
		if err := validate.WikidataQID(l.WikidataQID); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, creatorIdentTable, creatorRevTable, "wikidata_qid = ?", l.WikidataQID)
	default:
		return nil, NewError(MissingOrMultipleExternalId, "creator lookup requires orcid or wikidata_qid")
	}
	if err != nil {
		return nil, err
	}
	out, err := CreatorCrud{}.Get(tx, ident, hide)
	if err != nil {
		return nil, err
	}
	return out.(*CreatorEntity), nil
}

// LookupFile resolves a file by exactly one content hash (MD5, SHA-1,
// or SHA-256).
func LookupFile(tx *gorm.DB, l ExternalIDLookup) (*FileEntity, error) {
	if err := requireExactlyOne(l); err != nil {
		return nil, err
	}
	var ident fcid.FatCatId
	var err error
	switch {
	case l.MD5 != "":
		if err := validate.MD5(l.MD5); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, fileIdentTable, fileRevTable, "md5 = ?", l.MD5)
	case l.SHA1 != "":
		if err := validate.SHA1(l.SHA1); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, fileIdentTable, fileRevTable, "sha1 = ?", l.SHA1)
	case l.SHA256 != "":
		if err := validate.SHA256(l.SHA256); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, fileIdentTable, fileRevTable, "sha256 = ?", l.SHA256)
	default:
		return nil, NewError(MissingOrMultipleExternalId, "file lookup requires md5, sha1, or sha256")
	}
	if err != nil {
		return nil, err
	}
	out, err := FileCrud{}.Get(tx, ident, HideFlags{})
	if err != nil {
		return nil, err
	}
	return out.(*FileEntity), nil
}

// LookupRelease resolves a release by exactly one external identifier
// (DOI, PMID, PMCID, ISBN-13, CORE id, or Wikidata QID).
func LookupRelease(tx *gorm.DB, l ExternalIDLookup, hide HideFlags) (*ReleaseEntity, error) {
	if err := requireExactlyOne(l); err != nil {
		return nil, err
	}
	var ident fcid.FatCatId
	var err error
	switch {
	case l.DOI != "":
		if err := validate.DOI(l.DOI); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, releaseIdentTable, releaseRevTable, "doi = ?", l.DOI)
	case l.PMID != "":
		if err := validate.PMID(l.PMID); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, releaseIdentTable, releaseRevTable, "pmid = ?", l.PMID)
	case l.PMCID != "":
		if err := validate.PMCID(l.PMCID); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, releaseIdentTable, releaseRevTable, "pmcid = ?", l.PMCID)
	case l.ISBN13 != "":
		if err := validate.ISBN13(l.ISBN13); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, releaseIdentTable, releaseRevTable, "isbn13 = ?", l.ISBN13)
	case l.CoreID != "":
		ident, err = resolveLiveIdentByRev(tx, releaseIdentTable, releaseRevTable, "core_id = ?", l.CoreID)
	case l.WikidataQID != "":
		if err := validate.WikidataQID(l.WikidataQID); err != nil {
			return nil, wrapValidateError(err)
		}
		ident, err = resolveLiveIdentByRev(tx, releaseIdentTable, releaseRevTable, "wikidata_qid = ?", l.WikidataQID)
	default:
		return nil, NewError(MissingOrMultipleExternalId, "release lookup requires one of doi, pmid, pmcid, isbn13, core_id, wikidata_qid")
	}
	if err != nil {
		return nil, err
	}
	out, err := getReleaseExpanded(tx, ident, hide, ExpandFlags{})
	if err != nil {
		return nil, err
	}
	return out, nil
}
