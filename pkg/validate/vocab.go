package validate

// releaseTypes is the fixed set of CSL release types plus the fatcat
// extensions, ported from original_source/rust/src/api_helpers.rs
// check_release_type.
var releaseTypes = map[string]bool{
	// Citation Style Language official types.
	"article":                true,
	"article-magazine":       true,
	"article-newspaper":      true,
	"article-journal":        true,
	"bill":                   true,
	"book":                   true,
	"broadcast":              true,
	"chapter":                true,
	"dataset":                true,
	"entry":                  true,
	"entry-dictionary":       true,
	"entry-encyclopedia":     true,
	"figure":                 true,
	"graphic":                true,
	"interview":              true,
	"legislation":            true,
	"legal_case":             true,
	"manuscript":             true,
	"map":                    true,
	"motion_picture":         true,
	"musical_score":          true,
	"pamphlet":               true,
	"paper-conference":       true,
	"patent":                 true,
	"post":                   true,
	"post-weblog":            true,
	"personal_communication": true,
	"report":                 true,
	"review":                 true,
	"review-book":            true,
	"song":                   true,
	"speech":                 true,
	"thesis":                 true,
	"treaty":                 true,
	"webpage":                true,
	// fatcat-specific extensions.
	"peer_review": true,
	"software":    true,
	"standard":    true,
}

// ReleaseType checks raw is one of the controlled release_type values.
func ReleaseType(raw string) error {
	if releaseTypes[raw] {
		return nil
	}
	return newErr(KindNotInControlledVocabulary, "release_type", raw,
		"not a valid release_type: %q (expected a CSL type, eg, 'article-journal', 'book')", raw)
}

// contribRoles is the fixed set of CSL contributor roles, ported from
// check_contrib_role.
var contribRoles = map[string]bool{
	"author":             true,
	"collection-editor":  true,
	"composer":           true,
	"container-author":   true,
	"director":           true,
	"editor":             true,
	"editorial-director": true,
	"editortranslator":   true,
	"illustrator":        true,
	"interviewer":        true,
	"original-author":    true,
	"recipient":          true,
	"reviewed-author":    true,
	"translator":         true,
}

// ContribRole checks raw is one of the controlled contrib.role values.
func ContribRole(raw string) error {
	if contribRoles[raw] {
		return nil
	}
	return newErr(KindNotInControlledVocabulary, "contrib_role", raw,
		"not a valid contrib.role: %q (expected a CSL type, eg, 'author', 'editor')", raw)
}
