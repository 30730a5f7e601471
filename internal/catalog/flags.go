package catalog

import "strings"

// ExpandFlags is the parsed form of a comma-separated `expand` query
// parameter (spec.md §4.6), ported from ExpandFlags in
// original_source/rust/src/api_helpers.rs. Unknown tokens are silently
// ignored; an absent parameter yields all-false.
type ExpandFlags struct {
	Files       bool
	Filesets    bool
	Webcaptures bool
	Container   bool
	Releases    bool
	Creators    bool
}

// ParseExpandFlags parses a comma-separated token list into an
// ExpandFlags. An empty string yields all-false.
func ParseExpandFlags(raw string) ExpandFlags {
	var f ExpandFlags
	for _, tok := range splitCSVTokens(raw) {
		switch tok {
		case "files":
			f.Files = true
		case "filesets":
			f.Filesets = true
		case "webcaptures":
			f.Webcaptures = true
		case "container":
			f.Container = true
		case "releases":
			f.Releases = true
		case "creators":
			f.Creators = true
		}
	}
	return f
}

// None reports whether every flag is false.
func (f ExpandFlags) None() bool {
	return !f.Files && !f.Filesets && !f.Webcaptures && !f.Container && !f.Releases && !f.Creators
}

// HideFlags is the parsed form of a comma-separated `hide` query
// parameter (spec.md §4.6), ported from HideFlags in
// original_source/rust/src/api_helpers.rs.
//
// The Rust source maps both "manifest" and "cdx" tokens onto the same
// underlying contribs-hiding field (a copy-paste bug called out in
// spec.md §9). Here each token governs its own field: Manifest and Cdx
// are independent of Contribs.
type HideFlags struct {
	Abstracts bool
	Refs      bool
	Contribs  bool
	Manifest  bool
	Cdx       bool
}

// ParseHideFlags parses a comma-separated token list into a HideFlags. An
// empty string yields all-false (nothing hidden).
func ParseHideFlags(raw string) HideFlags {
	var f HideFlags
	for _, tok := range splitCSVTokens(raw) {
		switch tok {
		case "abstracts":
			f.Abstracts = true
		case "refs":
			f.Refs = true
		case "contribs":
			f.Contribs = true
		case "manifest":
			f.Manifest = true
		case "cdx":
			f.Cdx = true
		}
	}
	return f
}

func splitCSVTokens(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
