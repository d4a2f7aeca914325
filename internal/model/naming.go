package model

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fallbackBaseName is used when a label has no usable characters.
const fallbackBaseName = "watch"

var (
	resultsWord   = regexp.MustCompile(`(?i)results?`)
	nonAlnumSpace = regexp.MustCompile(`[^\p{L}\p{N} ]`)
	whitespace    = regexp.MustCompile(`\s+`)
	camelBoundary = regexp.MustCompile(`(\p{Ll})(\p{Lu})`)
	underscores   = regexp.MustCompile(`_+`)
)

// BaseName derives the file name stem of a watch's reports from its label.
//
// The first "result" or "results" (any case) is dropped, then everything
// but letters, digits and spaces is removed, spaces become underscores,
// camel-case boundaries are split ("MacBook" becomes "mac_book"), and the
// result is lower-cased with repeated and surrounding underscores removed.
// Letters outside ASCII are kept, so "Rīgas velosipēdi" becomes
// "rīgas_velosipēdi".
//
// Different labels can share a base name ("MacBook" and "Mac Book");
// configuration validation rejects such pairs.
func BaseName(label string) string {
	s := label
	if loc := resultsWord.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}
	s = nonAlnumSpace.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	s = cases.Lower(language.Und).String(s)
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fallbackBaseName
	}
	return s
}

// BaseName returns the file name stem of the watch's reports.
func (w Watch) BaseName() string {
	return BaseName(w.Label)
}
