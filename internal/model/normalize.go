package model

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var markupPattern = regexp.MustCompile(`</?\w+[^>]*>`)

// StripMarkup removes embedded markup tags from abstract text. The register
// sometimes includes <inf> (or the GPO XML equivalent <E T="52">) for
// subscripts, which the destination store cannot represent.
func StripMarkup(text string) string {
	return markupPattern.ReplaceAllString(text, "")
}

// NormalizeRIN returns the RIN with unassigned placeholders collapsed to
// the empty string.
func NormalizeRIN(rin string) string {
	rin = strings.TrimSpace(rin)
	if strings.EqualFold(rin, "not assigned") {
		return ""
	}
	return rin
}

// CleanKeywords normalizes a docket's raw keyword list. A single entry
// containing comma+space-separated terms is split into multiple keywords;
// comma-without-space is chemical nomenclature and stays one term. Terms
// are trimmed of stray commas and spaces, and any remaining literal comma
// becomes a semicolon because the destination reserves commas in
// multi-select labels.
func CleanKeywords(raw []string) []string {
	var keywords []string
	for _, entry := range raw {
		for _, term := range strings.Split(entry, ", ") {
			term = strings.Trim(term, ", ")
			if term == "" {
				continue
			}
			keywords = append(keywords, strings.ReplaceAll(term, ",", ";"))
		}
	}
	return keywords
}

// SortedUnique returns the deduplicated values in lexicographic order.
func SortedUnique(values []string) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	sort.Strings(unique)
	return unique
}

// TruncateToMinute drops seconds and finer precision, normalizing to UTC.
// The destination store's date cells only carry minute-level precision.
func TruncateToMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}
