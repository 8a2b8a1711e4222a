package reconcile

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jjenkins/rulescout/internal/model"
)

// The destination rejects rich text values past this length, and splitting
// a statutory authority blob across segments is not worth it for a page
// property.
const authorityLimit = 2000

var commaInLabel = regexp.MustCompile(`\s*,\s*`)

// BuildCreate computes the complete destination field set for a freshly
// discovered rule. There is no prior state to merge against.
func BuildCreate(rule *model.ProposedRule) Fields {
	keywords := CombinedKeywords(rule.DocketDocuments)

	var documents, dockets Links
	for _, doc := range rule.DocketDocuments {
		documents = append(documents, Link{ID: doc.ID, URL: doc.URL})
		if doc.Docket != nil {
			dockets = append(dockets, Link{ID: doc.Docket.ID, URL: doc.Docket.URL})
		}
	}

	agencies := make(Labels, len(rule.Agencies))
	for i, agency := range rule.Agencies {
		// Commas are reserved by the multi-select encoding.
		agencies[i] = commaInLabel.ReplaceAllString(agency.Name, " - ")
	}

	return Fields{
		"Title":               Title(rule.Title),
		"Rule Name":           Text(rule.Title),
		"Abstract":            Text(rule.Abstract),
		"FR Citation":         Text(rule.FRCitation),
		"FR Document Number":  Text(rule.FRDocumentNumber),
		"FR Link":             URL(rule.FRHTMLURL),
		"FR PDF":              URL(rule.FRPDFURL),
		"FR Publication Date": Date{Time: &rule.FRPublicationDate, DateOnly: true},
		"FR Topics":           tagLabels(rule.FRTopics),
		"Agencies":            agencies,
		"Authority":           Text(AuthorityText(rule.Authority)),
		"RINs":                Text(strings.Join(rule.RINs, ", ")),
		"Corrections":         Text(strings.Join(rule.Corrections, ", ")),
		"Docket Documents":    documents,
		"Dockets":             dockets,
		"Docket Keywords":     Labels(keywords),
		"Tags":                CombinedTags(rule.FRTopics, keywords),
		"Comment End Date":    Date{Time: LatestCommentEnd(rule.DocketDocuments, rule.CommentEndDate)},
	}
}

// LatestCommentEnd derives the display comment-end date: the maximum over
// every docket document's date and the rule's own fallback, or nil when none
// exist. Absent dates are identity elements, never minima.
func LatestCommentEnd(documents []model.DocketDocument, fallback *time.Time) *time.Time {
	var latest *time.Time
	consider := func(t *time.Time) {
		if t == nil {
			return
		}
		truncated := model.TruncateToMinute(*t)
		if latest == nil || truncated.After(*latest) {
			latest = &truncated
		}
	}

	consider(fallback)
	for _, doc := range documents {
		consider(doc.CommentEndDate)
	}
	return latest
}

// CombinedKeywords unions the keywords of every attached docket, deduped
// and sorted for display. Multiple documents often share one docket.
func CombinedKeywords(documents []model.DocketDocument) []string {
	var keywords []string
	for _, doc := range documents {
		if doc.Docket != nil {
			keywords = append(keywords, doc.Docket.Keywords...)
		}
	}
	return model.SortedUnique(keywords)
}

// CombinedTags unions topic tags and docket keywords into the denormalized
// search/filter label set
func CombinedTags(topics, keywords []string) Labels {
	return tagLabels(model.SortedUnique(append(append([]string{}, topics...), keywords...)))
}

func tagLabels(tags []string) Labels {
	labels := make(Labels, len(tags))
	for i, tag := range tags {
		labels[i] = strings.ReplaceAll(tag, ", ", " and ")
	}
	return labels
}

// AuthorityText joins citation strings with semicolons, cutting over-long
// text at 1999 characters plus an ellipsis marker
func AuthorityText(citations []string) string {
	text := strings.Join(citations, "; ")
	if utf8.RuneCountInString(text) >= authorityLimit {
		text = string([]rune(text)[:authorityLimit-1]) + "…"
	}
	return text
}
