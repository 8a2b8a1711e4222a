package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jjenkins/rulescout/internal/model"
)

// StoredRecord is the destination store's current view of one rule, decoded
// back into comparable values
type StoredRecord struct {
	PageID           string
	FRDocumentNumber string
	CommentEndDate   *time.Time
	DocumentIDs      []string
	DocketIDs        []string
	RINs             []string
	Keywords         []string
	Topics           []string
}

// FoundDocument is one freshly fetched cross-reference summary
type FoundDocument struct {
	ID             string
	DocketID       string
	CommentEndDate *time.Time
}

// Diff describes what changed between the stored record and the fresh
// fetch, for the audit trail printed before any write
type Diff struct {
	NewDocuments  []string
	LostDocuments []string
	NewDockets    []string
	LostDockets   []string
	OldCommentEnd *time.Time
	NewCommentEnd *time.Time
}

// DocketsChanged reports whether the docket id set differs, which gates the
// extra per-docket metadata fetches.
func (d Diff) DocketsChanged() bool {
	return len(d.NewDockets) > 0 || len(d.LostDockets) > 0
}

// Refresh compares the stored record against freshly found documents and
// returns the sparse field updates plus the structured diff. Document and
// docket ids are compared as sets; updates list ids in sorted order so the
// stored representation stays stable. The comment-end date is seeded with
// the stored value so a recorded date never regresses.
func Refresh(stored StoredRecord, found []FoundDocument) (Fields, Diff) {
	updates := make(Fields)
	var diff Diff

	var foundDocs, foundDockets []string
	for _, doc := range found {
		foundDocs = append(foundDocs, doc.ID)
		if doc.DocketID != "" {
			foundDockets = append(foundDockets, doc.DocketID)
		}
	}

	diff.NewDocuments = setDifference(foundDocs, stored.DocumentIDs)
	diff.LostDocuments = setDifference(stored.DocumentIDs, foundDocs)
	diff.NewDockets = setDifference(foundDockets, stored.DocketIDs)
	diff.LostDockets = setDifference(stored.DocketIDs, foundDockets)

	if len(diff.NewDocuments) > 0 || len(diff.LostDocuments) > 0 {
		updates["Docket Documents"] = documentLinks(foundDocs)
	}
	if diff.DocketsChanged() {
		updates["Dockets"] = docketLinks(foundDockets)
	}

	latest := stored.CommentEndDate
	if latest != nil {
		truncated := model.TruncateToMinute(*latest)
		latest = &truncated
	}
	for _, doc := range found {
		if doc.CommentEndDate == nil {
			continue
		}
		truncated := model.TruncateToMinute(*doc.CommentEndDate)
		if latest == nil || truncated.After(*latest) {
			latest = &truncated
		}
	}

	diff.OldCommentEnd = stored.CommentEndDate
	diff.NewCommentEnd = latest
	if !sameTime(stored.CommentEndDate, latest) {
		updates["Comment End Date"] = Date{Time: latest}
	}

	return updates, diff
}

// MetadataFields recomputes the docket-dependent fields from freshly
// fetched dockets. Keywords fully replace the stored set; RINs only
// accumulate. Callers invoke this when the docket set changed or the
// always-refresh toggle is on.
func MetadataFields(stored StoredRecord, dockets []model.Docket) Fields {
	updates := make(Fields)

	var raw []string
	var rins []string
	for _, docket := range dockets {
		raw = append(raw, docket.Keywords...)
		if docket.RIN != "" {
			rins = append(rins, docket.RIN)
		}
	}

	keywords := model.SortedUnique(raw)
	if !sameSet(keywords, stored.Keywords) {
		updates["Docket Keywords"] = Labels(keywords)
		updates["Tags"] = CombinedTags(stored.Topics, keywords)
	}

	merged := MergeRINs(stored.RINs, rins)
	if !sameList(merged, stored.RINs) {
		updates["RINs"] = Text(strings.Join(merged, ", "))
	}

	return updates
}

// MergeRINs unions freshly found RINs into the stored list. Stored order is
// preserved and nothing is removed, except stale unassigned placeholders
// which are cleaned out first.
func MergeRINs(stored, found []string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, rin := range stored {
		rin = model.NormalizeRIN(rin)
		if rin == "" || seen[rin] {
			continue
		}
		seen[rin] = true
		merged = append(merged, rin)
	}
	for _, rin := range found {
		rin = model.NormalizeRIN(rin)
		if rin == "" || seen[rin] {
			continue
		}
		seen[rin] = true
		merged = append(merged, rin)
	}
	return merged
}

func documentLinks(ids []string) Links {
	return linkList(ids, "https://www.regulations.gov/document/%s")
}

func docketLinks(ids []string) Links {
	return linkList(ids, "https://www.regulations.gov/docket/%s")
}

func linkList(ids []string, urlFormat string) Links {
	sorted := model.SortedUnique(ids)
	links := make(Links, len(sorted))
	for i, id := range sorted {
		links[i] = Link{ID: id, URL: fmt.Sprintf(urlFormat, id)}
	}
	return links
}

func setDifference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, v := range b {
		inB[v] = true
	}
	var diff []string
	seen := make(map[string]bool)
	for _, v := range a {
		if !inB[v] && !seen[v] {
			seen[v] = true
			diff = append(diff, v)
		}
	}
	sort.Strings(diff)
	return diff
}

func sameSet(a, b []string) bool {
	return sameList(model.SortedUnique(a), model.SortedUnique(b))
}

func sameList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return model.TruncateToMinute(*a).Equal(model.TruncateToMinute(*b))
}
