package service

import (
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jjenkins/rulescout/internal/model"
	"github.com/jjenkins/rulescout/internal/reconcile"
	"github.com/jjenkins/rulescout/internal/regsgov"
	"github.com/jjenkins/rulescout/internal/store"
)

// RefreshStats tracks refresh statistics
type RefreshStats struct {
	Total     int
	Updated   int
	Unchanged int
	Failed    int
}

// Refresher re-fetches the docket data for active rules and applies the
// reconciled field changes
type Refresher struct {
	regsGov         *regsgov.Client
	rules           *store.RuleStore
	audit           *store.AuditStore
	window          time.Duration
	refreshMetadata bool
	logger          *log.Logger
	errLogger       *log.Logger
}

// NewRefresher creates a new Refresher considering rules active within the
// trailing window. When refreshMetadata is set, docket keywords and RINs
// are recomputed on every pass instead of only when the docket set changes.
// The audit store may be nil.
func NewRefresher(regsGov *regsgov.Client, rules *store.RuleStore, audit *store.AuditStore, window time.Duration, refreshMetadata bool) *Refresher {
	return &Refresher{
		regsGov:         regsGov,
		rules:           rules,
		audit:           audit,
		window:          window,
		refreshMetadata: refreshMetadata,
		logger:          log.New(os.Stdout, "", log.LstdFlags),
		errLogger:       log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// Run executes one refresh batch. A single record failing does not abort
// the batch.
func (r *Refresher) Run(ctx context.Context) (*RefreshStats, error) {
	stats := &RefreshStats{}

	since := time.Now().Add(-r.window)
	r.logger.Printf("Loading rules active since %s...", since.Format("2006-01-02"))

	records, err := r.rules.ActiveRules(ctx, since)
	if err != nil {
		return nil, err
	}

	stats.Total = len(records)
	r.logger.Printf("Found %d rules to refresh", stats.Total)

	runID := r.beginRun(ctx, "refresh")

	for idx, record := range records {
		select {
		case <-ctx.Done():
			r.finishRun(ctx, runID, stats)
			return stats, ctx.Err()
		default:
		}

		r.logger.Printf("[%d/%d] %s", idx+1, stats.Total, record.FRDocumentNumber)

		if err := r.refreshRule(ctx, runID, record, stats); err != nil {
			r.errLogger.Printf("Failed to refresh %s: %v", record.FRDocumentNumber, err)
			stats.Failed++
			continue
		}
	}

	r.finishRun(ctx, runID, stats)
	return stats, nil
}

func (r *Refresher) refreshRule(ctx context.Context, runID int, record reconcile.StoredRecord, stats *RefreshStats) error {
	summaries, err := r.regsGov.FindDocumentsByRegisterID(ctx, record.FRDocumentNumber)
	if err != nil {
		return err
	}

	found := make([]reconcile.FoundDocument, len(summaries))
	for i, summary := range summaries {
		found[i] = reconcile.FoundDocument{
			ID:             summary.ID,
			DocketID:       summary.DocketID,
			CommentEndDate: summary.CommentEndDate,
		}
	}

	updates, diff := reconcile.Refresh(record, found)
	r.printDiff(diff)

	if diff.DocketsChanged() || r.refreshMetadata {
		dockets, err := r.fetchDockets(ctx, found)
		if err != nil {
			return err
		}
		for field, value := range reconcile.MetadataFields(record, dockets) {
			updates[field] = value
		}
	}

	if len(updates) == 0 {
		stats.Unchanged++
		return nil
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	r.logger.Printf("  Updating: %s", strings.Join(fields, ", "))

	if err := r.rules.UpdateRule(ctx, record.PageID, updates); err != nil {
		return err
	}

	if r.audit != nil {
		for _, field := range fields {
			err := r.audit.RecordChange(ctx, runID, record.FRDocumentNumber, field,
				storedFieldString(record, field), valueString(updates[field]))
			if err != nil {
				r.errLogger.Printf("Failed to audit %s: %v", record.FRDocumentNumber, err)
			}
		}
	}

	stats.Updated++
	return nil
}

// fetchDockets retrieves every distinct docket referenced by the found
// documents. Each fetch costs a throttled API call, which is why metadata
// refresh is gated on the docket set changing.
func (r *Refresher) fetchDockets(ctx context.Context, found []reconcile.FoundDocument) ([]model.Docket, error) {
	seen := make(map[string]bool)
	var dockets []model.Docket
	for _, doc := range found {
		if doc.DocketID == "" || seen[doc.DocketID] {
			continue
		}
		seen[doc.DocketID] = true

		docket, err := r.regsGov.GetDocket(ctx, doc.DocketID)
		if err != nil {
			return nil, err
		}
		dockets = append(dockets, *docket)
	}
	return dockets, nil
}

func (r *Refresher) printDiff(diff reconcile.Diff) {
	for _, id := range diff.LostDocuments {
		r.logger.Printf("  Lost document: %s", id)
	}
	for _, id := range diff.NewDocuments {
		r.logger.Printf("  New document: %s", id)
	}
	for _, id := range diff.LostDockets {
		r.logger.Printf("  Lost docket: %s", id)
	}
	for _, id := range diff.NewDockets {
		r.logger.Printf("  New docket: %s", id)
	}
	if !timesEqual(diff.OldCommentEnd, diff.NewCommentEnd) {
		r.logger.Printf("  New comment deadline: %s (was %s)",
			timeString(diff.NewCommentEnd), timeString(diff.OldCommentEnd))
	}
}

func (r *Refresher) beginRun(ctx context.Context, kind string) int {
	if r.audit == nil {
		return 0
	}
	runID, err := r.audit.BeginRun(ctx, kind)
	if err != nil {
		r.errLogger.Printf("Failed to begin audit run: %v", err)
		return 0
	}
	return runID
}

func (r *Refresher) finishRun(ctx context.Context, runID int, stats *RefreshStats) {
	if r.audit == nil || runID == 0 {
		return
	}
	err := r.audit.FinishRun(ctx, runID, stats.Total, stats.Updated,
		stats.Unchanged, 0, stats.Failed)
	if err != nil {
		r.errLogger.Printf("Failed to finish audit run: %v", err)
	}
}

// PrintSummary prints the refresh statistics
func (r *Refresher) PrintSummary(stats *RefreshStats) {
	r.logger.Println("")
	r.logger.Println("=== Refresh Summary ===")
	r.logger.Printf("Total rules:     %d", stats.Total)
	r.logger.Printf("Updated:         %d", stats.Updated)
	r.logger.Printf("Unchanged:       %d", stats.Unchanged)
	r.logger.Printf("Failed:          %d", stats.Failed)
}

// valueString renders a field value for the audit trail
func valueString(value reconcile.Value) string {
	switch v := value.(type) {
	case reconcile.Text:
		return string(v)
	case reconcile.Title:
		return string(v)
	case reconcile.URL:
		return string(v)
	case reconcile.Labels:
		return strings.Join(v, ", ")
	case reconcile.Links:
		ids := make([]string, len(v))
		for i, link := range v {
			ids[i] = link.ID
		}
		return strings.Join(ids, ", ")
	case reconcile.Date:
		return timeString(v.Time)
	default:
		return ""
	}
}

// storedFieldString renders the previously stored value of a field for the
// audit trail
func storedFieldString(record reconcile.StoredRecord, field string) string {
	switch field {
	case "Docket Documents":
		return strings.Join(record.DocumentIDs, ", ")
	case "Dockets":
		return strings.Join(record.DocketIDs, ", ")
	case "RINs":
		return strings.Join(record.RINs, ", ")
	case "Docket Keywords":
		return strings.Join(record.Keywords, ", ")
	case "Comment End Date":
		return timeString(record.CommentEndDate)
	default:
		return ""
	}
}

func timeString(t *time.Time) string {
	if t == nil {
		return "(none)"
	}
	return t.Format(time.RFC3339)
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
