package service

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jjenkins/rulescout/internal/fedreg"
	"github.com/jjenkins/rulescout/internal/model"
	"github.com/jjenkins/rulescout/internal/reconcile"
	"github.com/jjenkins/rulescout/internal/regsgov"
	"github.com/jjenkins/rulescout/internal/store"
)

// DiscoveryStats tracks discovery statistics
type DiscoveryStats struct {
	Total       int
	Created     int
	Known       int
	Corrections int
	Failed      int
}

// Discoverer scans the Federal Register for recent proposed rules and
// creates destination records for the ones not seen before
type Discoverer struct {
	register  *fedreg.Client
	regsGov   *regsgov.Client
	rules     *store.RuleStore
	audit     *store.AuditStore
	window    time.Duration
	logger    *log.Logger
	errLogger *log.Logger
}

// NewDiscoverer creates a new Discoverer scanning the trailing window. The
// audit store may be nil.
func NewDiscoverer(register *fedreg.Client, regsGov *regsgov.Client, rules *store.RuleStore, audit *store.AuditStore, window time.Duration) *Discoverer {
	return &Discoverer{
		register:  register,
		regsGov:   regsGov,
		rules:     rules,
		audit:     audit,
		window:    window,
		logger:    log.New(os.Stdout, "", log.LstdFlags),
		errLogger: log.New(os.Stderr, "ERROR: ", log.LstdFlags),
	}
}

// Run executes one discovery batch. A single rule failing does not abort
// the batch.
func (d *Discoverer) Run(ctx context.Context) (*DiscoveryStats, error) {
	stats := &DiscoveryStats{}

	d.logger.Println("Loading known document numbers...")
	known, err := d.rules.KnownDocumentNumbers(ctx)
	if err != nil {
		return nil, err
	}
	d.logger.Printf("Found %d existing rules", len(known))

	runID := d.beginRun(ctx, "discover")

	from := time.Now().Add(-d.window)
	d.logger.Printf("Scanning proposed rules published since %s...", from.Format("2006-01-02"))

	it := d.register.ListProposedRules(from, time.Time{})
	for it.Next(ctx) {
		select {
		case <-ctx.Done():
			d.finishRun(ctx, runID, stats)
			return stats, ctx.Err()
		default:
		}

		summary := it.Summary()
		stats.Total++

		if known[summary.DocumentNumber] {
			stats.Known++
			continue
		}

		d.logger.Printf("Discovering %s: %s", summary.DocumentNumber, summary.Title)
		if err := d.discoverRule(ctx, runID, summary.DocumentNumber, stats); err != nil {
			d.errLogger.Printf("Failed to discover %s: %v", summary.DocumentNumber, err)
			stats.Failed++
			continue
		}
	}
	if err := it.Err(); err != nil {
		d.finishRun(ctx, runID, stats)
		return stats, err
	}

	d.finishRun(ctx, runID, stats)
	return stats, nil
}

func (d *Discoverer) discoverRule(ctx context.Context, runID int, documentNumber string, stats *DiscoveryStats) error {
	doc, err := d.register.GetDocument(ctx, documentNumber)
	if err != nil {
		return err
	}

	// TODO: parse the correction_of document URL and update the original
	// record instead of skipping the correction filing.
	if doc.CorrectionOf != "" {
		d.logger.Printf("  Skipping %s: correction of %s", documentNumber, doc.CorrectionOf)
		stats.Corrections++
		return nil
	}

	rule, err := fedreg.ParseProposedRule(doc)
	if err != nil {
		return err
	}

	authority, err := d.register.GetRuleAuthority(ctx, doc)
	if err != nil {
		return err
	}
	rule.Authority = authority

	if err := d.attachDocketDocuments(ctx, rule); err != nil {
		return err
	}

	d.printRule(rule)

	if err := d.rules.CreateRule(ctx, reconcile.BuildCreate(rule)); err != nil {
		return err
	}

	if d.audit != nil {
		if err := d.audit.RecordChange(ctx, runID, rule.FRDocumentNumber, "Created", "", rule.Title); err != nil {
			d.errLogger.Printf("Failed to audit %s: %v", rule.FRDocumentNumber, err)
		}
	}

	stats.Created++
	return nil
}

// attachDocketDocuments fetches the cross-referenced Regulations.gov
// documents and their dockets. The cross-reference endpoint returns
// summaries only, so each document is re-fetched for full detail.
func (d *Discoverer) attachDocketDocuments(ctx context.Context, rule *model.ProposedRule) error {
	summaries, err := d.regsGov.FindDocumentsByRegisterID(ctx, rule.FRDocumentNumber)
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		detail, err := d.regsGov.GetDocument(ctx, summary.ID)
		if err != nil {
			return err
		}

		document := detail.Model()
		if detail.DocketID != "" {
			docket, err := d.regsGov.GetDocket(ctx, detail.DocketID)
			if err != nil {
				return err
			}
			document.Docket = docket
			rule.AddRIN(docket.RIN)
		}

		rule.DocketDocuments = append(rule.DocketDocuments, document)
	}

	return nil
}

// printRule logs the assembled record before it is written, so every
// create leaves an auditable trail
func (d *Discoverer) printRule(rule *model.ProposedRule) {
	d.logger.Println("  Rule data:")
	d.logger.Printf("    title:            %s", rule.Title)
	d.logger.Printf("    citation:         %s", rule.FRCitation)
	d.logger.Printf("    document number:  %s", rule.FRDocumentNumber)
	d.logger.Printf("    publication date: %s", rule.FRPublicationDate.Format("2006-01-02"))
	d.logger.Printf("    agencies:         %d", len(rule.Agencies))
	d.logger.Printf("    topics:           %v", rule.FRTopics)
	d.logger.Printf("    rins:             %v", rule.RINs)
	if rule.CommentEndDate != nil {
		d.logger.Printf("    comments close:   %s", rule.CommentEndDate.Format("2006-01-02"))
	}
	for _, document := range rule.DocketDocuments {
		if document.Docket != nil {
			d.logger.Printf("    document %s (docket %s)", document.ID, document.Docket.ID)
		} else {
			d.logger.Printf("    document %s (no docket)", document.ID)
		}
		if document.CommentEndDate != nil {
			d.logger.Printf("      comment end: %s", document.CommentEndDate.Format(time.RFC3339))
		}
	}
}

func (d *Discoverer) beginRun(ctx context.Context, kind string) int {
	if d.audit == nil {
		return 0
	}
	runID, err := d.audit.BeginRun(ctx, kind)
	if err != nil {
		d.errLogger.Printf("Failed to begin audit run: %v", err)
		return 0
	}
	return runID
}

func (d *Discoverer) finishRun(ctx context.Context, runID int, stats *DiscoveryStats) {
	if d.audit == nil || runID == 0 {
		return
	}
	err := d.audit.FinishRun(ctx, runID, stats.Total, stats.Created,
		stats.Known, stats.Corrections, stats.Failed)
	if err != nil {
		d.errLogger.Printf("Failed to finish audit run: %v", err)
	}
}

// PrintSummary prints the discovery statistics
func (d *Discoverer) PrintSummary(stats *DiscoveryStats) {
	d.logger.Println("")
	d.logger.Println("=== Discovery Summary ===")
	d.logger.Printf("Total listed:    %d", stats.Total)
	d.logger.Printf("Created:         %d", stats.Created)
	d.logger.Printf("Already known:   %d", stats.Known)
	d.logger.Printf("Corrections:     %d (skipped)", stats.Corrections)
	d.logger.Printf("Failed:          %d", stats.Failed)
}
