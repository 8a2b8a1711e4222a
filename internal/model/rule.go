package model

import (
	"time"
)

// Agency represents a federal agency attached to a proposed rule
type Agency struct {
	ID          int
	Name        string
	ShortName   string
	URL         string
	Description string
	Slug        string
}

// DocketType tags a docket as rulemaking or nonrulemaking
type DocketType string

const (
	DocketRulemaking    DocketType = "Rulemaking"
	DocketNonrulemaking DocketType = "Nonrulemaking"
)

// Docket represents a Regulations.gov docket
type Docket struct {
	ID       string
	Title    string
	URL      string
	Type     DocketType
	Keywords []string
	RIN      string // empty when absent or "not assigned"
}

// DocketDocument represents a single Regulations.gov document.
// Docket is nil when the filing agency does not participate in the
// public docket system.
type DocketDocument struct {
	ID               string
	URL              string
	CommentStartDate *time.Time
	CommentEndDate   *time.Time
	Docket           *Docket
}

// ProposedRule is the canonical unit of record, keyed by the Federal
// Register document number
type ProposedRule struct {
	Title             string
	Abstract          string
	Agencies          []Agency
	Authority         []string
	Corrections       []string
	FRCitation        string
	FRDocumentNumber  string
	FRHTMLURL         string
	FRPDFURL          string
	FRPublicationDate time.Time
	FRTopics          []string
	// CommentEndDate is the register's own comments_close_on value. It is a
	// fallback only; the display date also considers docket documents.
	CommentEndDate  *time.Time
	RINs            []string
	DocketDocuments []DocketDocument
}

// AddRIN appends a RIN in discovery order, skipping duplicates and
// unassigned placeholders.
func (r *ProposedRule) AddRIN(rin string) {
	rin = NormalizeRIN(rin)
	if rin == "" {
		return
	}
	for _, existing := range r.RINs {
		if existing == rin {
			return
		}
	}
	r.RINs = append(r.RINs, rin)
}
