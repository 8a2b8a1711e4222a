package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jjenkins/rulescout/internal/notion"
	"github.com/jjenkins/rulescout/internal/reconcile"
)

// RuleStore is the destination adapter: it maps reconciled field values
// into the Notion database's typed cells and decodes stored rows back into
// comparable records.
type RuleStore struct {
	notion     *notion.Client
	databaseID string
}

// NewRuleStore creates a RuleStore over the given database
func NewRuleStore(client *notion.Client, databaseID string) *RuleStore {
	return &RuleStore{notion: client, databaseID: databaseID}
}

// KnownDocumentNumbers returns the set of Federal Register document numbers
// already present, the natural key guarding against re-insertion
func (s *RuleStore) KnownDocumentNumbers(ctx context.Context) (map[string]bool, error) {
	filter := map[string]any{
		"property":  "FR Document Number",
		"rich_text": map[string]any{"is_not_empty": true},
	}

	pages, err := s.notion.QueryDatabase(ctx, s.databaseID, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load known document numbers: %w", err)
	}

	known := make(map[string]bool, len(pages))
	for _, page := range pages {
		if number := notion.CellAsText(page.Properties["FR Document Number"]); number != "" {
			known[number] = true
		}
	}

	return known, nil
}

// ActiveRules returns records whose comment period reaches into the window,
// plus records that have no comment-end date yet but were published inside
// it, ordered by publication date.
func (s *RuleStore) ActiveRules(ctx context.Context, since time.Time) ([]reconcile.StoredRecord, error) {
	cutoff := since.UTC().Format(time.RFC3339)
	filter := map[string]any{
		"or": []any{
			map[string]any{
				"property": "Comment End Date",
				"date":     map[string]any{"on_or_after": cutoff},
			},
			map[string]any{
				"and": []any{
					map[string]any{
						"property": "Comment End Date",
						"date":     map[string]any{"is_empty": true},
					},
					map[string]any{
						"property": "FR Publication Date",
						"date":     map[string]any{"on_or_after": cutoff},
					},
				},
			},
		},
	}
	sorts := []notion.Sort{{Property: "FR Publication Date", Direction: "ascending"}}

	pages, err := s.notion.QueryDatabase(ctx, s.databaseID, filter, sorts)
	if err != nil {
		return nil, fmt.Errorf("failed to query active rules: %w", err)
	}

	records := make([]reconcile.StoredRecord, 0, len(pages))
	for _, page := range pages {
		record, err := decodeStoredRecord(page)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func decodeStoredRecord(page notion.Page) (reconcile.StoredRecord, error) {
	record := reconcile.StoredRecord{
		PageID:           page.ID,
		FRDocumentNumber: notion.CellAsText(page.Properties["FR Document Number"]),
		DocumentIDs:      notion.TextList(page.Properties["Docket Documents"]),
		DocketIDs:        notion.TextList(page.Properties["Dockets"]),
		RINs:             notion.TextList(page.Properties["RINs"]),
		Keywords:         notion.Labels(page.Properties["Docket Keywords"]),
		Topics:           notion.Labels(page.Properties["FR Topics"]),
	}

	commentEnd, err := notion.CellAsDate(page.Properties["Comment End Date"])
	if err != nil {
		return record, fmt.Errorf("page %s has invalid Comment End Date: %w", page.ID, err)
	}
	record.CommentEndDate = commentEnd

	return record, nil
}

// CreateRule inserts a new record with the complete field set
func (s *RuleStore) CreateRule(ctx context.Context, fields reconcile.Fields) error {
	return s.notion.CreatePage(ctx, s.databaseID, encodeFields(fields))
}

// UpdateRule applies a sparse change set to an existing record
func (s *RuleStore) UpdateRule(ctx context.Context, pageID string, fields reconcile.Fields) error {
	return s.notion.UpdatePage(ctx, pageID, encodeFields(fields))
}

func encodeFields(fields reconcile.Fields) map[string]notion.Property {
	properties := make(map[string]notion.Property, len(fields))
	for name, value := range fields {
		properties[name] = encodeValue(value)
	}
	return properties
}

func encodeValue(value reconcile.Value) notion.Property {
	switch v := value.(type) {
	case reconcile.Title:
		return notion.TitleProperty(string(v))
	case reconcile.Text:
		return notion.RichTextProperty(string(v))
	case reconcile.URL:
		return notion.URLProperty(string(v))
	case reconcile.Labels:
		return notion.MultiSelectProperty(v)
	case reconcile.Links:
		items := make([]notion.LinkedID, len(v))
		for i, link := range v {
			items[i] = notion.LinkedID{ID: link.ID, URL: link.URL}
		}
		return notion.LinkedListProperty(items)
	case reconcile.Date:
		if v.Time != nil && v.DateOnly {
			return notion.DateOnlyProperty(*v.Time)
		}
		return notion.DateTimeProperty(v.Time)
	default:
		// Unreachable: Value is a closed set.
		return notion.Property{}
	}
}
