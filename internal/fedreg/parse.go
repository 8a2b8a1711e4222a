package fedreg

import (
	"fmt"
	"time"

	"github.com/jjenkins/rulescout/internal/model"
)

// ParseProposedRule converts a document detail payload into the record
// model. Missing required fields make the whole record unusable; malformed
// agency entries are dropped individually.
func ParseProposedRule(doc *Document) (*model.ProposedRule, error) {
	if doc.DocumentNumber == "" {
		return nil, fmt.Errorf("document has no document_number")
	}
	if doc.Title == "" {
		return nil, fmt.Errorf("document %s has no title", doc.DocumentNumber)
	}

	publicationDate, err := time.Parse("2006-01-02", doc.PublicationDate)
	if err != nil {
		return nil, fmt.Errorf("document %s has invalid publication_date %q: %w",
			doc.DocumentNumber, doc.PublicationDate, err)
	}

	rule := &model.ProposedRule{
		Title:             doc.Title,
		Abstract:          model.StripMarkup(doc.Abstract),
		FRCitation:        doc.Citation,
		FRDocumentNumber:  doc.DocumentNumber,
		FRHTMLURL:         doc.HTMLURL,
		FRPDFURL:          doc.PDFURL,
		FRPublicationDate: publicationDate,
		FRTopics:          model.SortedUnique(doc.Topics),
	}

	for _, agency := range doc.Agencies {
		// Some listings are malformed, carrying only a raw_name. Drop the
		// entry, not the record.
		if agency.ID == nil {
			continue
		}
		rule.Agencies = append(rule.Agencies, model.Agency{
			ID:          *agency.ID,
			Name:        agency.Name,
			ShortName:   agency.ShortName,
			URL:         agency.URL,
			Description: agency.Description,
			Slug:        agency.Slug,
		})
	}

	for _, rin := range doc.RegulationIDNums {
		rule.AddRIN(rin)
	}

	// The register's own closing date is less detailed than the docket
	// data, so it serves only as a fallback.
	if doc.CommentsCloseOn != "" {
		closeOn, err := time.Parse("2006-01-02", doc.CommentsCloseOn)
		if err != nil {
			return nil, fmt.Errorf("document %s has invalid comments_close_on %q: %w",
				doc.DocumentNumber, doc.CommentsCloseOn, err)
		}
		closeOn = closeOn.UTC()
		rule.CommentEndDate = &closeOn
	}

	return rule, nil
}
