package fedreg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jjenkins/rulescout/internal/transport"
)

const defaultBaseURL = "https://www.federalregister.gov/api/v1"

// Client handles communication with the Federal Register API
type Client struct {
	BaseURL string
	http    *transport.Client
}

// NewClient creates a new Federal Register API client
func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		http:    transport.NewClient(nil),
	}
}

// Document represents a Federal Register document detail payload
type Document struct {
	Title            string       `json:"title"`
	Abstract         string       `json:"abstract"`
	Agencies         []agencyJSON `json:"agencies"`
	Citation         string       `json:"citation"`
	DocumentNumber   string       `json:"document_number"`
	HTMLURL          string       `json:"html_url"`
	PDFURL           string       `json:"pdf_url"`
	PublicationDate  string       `json:"publication_date"`
	Topics           []string     `json:"topics"`
	RegulationIDNums []string     `json:"regulation_id_numbers"`
	CommentsCloseOn  string       `json:"comments_close_on"`
	CorrectionOf     string       `json:"correction_of"`
	FullTextXMLURL   string       `json:"full_text_xml_url"`
}

// agencyJSON represents an agency entry on a document. ID is a pointer
// because some listings are malformed and carry only a raw_name.
type agencyJSON struct {
	ID          *int   `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

// GetDocument retrieves the full detail for a document number
func (c *Client) GetDocument(ctx context.Context, documentNumber string) (*Document, error) {
	body, err := c.http.Get(ctx, fmt.Sprintf("%s/documents/%s", c.BaseURL, documentNumber))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", documentNumber, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", documentNumber, err)
	}

	return &doc, nil
}

// DocumentSummary represents one entry from the documents list endpoint
type DocumentSummary struct {
	DocumentNumber  string `json:"document_number"`
	Title           string `json:"title"`
	PublicationDate string `json:"publication_date"`
}

// documentsPage represents one page of the documents list endpoint
type documentsPage struct {
	Results     []DocumentSummary `json:"results"`
	NextPageURL string            `json:"next_page_url"`
}

// ListProposedRules returns an iterator over proposed rules published in the
// given window, oldest first. Pages are fetched lazily as the iterator
// advances.
func (c *Client) ListProposedRules(from, to time.Time) *RuleIterator {
	params := url.Values{}
	params.Set("order", "oldest")
	params.Add("conditions[type][]", "PRORULE")
	if !from.IsZero() {
		params.Set("conditions[publication_date][gte]", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("conditions[publication_date][lte]", to.Format("2006-01-02"))
	}

	return &RuleIterator{
		client:  c,
		nextURL: fmt.Sprintf("%s/documents?%s", c.BaseURL, params.Encode()),
	}
}

// RuleIterator walks the paginated documents list one summary at a time
type RuleIterator struct {
	client  *Client
	nextURL string
	page    []DocumentSummary
	idx     int
	err     error
}

// Next advances to the next summary, fetching the next page when the current
// one is exhausted. It returns false at the end of the listing or on error.
func (it *RuleIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}

	for it.idx >= len(it.page) {
		if it.nextURL == "" {
			return false
		}

		body, err := it.client.http.Get(ctx, it.nextURL)
		if err != nil {
			it.err = fmt.Errorf("failed to fetch documents page: %w", err)
			return false
		}

		var page documentsPage
		if err := json.Unmarshal(body, &page); err != nil {
			it.err = fmt.Errorf("failed to parse documents page: %w", err)
			return false
		}

		it.page = page.Results
		it.idx = 0
		it.nextURL = page.NextPageURL
	}

	it.idx++
	return true
}

// Summary returns the summary the iterator is positioned on
func (it *RuleIterator) Summary() DocumentSummary {
	return it.page[it.idx-1]
}

// Err returns the first error encountered while iterating
func (it *RuleIterator) Err() error {
	return it.err
}
