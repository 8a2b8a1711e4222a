package regsgov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/jjenkins/rulescout/internal/model"
	"github.com/jjenkins/rulescout/internal/transport"
)

const (
	defaultBaseURL = "https://api.regulations.gov/v4"

	// DefaultRequestInterval keeps the client under the Regulations.gov
	// quota of 1000 requests per hour.
	DefaultRequestInterval = 3600 * time.Millisecond
)

// Client handles communication with the Regulations.gov API. Requests are
// self-throttled: each one waits out the configured interval since the
// previous request before going on the wire.
type Client struct {
	BaseURL     string
	http        *transport.Client
	interval    time.Duration
	lastRequest time.Time
}

// NewClient creates a new Regulations.gov API client. A zero interval
// disables the throttle.
func NewClient(apiKey string, interval time.Duration) *Client {
	return &Client{
		BaseURL:  defaultBaseURL,
		http:     transport.NewClient(map[string]string{"X-Api-Key": apiKey}),
		interval: interval,
	}
}

func (c *Client) throttle(ctx context.Context) error {
	if c.interval <= 0 {
		return nil
	}
	wait := c.interval - time.Since(c.lastRequest)
	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}
	return c.http.Get(ctx, url)
}

// docketResponse represents the /dockets/{id} payload
type docketResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Title      string   `json:"title"`
			DocketType string   `json:"docketType"`
			Keywords   []string `json:"keywords"`
			RIN        string   `json:"rin"`
		} `json:"attributes"`
	} `json:"data"`
}

// GetDocket retrieves a docket and normalizes it into the record model
func (c *Client) GetDocket(ctx context.Context, docketID string) (*model.Docket, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/dockets/%s", c.BaseURL, url.PathEscape(docketID)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch docket %s: %w", docketID, err)
	}

	var resp docketResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse docket %s: %w", docketID, err)
	}
	if resp.Data.ID == "" {
		return nil, fmt.Errorf("docket %s payload has no id", docketID)
	}

	return &model.Docket{
		ID:       resp.Data.ID,
		Title:    resp.Data.Attributes.Title,
		URL:      fmt.Sprintf("https://www.regulations.gov/docket/%s", resp.Data.ID),
		Type:     model.DocketType(resp.Data.Attributes.DocketType),
		Keywords: model.CleanKeywords(resp.Data.Attributes.Keywords),
		RIN:      model.NormalizeRIN(resp.Data.Attributes.RIN),
	}, nil
}

// Document represents a Regulations.gov document with the attributes this
// system consumes
type Document struct {
	ID               string
	DocketID         string
	CommentStartDate *time.Time
	CommentEndDate   *time.Time
}

// Model converts the document into a record-model DocketDocument. The
// owning docket, if any, is attached separately by the caller.
func (d Document) Model() model.DocketDocument {
	return model.DocketDocument{
		ID:               d.ID,
		URL:              fmt.Sprintf("https://www.regulations.gov/document/%s", d.ID),
		CommentStartDate: d.CommentStartDate,
		CommentEndDate:   d.CommentEndDate,
	}
}

// documentData is the wire shape shared by the document detail and list
// endpoints
type documentData struct {
	ID         string `json:"id"`
	Attributes struct {
		DocketID         string `json:"docketId"`
		CommentStartDate string `json:"commentStartDate"`
		CommentEndDate   string `json:"commentEndDate"`
	} `json:"attributes"`
}

func (d documentData) document() (Document, error) {
	doc := Document{
		ID:       d.ID,
		DocketID: d.Attributes.DocketID,
	}

	var err error
	if doc.CommentStartDate, err = parseTimestamp(d.Attributes.CommentStartDate); err != nil {
		return doc, fmt.Errorf("document %s has invalid commentStartDate: %w", d.ID, err)
	}
	if doc.CommentEndDate, err = parseTimestamp(d.Attributes.CommentEndDate); err != nil {
		return doc, fmt.Errorf("document %s has invalid commentEndDate: %w", d.ID, err)
	}

	return doc, nil
}

// parseTimestamp parses the API's ISO-8601 timestamps, normalizing to UTC.
// Timestamps without a zone offset are taken as UTC.
func parseTimestamp(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", value)
		if err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}

// GetDocument retrieves the full detail for a document id
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/documents/%s", c.BaseURL, url.PathEscape(documentID)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", documentID, err)
	}

	var resp struct {
		Data documentData `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", documentID, err)
	}
	if resp.Data.ID == "" {
		return nil, fmt.Errorf("document %s payload has no id", documentID)
	}

	doc, err := resp.Data.document()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindDocumentsByRegisterID looks up documents cross-referenced to a Federal
// Register document number. The list endpoint returns summaries only;
// discovery re-fetches each one for full detail.
func (c *Client) FindDocumentsByRegisterID(ctx context.Context, registerID string) ([]Document, error) {
	params := url.Values{}
	params.Set("filter[frDocNum]", registerID)

	body, err := c.get(ctx, fmt.Sprintf("%s/documents?%s", c.BaseURL, params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to find documents for %s: %w", registerID, err)
	}

	var resp struct {
		Data []documentData `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse documents for %s: %w", registerID, err)
	}

	documents := make([]Document, 0, len(resp.Data))
	for _, data := range resp.Data {
		doc, err := data.document()
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	return documents, nil
}
