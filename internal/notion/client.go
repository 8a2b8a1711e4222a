package notion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jjenkins/rulescout/internal/transport"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// Client handles communication with the Notion API
type Client struct {
	BaseURL string
	http    *transport.Client
}

// NewClient creates a new Notion API client
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		http: transport.NewClient(map[string]string{
			"Authorization":  "Bearer " + apiKey,
			"Notion-Version": apiVersion,
		}),
	}
}

// Page is one database row with its typed property cells
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// queryResponse represents one page of database query results
type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Sort orders database query results by a property
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// QueryDatabase runs a filtered query against a database, following result
// cursors until the listing is exhausted. The filter uses the API's nested
// condition shape.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter map[string]any, sorts []Sort) ([]Page, error) {
	var pages []Page
	cursor := ""

	for {
		request := make(map[string]any, 3)
		if filter != nil {
			request["filter"] = filter
		}
		if len(sorts) > 0 {
			request["sorts"] = sorts
		}
		if cursor != "" {
			request["start_cursor"] = cursor
		}

		body, err := json.Marshal(request)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}

		respBody, err := c.http.Post(ctx, fmt.Sprintf("%s/databases/%s/query", c.BaseURL, databaseID), body)
		if err != nil {
			return nil, fmt.Errorf("failed to query database %s: %w", databaseID, err)
		}

		var resp queryResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("failed to parse query response: %w", err)
		}

		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}

// CreatePage inserts a new row into a database. A rejected payload is fatal
// for the record; the error carries the full response body for diagnosis.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]Property) error {
	request := map[string]any{
		"parent": map[string]any{
			"type":        "database_id",
			"database_id": databaseID,
		},
		"properties": properties,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode page: %w", err)
	}

	if _, err := c.http.Post(ctx, c.BaseURL+"/pages", body); err != nil {
		return fmt.Errorf("failed to insert into database %s: %w", databaseID, err)
	}

	return nil
}

// UpdatePage patches the given property cells of an existing row, leaving
// all others untouched
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) error {
	request := map[string]any{
		"properties": properties,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode page update: %w", err)
	}

	if _, err := c.http.Patch(ctx, fmt.Sprintf("%s/pages/%s", c.BaseURL, pageID), body); err != nil {
		return fmt.Errorf("failed to update page %s: %w", pageID, err)
	}

	return nil
}
