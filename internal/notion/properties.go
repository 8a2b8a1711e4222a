package notion

import (
	"encoding/json"
	"strings"
	"time"
)

// Request limits documented at
// https://developers.notion.com/reference/request-limits#limits-for-property-values
const (
	segmentLength = 2000
	maxSegments   = 100

	truncationMarker = "…"
)

// Link is a hyperlink target on a text span
type Link struct {
	URL string `json:"url"`
}

// TextContent is the content/link pair inside a text span
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link"`
}

// Text is a single rich text span
type Text struct {
	Type      string      `json:"type"`
	Text      TextContent `json:"text"`
	PlainText string      `json:"plain_text,omitempty"`
}

// Option is a multi-select label
type Option struct {
	Name string `json:"name"`
}

// DateValue is a date cell's payload
type DateValue struct {
	Start string `json:"start"`
}

// Property is a typed database cell value, both for reads and writes. Type
// selects which of the value fields is meaningful.
type Property struct {
	Type        string     `json:"type,omitempty"`
	Title       []Text     `json:"title,omitempty"`
	RichText    []Text     `json:"rich_text,omitempty"`
	MultiSelect []Option   `json:"multi_select,omitempty"`
	Date        *DateValue `json:"date,omitempty"`
	URL         string     `json:"url,omitempty"`
}

// MarshalJSON writes only the value field selected by Type. Empty lists and
// absent dates must still appear explicitly (an omitted value would leave
// the stored cell untouched instead of clearing it).
func (p Property) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2)
	switch p.Type {
	case "title":
		out["type"] = p.Type
		out["title"] = nonNilSpans(p.Title)
	case "rich_text":
		out["type"] = p.Type
		out["rich_text"] = nonNilSpans(p.RichText)
	case "multi_select":
		out["type"] = p.Type
		options := p.MultiSelect
		if options == nil {
			options = []Option{}
		}
		out["multi_select"] = options
	case "date":
		out["type"] = p.Type
		out["date"] = p.Date // explicit null clears the cell
	default:
		// URL properties are written without a type tag; an empty value
		// must be null, not "".
		if p.URL == "" {
			out["url"] = nil
		} else {
			out["url"] = p.URL
		}
	}
	return json.Marshal(out)
}

func nonNilSpans(spans []Text) []Text {
	if spans == nil {
		return []Text{}
	}
	return spans
}

// NewText builds a text span, optionally hyperlinked
func NewText(content, link string) Text {
	span := Text{Type: "text", Text: TextContent{Content: content}}
	if link != "" {
		span.Text.Link = &Link{URL: link}
	}
	return span
}

// RichTextProperty encodes text as a rich text cell, split into segments of
// at most 2000 characters and capped at 100 segments. Text exceeding the
// total budget is cut and the final segment ends with a truncation marker.
func RichTextProperty(text string) Property {
	var segments []Text
	remainder := []rune(text)
	for len(remainder) > 0 && len(segments) < maxSegments {
		length := segmentLength
		if length > len(remainder) {
			length = len(remainder)
		}
		segment := remainder[:length]
		remainder = remainder[length:]

		if len(remainder) > 0 && len(segments) == maxSegments-1 {
			segment = append(segment[:length-1], []rune(truncationMarker)...)
		}
		segments = append(segments, NewText(string(segment), ""))
	}

	return Property{Type: "rich_text", RichText: segments}
}

// LinkedID is an identifier with its canonical URL
type LinkedID struct {
	ID  string
	URL string
}

// LinkedListProperty encodes a list of (id, link) pairs as comma-separated
// hyperlinked text runs
func LinkedListProperty(items []LinkedID) Property {
	var spans []Text
	for i, item := range items {
		if i > 0 {
			spans = append(spans, NewText(", ", ""))
		}
		spans = append(spans, NewText(item.ID, item.URL))
	}
	return Property{Type: "rich_text", RichText: spans}
}

// TitleProperty encodes the page title cell
func TitleProperty(text string) Property {
	return Property{Type: "title", Title: []Text{NewText(text, "")}}
}

// MultiSelectProperty encodes a set of labels
func MultiSelectProperty(labels []string) Property {
	options := make([]Option, len(labels))
	for i, label := range labels {
		options[i] = Option{Name: label}
	}
	return Property{Type: "multi_select", MultiSelect: options}
}

// DateTimeProperty encodes a date cell from an optional timestamp; nil
// clears the cell
func DateTimeProperty(t *time.Time) Property {
	prop := Property{Type: "date"}
	if t != nil {
		prop.Date = &DateValue{Start: t.Format(time.RFC3339)}
	}
	return prop
}

// DateOnlyProperty encodes a day-granularity date cell
func DateOnlyProperty(t time.Time) Property {
	return Property{Type: "date", Date: &DateValue{Start: t.Format("2006-01-02")}}
}

// URLProperty encodes a url cell
func URLProperty(url string) Property {
	return Property{URL: url}
}

// CellAsText joins a text-valued cell's spans into a plain string. Empty
// cells decode to "".
func CellAsText(p Property) string {
	spans := p.RichText
	if p.Type == "title" {
		spans = p.Title
	}

	var b strings.Builder
	for _, span := range spans {
		if span.PlainText != "" {
			b.WriteString(span.PlainText)
		} else {
			b.WriteString(span.Text.Content)
		}
	}
	return b.String()
}

// CellAsDate decodes a date cell's start value, or nil when the cell is
// empty
func CellAsDate(p Property) (*time.Time, error) {
	if p.Date == nil || p.Date.Start == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, p.Date.Start)
	if err != nil {
		t, err = time.Parse("2006-01-02", p.Date.Start)
		if err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}

// TextList decodes a comma-separated text cell into trimmed entries
func TextList(p Property) []string {
	text := CellAsText(p)
	if text == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(text, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Labels decodes a multi-select cell into its label names
func Labels(p Property) []string {
	var labels []string
	for _, option := range p.MultiSelect {
		labels = append(labels, option.Name)
	}
	return labels
}
