package notion

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRichTextProperty_ShortText(t *testing.T) {
	prop := RichTextProperty("hello")
	require.Len(t, prop.RichText, 1)
	assert.Equal(t, "hello", prop.RichText[0].Text.Content)
}

func TestRichTextProperty_Empty(t *testing.T) {
	prop := RichTextProperty("")
	assert.Empty(t, prop.RichText)

	body, err := json.Marshal(prop)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rich_text","rich_text":[]}`, string(body))
}

func TestRichTextProperty_Segments(t *testing.T) {
	prop := RichTextProperty(strings.Repeat("a", 4500))
	require.Len(t, prop.RichText, 3)
	assert.Len(t, prop.RichText[0].Text.Content, 2000)
	assert.Len(t, prop.RichText[1].Text.Content, 2000)
	assert.Len(t, prop.RichText[2].Text.Content, 500)
}

func TestRichTextProperty_OverflowMarksTruncation(t *testing.T) {
	prop := RichTextProperty(strings.Repeat("a", 2000*100+5))
	require.Len(t, prop.RichText, 100)

	last := prop.RichText[99].Text.Content
	assert.True(t, strings.HasSuffix(last, "…"))
	assert.Equal(t, 2000, len([]rune(last)))
}

func TestRichTextProperty_ExactBudgetNoMarker(t *testing.T) {
	prop := RichTextProperty(strings.Repeat("a", 2000*100))
	require.Len(t, prop.RichText, 100)
	assert.False(t, strings.HasSuffix(prop.RichText[99].Text.Content, "…"))
}

func TestLinkedListProperty(t *testing.T) {
	prop := LinkedListProperty([]LinkedID{
		{ID: "D-1", URL: "https://www.regulations.gov/docket/D-1"},
		{ID: "D-2", URL: "https://www.regulations.gov/docket/D-2"},
	})

	require.Len(t, prop.RichText, 3)
	assert.Equal(t, "D-1", prop.RichText[0].Text.Content)
	require.NotNil(t, prop.RichText[0].Text.Link)
	assert.Equal(t, "https://www.regulations.gov/docket/D-1", prop.RichText[0].Text.Link.URL)
	assert.Equal(t, ", ", prop.RichText[1].Text.Content)
	assert.Nil(t, prop.RichText[1].Text.Link)
	assert.Equal(t, "D-2", prop.RichText[2].Text.Content)
}

func TestDateTimeProperty(t *testing.T) {
	ts := time.Date(2099, 2, 1, 10, 30, 0, 0, time.UTC)
	prop := DateTimeProperty(&ts)
	require.NotNil(t, prop.Date)
	assert.Equal(t, "2099-02-01T10:30:00Z", prop.Date.Start)
}

func TestDateTimeProperty_NilClearsCell(t *testing.T) {
	body, err := json.Marshal(DateTimeProperty(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"date","date":null}`, string(body))
}

func TestMultiSelectProperty_Marshal(t *testing.T) {
	body, err := json.Marshal(MultiSelectProperty([]string{"air", "water"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"multi_select","multi_select":[{"name":"air"},{"name":"water"}]}`, string(body))
}

func TestCellAsText_PrefersPlainText(t *testing.T) {
	prop := Property{
		Type: "rich_text",
		RichText: []Text{
			{Type: "text", PlainText: "D-doc1"},
			{Type: "text", PlainText: ", "},
			{Type: "text", PlainText: "D-doc2"},
		},
	}
	assert.Equal(t, "D-doc1, D-doc2", CellAsText(prop))
}

func TestCellAsText_Title(t *testing.T) {
	prop := Property{
		Type:  "title",
		Title: []Text{{Type: "text", Text: TextContent{Content: "Test Rule"}}},
	}
	assert.Equal(t, "Test Rule", CellAsText(prop))
}

func TestTextList(t *testing.T) {
	prop := Property{
		Type:     "rich_text",
		RichText: []Text{{Type: "text", PlainText: "D-doc1, D-doc2 , D-doc3"}},
	}
	assert.Equal(t, []string{"D-doc1", "D-doc2", "D-doc3"}, TextList(prop))
	assert.Nil(t, TextList(Property{Type: "rich_text"}))
}

func TestCellAsDate(t *testing.T) {
	got, err := CellAsDate(Property{Type: "date", Date: &DateValue{Start: "2099-02-01T10:30:00Z"}})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2099, 2, 1, 10, 30, 0, 0, time.UTC), *got)
}

func TestCellAsDate_DayGranularity(t *testing.T) {
	got, err := CellAsDate(Property{Type: "date", Date: &DateValue{Start: "2099-02-01"}})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2099, 2, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestCellAsDate_Empty(t *testing.T) {
	got, err := CellAsDate(Property{Type: "date"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLabels(t *testing.T) {
	prop := Property{Type: "multi_select", MultiSelect: []Option{{Name: "air"}, {Name: "water"}}}
	assert.Equal(t, []string{"air", "water"}, Labels(prop))
	assert.Nil(t, Labels(Property{Type: "multi_select"}))
}
