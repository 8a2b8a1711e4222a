package regsgov

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", 0)
	client.BaseURL = server.URL
	return client
}

func TestGetDocket_Normalization(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dockets/D-1", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		fmt.Fprint(w, `{"data": {
			"id": "D-1",
			"attributes": {
				"title": "Test Docket",
				"docketType": "Rulemaking",
				"keywords": ["foo, bar", "baz,"],
				"rin": "Not Assigned"
			}
		}}`)
	}))

	docket, err := client.GetDocket(context.Background(), "D-1")
	require.NoError(t, err)
	assert.Equal(t, "D-1", docket.ID)
	assert.Equal(t, "https://www.regulations.gov/docket/D-1", docket.URL)
	assert.Equal(t, []string{"foo", "bar", "baz"}, docket.Keywords)

	// An unassigned RIN normalizes to absent.
	assert.Equal(t, "", docket.RIN)
}

func TestGetDocument(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {
			"id": "D-doc1",
			"attributes": {
				"docketId": "D-1",
				"commentStartDate": "2099-01-02T05:00:00Z",
				"commentEndDate": "2099-02-01T00:00:00Z"
			}
		}}`)
	}))

	doc, err := client.GetDocument(context.Background(), "D-doc1")
	require.NoError(t, err)
	assert.Equal(t, "D-doc1", doc.ID)
	assert.Equal(t, "D-1", doc.DocketID)
	require.NotNil(t, doc.CommentEndDate)
	assert.Equal(t, time.Date(2099, 2, 1, 0, 0, 0, 0, time.UTC), *doc.CommentEndDate)

	document := doc.Model()
	assert.Equal(t, "https://www.regulations.gov/document/D-doc1", document.URL)
	assert.Nil(t, document.Docket)
}

func TestGetDocument_AbsentDates(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {
			"id": "D-doc1",
			"attributes": {"docketId": "", "commentStartDate": null, "commentEndDate": null}
		}}`)
	}))

	doc, err := client.GetDocument(context.Background(), "D-doc1")
	require.NoError(t, err)
	assert.Nil(t, doc.CommentStartDate)
	assert.Nil(t, doc.CommentEndDate)
	assert.Equal(t, "", doc.DocketID)
}

func TestFindDocumentsByRegisterID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents", r.URL.Path)
		assert.Equal(t, "2099-00001", r.URL.Query().Get("filter[frDocNum]"))
		fmt.Fprint(w, `{"data": [
			{"id": "D-doc1", "attributes": {"docketId": "D-1", "commentEndDate": "2099-02-01T00:00:00Z"}},
			{"id": "D-doc2", "attributes": {"docketId": null, "commentEndDate": null}}
		]}`)
	}))

	docs, err := client.FindDocumentsByRegisterID(context.Background(), "2099-00001")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "D-doc1", docs[0].ID)
	assert.Equal(t, "D-1", docs[0].DocketID)
	require.NotNil(t, docs[0].CommentEndDate)
	assert.Equal(t, "", docs[1].DocketID)
	assert.Nil(t, docs[1].CommentEndDate)
}

func TestThrottleSpacesRequests(t *testing.T) {
	var times []time.Time
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		fmt.Fprint(w, `{"data": []}`)
	}))
	client.interval = 50 * time.Millisecond

	ctx := context.Background()
	_, err := client.FindDocumentsByRegisterID(ctx, "2099-00001")
	require.NoError(t, err)
	_, err = client.FindDocumentsByRegisterID(ctx, "2099-00002")
	require.NoError(t, err)

	require.Len(t, times, 2)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), 50*time.Millisecond)
}
