package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/rulescout/internal/fedreg"
	"github.com/jjenkins/rulescout/internal/notion"
	"github.com/jjenkins/rulescout/internal/regsgov"
	"github.com/jjenkins/rulescout/internal/store"
)

// createPayload is the insert request shape captured off the wire
type createPayload struct {
	Parent struct {
		DatabaseID string `json:"database_id"`
	} `json:"parent"`
	Properties map[string]notion.Property `json:"properties"`
}

func quietLoggers(d *Discoverer) {
	d.logger = log.New(io.Discard, "", 0)
	d.errLogger = log.New(io.Discard, "", 0)
}

// fakeRegister serves a single-document listing plus its detail and full
// text XML
func fakeRegister(t *testing.T, detail func(serverURL string) string) *fedreg.Client {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"results": [{"document_number": "2099-00001", "title": "Test Rule"}],
			"next_page_url": null
		}`)
	})
	mux.HandleFunc("/documents/2099-00001", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detail(server.URL))
	})
	mux.HandleFunc("/full.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<RULE><AUTH><HD>Authority:</HD><P>5 U.S.C. 552</P></AUTH></RULE>`)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := fedreg.NewClient()
	client.BaseURL = server.URL
	return client
}

func fakeRegsGov(t *testing.T) *regsgov.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2099-00001", r.URL.Query().Get("filter[frDocNum]"))
		fmt.Fprint(w, `{"data": [{"id": "D-doc1", "attributes": {"docketId": "D-1"}}]}`)
	})
	mux.HandleFunc("/documents/D-doc1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {
			"id": "D-doc1",
			"attributes": {"docketId": "D-1", "commentEndDate": "2099-02-01T00:00:00Z"}
		}}`)
	})
	mux.HandleFunc("/dockets/D-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {
			"id": "D-1",
			"attributes": {
				"title": "Test Docket",
				"docketType": "Rulemaking",
				"keywords": ["foo, bar"],
				"rin": "1234-AB00"
			}
		}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := regsgov.NewClient("test-key", 0)
	client.BaseURL = server.URL
	return client
}

// fakeRules serves an empty known set and captures inserted pages
func fakeRules(t *testing.T, known string, created *[]createPayload) *store.RuleStore {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/databases/db-1/query", func(w http.ResponseWriter, r *http.Request) {
		if known == "" {
			fmt.Fprint(w, `{"results": [], "has_more": false}`)
			return
		}
		fmt.Fprintf(w, `{"results": [{
			"id": "page-1",
			"properties": {
				"FR Document Number": {
					"type": "rich_text",
					"rich_text": [{"type": "text", "plain_text": %q}]
				}
			}
		}], "has_more": false}`, known)
	})
	mux.HandleFunc("/pages", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload createPayload
		require.NoError(t, json.Unmarshal(body, &payload))
		*created = append(*created, payload)
		fmt.Fprint(w, `{}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := notion.NewClient("test-key")
	client.BaseURL = server.URL
	return store.NewRuleStore(client, "db-1")
}

func TestDiscovererRun(t *testing.T) {
	register := fakeRegister(t, func(serverURL string) string {
		return fmt.Sprintf(`{
			"title": "Test Rule",
			"abstract": "An abstract with NO<inf>x</inf> markup.",
			"citation": "99 FR 1234",
			"document_number": "2099-00001",
			"html_url": "https://www.federalregister.gov/d/2099-00001",
			"pdf_url": "https://www.govinfo.gov/2099-00001.pdf",
			"publication_date": "2099-01-15",
			"topics": ["Water"],
			"regulation_id_numbers": [],
			"comments_close_on": "2099-01-20",
			"correction_of": null,
			"full_text_xml_url": %q,
			"agencies": [
				{"name": "Office of Inspector General"},
				{"id": 17, "name": "Test Agency"}
			]
		}`, serverURL+"/full.xml")
	})

	var created []createPayload
	rules := fakeRules(t, "", &created)

	d := NewDiscoverer(register, fakeRegsGov(t), rules, nil, 48*time.Hour)
	quietLoggers(d)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 0, stats.Failed)

	require.Len(t, created, 1)
	payload := created[0]
	assert.Equal(t, "db-1", payload.Parent.DatabaseID)

	props := payload.Properties
	assert.Equal(t, "2099-00001", notion.CellAsText(props["FR Document Number"]))
	assert.Equal(t, "An abstract with NOx markup.", notion.CellAsText(props["Abstract"]))
	assert.Equal(t, "5 U.S.C. 552", notion.CellAsText(props["Authority"]))
	assert.Equal(t, "D-doc1", notion.CellAsText(props["Docket Documents"]))
	assert.Equal(t, "D-1", notion.CellAsText(props["Dockets"]))

	// The malformed agency entry is dropped; the record survives.
	assert.Equal(t, []string{"Test Agency"}, notion.Labels(props["Agencies"]))

	// The docket's RIN is merged in and its keywords are split and sorted.
	assert.Equal(t, "1234-AB00", notion.CellAsText(props["RINs"]))
	assert.Equal(t, []string{"bar", "foo"}, notion.Labels(props["Docket Keywords"]))

	// The docket document's deadline wins over the register close date.
	require.NotNil(t, props["Comment End Date"].Date)
	assert.Equal(t, "2099-02-01T00:00:00Z", props["Comment End Date"].Date.Start)
}

func TestDiscovererRun_SkipsKnownRules(t *testing.T) {
	register := fakeRegister(t, func(string) string { return `{}` })

	var created []createPayload
	rules := fakeRules(t, "2099-00001", &created)

	d := NewDiscoverer(register, fakeRegsGov(t), rules, nil, 48*time.Hour)
	quietLoggers(d)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Known)
	assert.Equal(t, 0, stats.Created)
	assert.Empty(t, created)
}

func TestDiscovererRun_SkipsCorrections(t *testing.T) {
	register := fakeRegister(t, func(string) string {
		return `{
			"title": "Correcting amendment",
			"document_number": "2099-00001",
			"publication_date": "2099-01-15",
			"correction_of": "https://api.federalregister.gov/v1/documents/2098-99999"
		}`
	})

	var created []createPayload
	rules := fakeRules(t, "", &created)

	d := NewDiscoverer(register, fakeRegsGov(t), rules, nil, 48*time.Hour)
	quietLoggers(d)

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Corrections)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 0, stats.Failed)
	assert.Empty(t, created)
}
