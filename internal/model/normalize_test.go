package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "NOx emissions", StripMarkup("NO<inf>x</inf> emissions"))
	assert.Equal(t, "NOx emissions", StripMarkup(`NO<E T="52">x</E> emissions`))
	assert.Equal(t, "plain text", StripMarkup("plain text"))
}

func TestNormalizeRIN(t *testing.T) {
	assert.Equal(t, "1234-AB00", NormalizeRIN("1234-AB00"))
	assert.Equal(t, "", NormalizeRIN("Not Assigned"))
	assert.Equal(t, "", NormalizeRIN("not assigned"))
	assert.Equal(t, "", NormalizeRIN("NOT ASSIGNED"))
	assert.Equal(t, "", NormalizeRIN("  "))
}

func TestCleanKeywords_SplitsCommaSpace(t *testing.T) {
	assert.Equal(t, []string{"term-a", "term-b"}, CleanKeywords([]string{"term-a, term-b"}))
}

func TestCleanKeywords_ChemicalNamesStayOneTerm(t *testing.T) {
	keywords := CleanKeywords([]string{"1,2,3,4-tetrafluoropropene"})
	assert.Len(t, keywords, 1)
	assert.Equal(t, "1;2;3;4-tetrafluoropropene", keywords[0])
}

func TestCleanKeywords_TrimsStrayCommas(t *testing.T) {
	assert.Equal(t, []string{"pesticides"}, CleanKeywords([]string{"pesticides,"}))
	assert.Equal(t, []string{"air quality"}, CleanKeywords([]string{" air quality, "}))
}

func TestCleanKeywords_DropsEmptyEntries(t *testing.T) {
	assert.Empty(t, CleanKeywords([]string{"", " , "}))
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedUnique([]string{"c", "a", "b", "a", "c"}))
	assert.Empty(t, SortedUnique(nil))
}

func TestTruncateToMinute(t *testing.T) {
	ts := time.Date(2099, 2, 1, 10, 30, 45, 123456, time.UTC)
	truncated := TruncateToMinute(ts)
	assert.Equal(t, time.Date(2099, 2, 1, 10, 30, 0, 0, time.UTC), truncated)

	// Idempotent: truncating an already-truncated value is a no-op.
	assert.Equal(t, truncated, TruncateToMinute(truncated))
}

func TestTruncateToMinute_NormalizesZone(t *testing.T) {
	zone := time.FixedZone("EST", -5*3600)
	ts := time.Date(2099, 2, 1, 5, 30, 10, 0, zone)
	assert.Equal(t, time.Date(2099, 2, 1, 10, 30, 0, 0, time.UTC), TruncateToMinute(ts))
}

func TestAddRIN(t *testing.T) {
	rule := &ProposedRule{}
	rule.AddRIN("1234-AB00")
	rule.AddRIN("1234-AB00")
	rule.AddRIN("Not Assigned")
	rule.AddRIN("5678-CD11")
	assert.Equal(t, []string{"1234-AB00", "5678-CD11"}, rule.RINs)
}
