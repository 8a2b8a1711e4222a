// Package reconcile derives the authoritative destination field values for
// a proposed rule. Discovery produces the complete field set for a new
// record; refresh produces the minimal set of field-level changes against
// what is already stored. The package is pure: all fetching happens in the
// callers, all encoding in the destination adapter.
package reconcile

import "time"

// Value is one destination field value. The concrete types cover the four
// shapes the destination store accepts.
type Value interface {
	fieldValue()
}

// Text is a plain text value, possibly multi-segment once encoded
type Text string

// Title is the record's title value
type Title string

// URL is a link value
type URL string

// Labels is a set of multi-select label strings
type Labels []string

// Link is an identifier with its canonical URL
type Link struct {
	ID  string
	URL string
}

// Links is a list of (id, link) pairs rendered as comma-separated linked
// text runs
type Links []Link

// Date is a date value; a nil Time clears the field. DateOnly marks
// day-granularity values.
type Date struct {
	Time     *time.Time
	DateOnly bool
}

func (Text) fieldValue()   {}
func (Title) fieldValue()  {}
func (URL) fieldValue()    {}
func (Labels) fieldValue() {}
func (Links) fieldValue()  {}
func (Date) fieldValue()   {}

// Fields maps destination field names to their computed values. In refresh
// mode only changed fields are present.
type Fields map[string]Value
