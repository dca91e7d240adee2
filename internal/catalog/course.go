// internal/catalog/course.go
//
// Course records and dataset decoding.
//
// Context
// -------
// The catalog is a static JSON document:
//
//	{ "courses": [ { "id": 1, "title": "…", "slug": "…", "price": 49.99, … } ] }
//
// Decode keeps every entry that is a JSON object with the expected field
// types and silently drops the rest.  Completeness (id, title, slug, image)
// is checked later by Valid so the featured widget, which does not require
// an image, can apply its own looser rule to the same records.
//
// A document without a top-level `courses` array is a shape error
// (ErrInvalidDataset).  Pages render it as the full-page error state.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidDataset reports a document without a `courses` array.
var ErrInvalidDataset = errors.New("Invalid course data structure")

// Course is one catalog entry.  Immutable after load.
type Course struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Instructor  string          `json:"instructor"`
	IsFeatured  bool            `json:"isFeatured"`
	Image       string          `json:"image"`
}

// PriceLabel formats the price the way course cards show it ("$49.99").
func (c Course) PriceLabel() string { return "$" + c.Price.String() }

// Valid reports whether c carries every field a catalog card needs.  Id 0
// counts as missing.
func Valid(c Course) bool {
	return c.ID != 0 && c.Title != "" && c.Slug != "" && c.Image != ""
}

// Decode parses a dataset document.  Entries that are not objects or whose
// fields have the wrong JSON type are dropped.  Completeness is not checked.
func Decode(data []byte) ([]Course, error) {
	var doc struct {
		Courses json.RawMessage `json:"courses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	raw := bytes.TrimSpace(doc.Courses)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrInvalidDataset
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	out := make([]Course, 0, len(entries))
	for _, e := range entries {
		e = bytes.TrimSpace(e)
		if len(e) == 0 || e[0] != '{' {
			continue
		}
		var c Course
		if err := json.Unmarshal(e, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
