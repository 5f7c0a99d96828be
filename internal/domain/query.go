package domain

import (
	"net/url"
	"strings"
)

// CatalogQuery is the canonical product filter. Empty string means the field
// is absent; absent fields are never sent to the remote service.
type CatalogQuery struct {
	Title      string `json:"title,omitempty"`
	Price      string `json:"price,omitempty"`
	PriceMin   string `json:"price_min,omitempty"`
	PriceMax   string `json:"price_max,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

// Canonical returns the query with surrounding whitespace stripped, so that
// a search box containing only spaces means "no title filter".
func (q CatalogQuery) Canonical() CatalogQuery {
	return CatalogQuery{
		Title:      strings.TrimSpace(q.Title),
		Price:      strings.TrimSpace(q.Price),
		PriceMin:   strings.TrimSpace(q.PriceMin),
		PriceMax:   strings.TrimSpace(q.PriceMax),
		CategoryID: strings.TrimSpace(q.CategoryID),
	}
}

func (q CatalogQuery) IsZero() bool {
	return q == CatalogQuery{}
}

// Encode builds the query string in a fixed field order: title, price,
// price_min, price_max, categoryId. The remote service does not care about
// order; tests and cache keys do.
func (q CatalogQuery) Encode() string {
	var b strings.Builder
	appendParam := func(key, val string) {
		if val == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(val))
	}
	appendParam("title", q.Title)
	appendParam("price", q.Price)
	appendParam("price_min", q.PriceMin)
	appendParam("price_max", q.PriceMax)
	appendParam("categoryId", q.CategoryID)
	return b.String()
}
