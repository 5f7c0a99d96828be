// Package filter turns partial product filters into canonical catalog
// queries and triggers the matching fetch.
package filter

import (
	"context"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

// ProductRequester is the slice of the catalog store the resolver drives.
type ProductRequester interface {
	RequestProducts(ctx context.Context, q domain.CatalogQuery)
}

// Resolver holds the last applied filter. Apply replaces the whole filter
// state; there is no deep merge across calls — each call is a complete
// desired filter.
type Resolver struct {
	mu        sync.Mutex
	requester ProductRequester
	current   domain.CatalogQuery
}

func NewResolver(requester ProductRequester) *Resolver {
	return &Resolver{requester: requester}
}

// Apply canonicalizes the filter, stores it as the current query and issues
// exactly one products fetch. Empty or whitespace-only fields are treated as
// absent, so an empty search box yields the unfiltered query.
func (r *Resolver) Apply(ctx context.Context, f domain.CatalogQuery) domain.CatalogQuery {
	q := f.Canonical()

	r.mu.Lock()
	r.current = q
	r.mu.Unlock()

	r.requester.RequestProducts(ctx, q)
	return q
}

// Current returns the last applied canonical query.
func (r *Resolver) Current() domain.CatalogQuery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
