package filter

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
)

type mockRequester struct {
	mu      sync.Mutex
	queries []domain.CatalogQuery
}

func (m *mockRequester) RequestProducts(_ context.Context, q domain.CatalogQuery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
}

func (m *mockRequester) calls() []domain.CatalogQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CatalogQuery(nil), m.queries...)
}

func TestApply_TriggersExactlyOneFetch(t *testing.T) {
	req := &mockRequester{}
	r := NewResolver(req)

	r.Apply(context.Background(), domain.CatalogQuery{Title: "shirt"})

	require.Len(t, req.calls(), 1)
	assert.Equal(t, "shirt", req.calls()[0].Title)
}

func TestApply_FullReplacementNotMerge(t *testing.T) {
	req := &mockRequester{}
	r := NewResolver(req)

	r.Apply(context.Background(), domain.CatalogQuery{Title: "shirt", CategoryID: "2"})
	r.Apply(context.Background(), domain.CatalogQuery{PriceMax: "50"})

	// The second apply is a complete filter: the title and category from the
	// first call must be gone.
	assert.Equal(t, domain.CatalogQuery{PriceMax: "50"}, r.Current())

	calls := req.calls()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[1].Title)
	assert.Empty(t, calls[1].CategoryID)
}

func TestApply_EmptySearchMeansNoTitleFilter(t *testing.T) {
	req := &mockRequester{}
	r := NewResolver(req)

	q := r.Apply(context.Background(), domain.CatalogQuery{Title: "   "})

	assert.True(t, q.IsZero())
	assert.Equal(t, "", q.Encode())
	require.Len(t, req.calls(), 1)
	assert.True(t, req.calls()[0].IsZero())
}

func TestEncode_DeterministicFieldOrder(t *testing.T) {
	q := domain.CatalogQuery{
		CategoryID: "3",
		Title:      "desk lamp",
		PriceMax:   "100",
		PriceMin:   "10",
		Price:      "",
	}
	assert.Equal(t, "title=desk+lamp&price_min=10&price_max=100&categoryId=3", q.Encode())
}

func TestEncode_DropsAbsentFields(t *testing.T) {
	q := domain.CatalogQuery{Price: "25"}
	assert.Equal(t, "price=25", q.Encode())
}
