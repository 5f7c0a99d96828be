package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
)

type mockFetcher struct {
	listProducts   func(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error)
	getProduct     func(ctx context.Context, id int64) (*domain.Product, error)
	listCategories func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockFetcher) ListProducts(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
	return m.listProducts(ctx, q)
}

func (m *mockFetcher) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return m.getProduct(ctx, id)
}

func (m *mockFetcher) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return m.listCategories(ctx)
}

func titled(titles ...string) []domain.Product {
	products := make([]domain.Product, len(titles))
	for i, title := range titles {
		products[i] = domain.Product{ID: int64(i + 1), Title: title}
	}
	return products
}

func TestRequestProducts_SetsLoadingBeforeReturning(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &mockFetcher{
		listProducts: func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
			<-gate
			return nil, nil
		},
	}
	store := NewStore(fetcher)
	defer close(gate)

	store.RequestProducts(context.Background(), domain.CatalogQuery{})

	state := store.Products()
	assert.True(t, state.Loading)
	assert.Empty(t, state.Err)
}

func TestRequestProducts_SuccessReplacesDataWholesale(t *testing.T) {
	fetcher := &mockFetcher{
		listProducts: func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
			return titled("shirt", "mug"), nil
		},
	}
	store := NewStore(fetcher)

	store.RequestProducts(context.Background(), domain.CatalogQuery{})

	require.Eventually(t, func() bool {
		return !store.Products().Loading
	}, time.Second, 5*time.Millisecond)

	state := store.Products()
	require.Len(t, state.Data, 2)
	assert.Equal(t, "shirt", state.Data[0].Title)
	assert.Empty(t, state.Err)

	// A second fetch replaces, never merges.
	fetcher.listProducts = func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
		return titled("lamp"), nil
	}
	store.RequestProducts(context.Background(), domain.CatalogQuery{})

	require.Eventually(t, func() bool {
		s := store.Products()
		return !s.Loading && len(s.Data) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "lamp", store.Products().Data[0].Title)
}

func TestRequestProducts_FailurePreservesPreviousData(t *testing.T) {
	fetcher := &mockFetcher{
		listProducts: func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
			return titled("shirt"), nil
		},
	}
	store := NewStore(fetcher)

	store.RequestProducts(context.Background(), domain.CatalogQuery{})
	require.Eventually(t, func() bool {
		return !store.Products().Loading
	}, time.Second, 5*time.Millisecond)

	fetcher.listProducts = func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
		return nil, errors.New("boom")
	}
	store.RequestProducts(context.Background(), domain.CatalogQuery{})

	require.Eventually(t, func() bool {
		s := store.Products()
		return !s.Loading && s.Err != ""
	}, time.Second, 5*time.Millisecond)

	state := store.Products()
	assert.Equal(t, "boom", state.Err)
	require.Len(t, state.Data, 1)
	assert.Equal(t, "shirt", state.Data[0].Title)
}

func TestRequestProducts_NewFetchClearsError(t *testing.T) {
	fetcher := &mockFetcher{
		listProducts: func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
			return nil, errors.New("boom")
		},
	}
	store := NewStore(fetcher)

	store.RequestProducts(context.Background(), domain.CatalogQuery{})
	require.Eventually(t, func() bool {
		return store.Products().Err != ""
	}, time.Second, 5*time.Millisecond)

	gate := make(chan struct{})
	fetcher.listProducts = func(context.Context, domain.CatalogQuery) ([]domain.Product, error) {
		<-gate
		return nil, nil
	}
	store.RequestProducts(context.Background(), domain.CatalogQuery{})
	defer close(gate)

	// Error is cleared the instant the new fetch begins.
	state := store.Products()
	assert.True(t, state.Loading)
	assert.Empty(t, state.Err)
}

func TestRequestProducts_StaleResponseIsDropped(t *testing.T) {
	slowGate := make(chan struct{})
	fetcher := &mockFetcher{}
	fetcher.listProducts = func(_ context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
		if q.Title == "slow" {
			<-slowGate
			return titled("stale-result"), nil
		}
		return titled("fresh-result"), nil
	}
	store := NewStore(fetcher)

	// Q1 issued first but resolves last.
	store.RequestProducts(context.Background(), domain.CatalogQuery{Title: "slow"})
	store.RequestProducts(context.Background(), domain.CatalogQuery{Title: "fast"})

	require.Eventually(t, func() bool {
		s := store.Products()
		return !s.Loading && len(s.Data) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "fresh-result", store.Products().Data[0].Title)

	// Now let Q1's response arrive. It must be discarded.
	close(slowGate)
	assert.Never(t, func() bool {
		s := store.Products()
		return len(s.Data) != 1 || s.Data[0].Title != "fresh-result" || s.Loading
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestRequestProducts_StaleErrorDoesNotClobberFreshData(t *testing.T) {
	slowGate := make(chan struct{})
	fetcher := &mockFetcher{}
	fetcher.listProducts = func(_ context.Context, q domain.CatalogQuery) ([]domain.Product, error) {
		if q.Title == "slow" {
			<-slowGate
			return nil, errors.New("late failure")
		}
		return titled("fresh-result"), nil
	}
	store := NewStore(fetcher)

	store.RequestProducts(context.Background(), domain.CatalogQuery{Title: "slow"})
	store.RequestProducts(context.Background(), domain.CatalogQuery{Title: "fast"})

	require.Eventually(t, func() bool {
		return !store.Products().Loading
	}, time.Second, 5*time.Millisecond)

	close(slowGate)
	assert.Never(t, func() bool {
		return store.Products().Err != ""
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestRequestProductDetail_Settles(t *testing.T) {
	fetcher := &mockFetcher{
		getProduct: func(_ context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, Title: "mug"}, nil
		},
	}
	store := NewStore(fetcher)

	store.RequestProductDetail(context.Background(), 7)

	require.Eventually(t, func() bool {
		s := store.ProductDetail()
		return !s.Loading && s.Data != nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(7), store.ProductDetail().Data.ID)
}

func TestClearProductDetail_DropsInFlightResponse(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &mockFetcher{
		getProduct: func(_ context.Context, id int64) (*domain.Product, error) {
			<-gate
			return &domain.Product{ID: id}, nil
		},
	}
	store := NewStore(fetcher)

	store.RequestProductDetail(context.Background(), 7)
	store.ClearProductDetail()
	close(gate)

	assert.Never(t, func() bool {
		return store.ProductDetail().Data != nil
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestRequestCategories_Settles(t *testing.T) {
	fetcher := &mockFetcher{
		listCategories: func(context.Context) ([]domain.Category, error) {
			return []domain.Category{{ID: 1, Name: "Clothes"}}, nil
		},
	}
	store := NewStore(fetcher)

	store.RequestCategories(context.Background())

	require.Eventually(t, func() bool {
		s := store.Categories()
		return !s.Loading && len(s.Data) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Clothes", store.Categories().Data[0].Name)
}

func TestRequestProducts_CallerCancelDoesNotAbortFetch(t *testing.T) {
	fetched := make(chan struct{})
	fetcher := &mockFetcher{
		listProducts: func(ctx context.Context, _ domain.CatalogQuery) ([]domain.Product, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			close(fetched)
			return titled("shirt"), nil
		},
	}
	store := NewStore(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // caller is gone before the fetch even starts
	store.RequestProducts(ctx, domain.CatalogQuery{})

	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("fetch never ran after caller cancellation")
	}
}
