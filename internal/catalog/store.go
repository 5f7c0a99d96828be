package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/metrics"
)

// Fetcher is the remote catalog surface the store pulls from.
type Fetcher interface {
	ListProducts(ctx context.Context, q domain.CatalogQuery) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

const (
	slotProducts   = "products"
	slotDetail     = "product_detail"
	slotCategories = "categories"
)

// Store owns the FetchState for the product list, the selected product and
// the category list. Requests are fire-and-forget; callers observe results
// through snapshots.
//
// Each slot carries a monotonically increasing token. A response is applied
// only when its token still matches the latest issued one, so a slow early
// request can never clobber a fast later one (last-request-wins). A stale
// response is dropped wholesale; the newer in-flight request owns the slot's
// loading flag.
type Store struct {
	fetcher   Fetcher
	timeout   time.Duration
	logger    *slog.Logger
	collector *metrics.Collector

	mu            sync.Mutex
	products      domain.FetchState[[]domain.Product]
	detail        domain.FetchState[*domain.Product]
	categories    domain.FetchState[[]domain.Category]
	productsTok   uint64
	detailTok     uint64
	categoriesTok uint64
}

type StoreOption func(*Store)

func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

func WithStoreCollector(c *metrics.Collector) StoreOption {
	return func(s *Store) { s.collector = c }
}

func WithFetchTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

func NewStore(fetcher Fetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher: fetcher,
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestProducts begins an asynchronous fetch of the product list. The slot
// goes loading with its error cleared before this returns; the result is
// applied later unless a newer request supersedes it. Fetch failures settle
// into the slot's error and keep the previous data.
func (s *Store) RequestProducts(ctx context.Context, q domain.CatalogQuery) {
	s.mu.Lock()
	s.productsTok++
	tok := s.productsTok
	s.products.Loading = true
	s.products.Err = ""
	s.mu.Unlock()

	s.fetchStarted(slotProducts)

	go func() {
		fctx, cancel := s.fetchContext(ctx)
		defer cancel()

		items, err := s.fetcher.ListProducts(fctx, q)

		s.mu.Lock()
		defer s.mu.Unlock()
		if tok != s.productsTok {
			s.dropStale(slotProducts, tok)
			return
		}
		s.products.Loading = false
		if err != nil {
			s.products.Err = err.Error()
			s.fetchFailed(slotProducts, err)
			return
		}
		s.products.Data = items
		s.products.Err = ""
	}()
}

// RequestProductDetail begins an asynchronous fetch of a single product into
// the detail slot. Same contract as RequestProducts.
func (s *Store) RequestProductDetail(ctx context.Context, id int64) {
	s.mu.Lock()
	s.detailTok++
	tok := s.detailTok
	s.detail.Loading = true
	s.detail.Err = ""
	s.mu.Unlock()

	s.fetchStarted(slotDetail)

	go func() {
		fctx, cancel := s.fetchContext(ctx)
		defer cancel()

		product, err := s.fetcher.GetProduct(fctx, id)

		s.mu.Lock()
		defer s.mu.Unlock()
		if tok != s.detailTok {
			s.dropStale(slotDetail, tok)
			return
		}
		s.detail.Loading = false
		if err != nil {
			s.detail.Err = err.Error()
			s.fetchFailed(slotDetail, err)
			return
		}
		s.detail.Data = product
		s.detail.Err = ""
	}()
}

// RequestCategories begins an asynchronous fetch of the category list. It
// takes no filter.
func (s *Store) RequestCategories(ctx context.Context) {
	s.mu.Lock()
	s.categoriesTok++
	tok := s.categoriesTok
	s.categories.Loading = true
	s.categories.Err = ""
	s.mu.Unlock()

	s.fetchStarted(slotCategories)

	go func() {
		fctx, cancel := s.fetchContext(ctx)
		defer cancel()

		cats, err := s.fetcher.ListCategories(fctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if tok != s.categoriesTok {
			s.dropStale(slotCategories, tok)
			return
		}
		s.categories.Loading = false
		if err != nil {
			s.categories.Err = err.Error()
			s.fetchFailed(slotCategories, err)
			return
		}
		s.categories.Data = cats
		s.categories.Err = ""
	}()
}

// ClearProductDetail resets the detail slot. The token bump makes any
// in-flight detail response stale.
func (s *Store) ClearProductDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailTok++
	s.detail = domain.FetchState[*domain.Product]{}
}

func (s *Store) Products() domain.FetchState[[]domain.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products
}

func (s *Store) ProductDetail() domain.FetchState[*domain.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

func (s *Store) Categories() domain.FetchState[[]domain.Category] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories
}

// fetchContext detaches the fetch from the caller's cancellation: requests
// are fire-and-forget and outlive the call that issued them. Context values
// (tracing) are kept.
func (s *Store) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *Store) fetchStarted(slot string) {
	if s.collector != nil {
		s.collector.RecordFetchStarted(slot)
	}
}

func (s *Store) fetchFailed(slot string, err error) {
	s.logger.Warn("catalog fetch failed", "slot", slot, "error", err)
	if s.collector != nil {
		s.collector.RecordFetchError(slot)
	}
}

// Caller must hold the lock.
func (s *Store) dropStale(slot string, tok uint64) {
	s.logger.Debug("dropping stale catalog response", "slot", slot, "token", tok)
	if s.collector != nil {
		s.collector.RecordStaleDropped(slot)
	}
}
