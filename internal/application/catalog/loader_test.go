package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/feria/backend/internal/domain/catalog"
	"github.com/feria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProductAPI serves scripted pages and records every request
type fakeProductAPI struct {
	mu         sync.Mutex
	handler    func(page, pageSize int) (*catalog.Page, error)
	pagesAsked []int
}

func (f *fakeProductAPI) FetchPage(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*catalog.Page, error) {
	f.mu.Lock()
	f.pagesAsked = append(f.pagesAsked, page)
	f.mu.Unlock()
	return f.handler(page, pageSize)
}

func (f *fakeProductAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pagesAsked)
}

func makeProducts(n int) []catalog.Product {
	products := make([]catalog.Product, n)
	for i := range products {
		products[i] = catalog.Product{
			ID:        uuid.New(),
			Name:      "Producto",
			Price:     valueobject.NewMoneyPEN(decimal.NewFromInt(int64(i + 1))),
			Stock:     10,
			Available: true,
		}
	}
	return products
}

func pageOf(items []catalog.Product, total, page, pageSize int) *catalog.Page {
	return &catalog.Page{Items: items, Total: total, Page: page, PageSize: pageSize}
}

func TestLoader_LoadAll_StopsWhenTotalReached(t *testing.T) {
	products := makeProducts(450)
	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		switch page {
		case 1:
			return pageOf(products[0:200], 450, 1, pageSize), nil
		case 2:
			return pageOf(products[200:400], 450, 2, pageSize), nil
		case 3:
			return pageOf(products[400:450], 450, 3, pageSize), nil
		}
		return pageOf(nil, 450, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	got, err := loader.LoadAll(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Len(t, got, 450)
	assert.Equal(t, []int{1, 2, 3}, api.pagesAsked, "pages must be fetched sequentially and stop after three")
}

func TestLoader_LoadAll_DeduplicatesOverlappingPages(t *testing.T) {
	products := makeProducts(450)
	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		switch page {
		case 1:
			return pageOf(products[0:200], 450, 1, pageSize), nil
		case 2:
			return pageOf(products[200:400], 450, 2, pageSize), nil
		case 3:
			// upstream shifted: the last page re-serves fifty of page two's items
			return pageOf(products[350:450], 450, 3, pageSize), nil
		}
		return pageOf(nil, 450, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	got, err := loader.LoadAll(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 3, api.calls())
	assert.Len(t, got, 450)

	seen := make(map[uuid.UUID]bool, len(got))
	for _, p := range got {
		assert.False(t, seen[p.ID], "duplicate product id in merged result")
		seen[p.ID] = true
	}
}

func TestLoader_LoadAll_TerminatesWhenTotalNeverConverges(t *testing.T) {
	// upstream claims 1000 items but serves the same ten forever
	stuck := makeProducts(10)
	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		return pageOf(stuck, 1000, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	got, err := loader.LoadAll(context.Background(), uuid.New())
	require.NoError(t, err)

	// bound = ceil(1000/200)+5 = 10 attempts
	assert.Equal(t, 10, api.calls())
	assert.Len(t, got, 10)
}

func TestLoader_LoadAll_AttemptBoundIsCapped(t *testing.T) {
	stuck := makeProducts(1)
	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		return pageOf(stuck, 1_000_000, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	_, err := loader.LoadAll(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 300, api.calls())
}

func TestLoader_LoadAll_FailedPageHaltsWithoutRetry(t *testing.T) {
	products := makeProducts(400)
	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		if page == 2 {
			return nil, errors.New("upstream unavailable")
		}
		return pageOf(products[0:200], 400, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	_, err := loader.LoadAll(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, 2, api.calls(), "a failed page must not be retried automatically")
}

func TestLoader_LoadAll_CachesPerSeller(t *testing.T) {
	products := makeProducts(5)
	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		return pageOf(products, 5, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	sellerA := uuid.New()
	sellerB := uuid.New()

	_, err := loader.LoadAll(context.Background(), sellerA)
	require.NoError(t, err)
	_, err = loader.LoadAll(context.Background(), sellerA)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls(), "second load for the same seller must hit the cache")

	// a different seller starts its own sequence from page one
	_, err = loader.LoadAll(context.Background(), sellerB)
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls())

	loader.Invalidate(sellerA)
	_, err = loader.LoadAll(context.Background(), sellerA)
	require.NoError(t, err)
	assert.Equal(t, 3, api.calls())
}

func TestLoader_LoadAll_JoinsInFlightLoad(t *testing.T) {
	products := makeProducts(5)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	api := &fakeProductAPI{handler: func(page, pageSize int) (*catalog.Page, error) {
		once.Do(func() { close(started) })
		<-release
		return pageOf(products, 5, page, pageSize), nil
	}}

	loader := NewLoader(api, 200, nil)
	sellerID := uuid.New()

	var wg sync.WaitGroup
	results := make([][]catalog.Product, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := loader.LoadAll(context.Background(), sellerID)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, 1, api.calls(), "concurrent loads for one seller must share a single fetch")
	assert.Equal(t, results[0], results[1])
}
