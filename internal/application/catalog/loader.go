package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/feria/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the page size requested from the product API
	DefaultPageSize = 200

	// maxPageAttempts caps the fetch loop no matter what totals the
	// upstream reports
	maxPageAttempts = 300

	// extraPageAttempts is the slack added on top of the expected page
	// count to tolerate a total that shifts mid-fetch
	extraPageAttempts = 5
)

// Loader retrieves a seller's complete product list by walking the
// upstream pagination until every item has been seen. Pages are fetched
// strictly in sequence and merged by product ID, so pages that overlap
// because upstream data shifted mid-fetch do not produce duplicates.
type Loader struct {
	api      catalog.ProductAPI
	pageSize int
	logger   *zap.Logger

	mu      sync.Mutex
	flights map[uuid.UUID]*flight
	cached  map[uuid.UUID][]catalog.Product
}

// flight tracks one in-progress load so concurrent callers for the
// same seller share a single fetch sequence
type flight struct {
	done     chan struct{}
	products []catalog.Product
	err      error
}

// NewLoader creates a new catalog loader
func NewLoader(api catalog.ProductAPI, pageSize int, logger *zap.Logger) *Loader {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		api:      api,
		pageSize: pageSize,
		logger:   logger,
		flights:  make(map[uuid.UUID]*flight),
		cached:   make(map[uuid.UUID][]catalog.Product),
	}
}

// LoadAll returns the seller's full product list, fetching it from the
// upstream if no cached copy exists. A load already in flight for the
// same seller is joined, not duplicated.
func (l *Loader) LoadAll(ctx context.Context, sellerID uuid.UUID) ([]catalog.Product, error) {
	l.mu.Lock()
	if products, ok := l.cached[sellerID]; ok {
		l.mu.Unlock()
		return products, nil
	}
	if f, ok := l.flights[sellerID]; ok {
		l.mu.Unlock()
		select {
		case <-f.done:
			return f.products, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	l.flights[sellerID] = f
	l.mu.Unlock()

	products, err := l.fetchAll(ctx, sellerID)

	l.mu.Lock()
	delete(l.flights, sellerID)
	if err == nil {
		l.cached[sellerID] = products
	}
	l.mu.Unlock()

	f.products = products
	f.err = err
	close(f.done)

	return products, err
}

// Invalidate drops the cached product list for a seller so the next
// LoadAll starts over from page one
func (l *Loader) Invalidate(sellerID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cached, sellerID)
}

// fetchAll walks the pagination. The attempt bound is derived from the
// first page's reported total: min(ceil(total/pageSize)+5, 300). The
// bound guarantees termination even when the upstream's total
// fluctuates and never converges with the accumulated count.
func (l *Loader) fetchAll(ctx context.Context, sellerID uuid.UUID) ([]catalog.Product, error) {
	accumulated := make(map[uuid.UUID]catalog.Product)

	page := 1
	attempts := 0
	maxAttempts := maxPageAttempts
	reportedTotal := 0

	for {
		resp, err := l.api.FetchPage(ctx, sellerID, page, l.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d for seller %s: %w", page, sellerID, err)
		}
		attempts++

		if attempts == 1 {
			expectedPages := (resp.Total + l.pageSize - 1) / l.pageSize
			maxAttempts = expectedPages + extraPageAttempts
			if maxAttempts > maxPageAttempts {
				maxAttempts = maxPageAttempts
			}
			if maxAttempts < 1 {
				maxAttempts = 1
			}
		}
		reportedTotal = resp.Total

		catalog.Merge(accumulated, resp.Items)

		if len(accumulated) >= reportedTotal {
			break
		}
		if attempts >= maxAttempts {
			l.logger.Warn("Catalog pagination stopped at attempt bound",
				zap.String("seller_id", sellerID.String()),
				zap.Int("attempts", attempts),
				zap.Int("accumulated", len(accumulated)),
				zap.Int("reported_total", reportedTotal))
			break
		}
		page++
	}

	products := make([]catalog.Product, 0, len(accumulated))
	for _, p := range accumulated {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID.String() < products[j].ID.String()
	})

	return products, nil
}
