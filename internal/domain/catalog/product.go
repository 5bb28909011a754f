package catalog

import (
	"context"

	"github.com/feria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Product is one entry of a seller's catalog as reported by the
// upstream product service. Products are read-only from this service's
// perspective; the upstream owns their lifecycle.
type Product struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Price     valueobject.Money `json:"price"`
	Stock     int               `json:"stock"`
	Available bool              `json:"available"`
}

// Page is one page of a seller's product listing
type Page struct {
	Items    []Product `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// ProductAPI is the port to the upstream product service.
// FetchPage retrieves a single page of the seller's catalog; page is 1-based.
type ProductAPI interface {
	FetchPage(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*Page, error)
}

// Merge folds a page's items into the accumulated set keyed by product ID.
// Later entries overwrite earlier ones with the same ID, so overlapping
// pages caused by upstream data shifting mid-fetch do not duplicate items.
func Merge(accumulated map[uuid.UUID]Product, items []Product) {
	for _, item := range items {
		accumulated[item.ID] = item
	}
}
