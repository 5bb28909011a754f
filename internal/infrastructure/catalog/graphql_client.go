package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/feria/backend/internal/domain/catalog"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCatalogTimeout = 30 * time.Second

// productsQuery is the fixed document sent to the upstream product service
const productsQuery = `query SellerProducts($sellerId: ID!, $page: Int!, $pageSize: Int!) {
  products(sellerId: $sellerId, page: $page, pageSize: $pageSize) {
    items { id name price currency stock available }
    total
    page
    pageSize
  }
}`

// ErrCatalogMissingBaseURL indicates the upstream URL is not configured
var ErrCatalogMissingBaseURL = errors.New("catalog: missing base URL")

// GraphQLProductAPI implements ProductAPI against the upstream GraphQL endpoint
type GraphQLProductAPI struct {
	endpoint   string
	httpClient *http.Client
}

// NewGraphQLProductAPI creates a new GraphQLProductAPI
func NewGraphQLProductAPI(endpoint string, timeout time.Duration) (*GraphQLProductAPI, error) {
	if endpoint == "" {
		return nil, ErrCatalogMissingBaseURL
	}
	if timeout <= 0 {
		timeout = defaultCatalogTimeout
	}

	return &GraphQLProductAPI{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data struct {
		Products *productsPayload `json:"products"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type productsPayload struct {
	Items []struct {
		ID        uuid.UUID       `json:"id"`
		Name      string          `json:"name"`
		Price     decimal.Decimal `json:"price"`
		Currency  string          `json:"currency"`
		Stock     int             `json:"stock"`
		Available bool            `json:"available"`
	} `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// FetchPage retrieves a single page of the seller's catalog
func (c *GraphQLProductAPI) FetchPage(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*catalog.Page, error) {
	reqBody, err := json.Marshal(graphqlRequest{
		Query: productsQuery,
		Variables: map[string]interface{}{
			"sellerId": sellerID.String(),
			"page":     page,
			"pageSize": pageSize,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrGatewayUnavailable, resp.StatusCode)
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrGatewayUnavailable, gqlResp.Errors[0].Message)
	}
	if gqlResp.Data.Products == nil {
		return nil, fmt.Errorf("%w: empty products payload", shared.ErrGatewayUnavailable)
	}

	return c.toPage(gqlResp.Data.Products), nil
}

func (c *GraphQLProductAPI) toPage(payload *productsPayload) *catalog.Page {
	items := make([]catalog.Product, 0, len(payload.Items))
	for _, item := range payload.Items {
		price, err := valueobject.NewMoney(item.Price, valueobject.Currency(item.Currency))
		if err != nil {
			price = valueobject.NewMoneyPEN(item.Price)
		}
		items = append(items, catalog.Product{
			ID:        item.ID,
			Name:      item.Name,
			Price:     price,
			Stock:     item.Stock,
			Available: item.Available,
		})
	}

	return &catalog.Page{
		Items:    items,
		Total:    payload.Total,
		Page:     payload.Page,
		PageSize: payload.PageSize,
	}
}

// Ensure GraphQLProductAPI implements the ProductAPI interface
var _ catalog.ProductAPI = (*GraphQLProductAPI)(nil)
