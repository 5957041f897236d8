package catalog

import (
	"context"
	"errors"

	"github.com/fjod/kanap/cart-service/internal/domain"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Gateway resolves a product id against the catalog.
// Unknown ids and transport failures both surface as errors.
type Gateway interface {
	FetchProduct(ctx context.Context, id string) (*domain.Product, error)
}

type Lister interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order *domain.Order) (*domain.OrderConfirmation, error)
}

// Catalog is everything the HTTP layer needs from the catalog service.
type Catalog interface {
	Gateway
	Lister
}
