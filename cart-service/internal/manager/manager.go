package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/cart-service/internal/domain"
	"github.com/fjod/kanap/cart-service/internal/metrics"
	"go.uber.org/zap"
)

// Persister loads and saves a whole cart for one backend.
type Persister interface {
	Load(ctx context.Context) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

// CartManager owns the in-memory cart of one session and keeps the
// persisted copy in step with it. It is not safe for concurrent use.
type CartManager struct {
	backend   Backend
	persister Persister
	log       *zap.Logger
	metrics   *metrics.CartMetrics

	cart         *domain.Cart
	cartComplete bool
}

func NewCartManager(backend Backend, persister Persister, log *zap.Logger, m *metrics.CartMetrics) *CartManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartManager{
		backend:   backend,
		persister: persister,
		log:       log,
		metrics:   m,
		cart:      domain.NewCart(),
	}
}

// Cart returns the in-memory cart for rendering. Call GetCart first to make
// sure it has been loaded.
func (m *CartManager) Cart() *domain.Cart {
	return m.cart
}

func (m *CartManager) Backend() Backend {
	return m.backend
}

// GetCart loads the cart from the backend on first use and returns the
// in-memory copy afterwards.
func (m *CartManager) GetCart(ctx context.Context) (*domain.Cart, error) {
	if m.cartComplete {
		return m.cart, nil
	}

	cart, err := m.persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	m.cart = cart
	m.cartComplete = true
	return m.cart, nil
}

// SetCart replaces the in-memory cart without touching the backend and
// marks it as loaded.
func (m *CartManager) SetCart(cart *domain.Cart) {
	m.cart = cart
	m.cartComplete = true
}

// PostCart writes the in-memory cart to the backend.
func (m *CartManager) PostCart(ctx context.Context) error {
	if err := m.persister.Save(ctx, m.cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	m.metrics.ObserveWrite(m.backend.String())
	return nil
}

// ResetCart empties the cart and persists it.
func (m *CartManager) ResetCart(ctx context.Context) error {
	m.SetCart(domain.NewCart())
	return m.PostCart(ctx)
}

// AddProduct adds item to the cart, merging with an entry of the same id and
// color, and persists.
func (m *CartManager) AddProduct(ctx context.Context, item domain.LineItem) error {
	cart, err := m.GetCart(ctx)
	if err != nil {
		return err
	}
	cart.AddProduct(domain.NewCartProduct(item.ID, item.Color, item.Quantity, item.Name, nil))
	return m.PostCart(ctx)
}

// DeleteProduct removes the (id, color) entry. The cart is only persisted
// when an entry was actually removed.
func (m *CartManager) DeleteProduct(ctx context.Context, id, color string) (bool, error) {
	cart, err := m.GetCart(ctx)
	if err != nil {
		return false, err
	}
	if !cart.DeleteProduct(lookupKey(id, color)) {
		return false, nil
	}
	return true, m.PostCart(ctx)
}

// UpdateProductQuantity sets the quantity of the (id, color) entry; zero or
// less removes it. The cart is only persisted on success.
func (m *CartManager) UpdateProductQuantity(ctx context.Context, id, color string, quantity int) (bool, error) {
	if quantity <= 0 {
		return m.DeleteProduct(ctx, id, color)
	}

	cart, err := m.GetCart(ctx)
	if err != nil {
		return false, err
	}
	if !cart.UpdateProductQuantity(lookupKey(id, color), quantity) {
		return false, nil
	}
	return true, m.PostCart(ctx)
}

// SetCartProductProductInfos resolves every entry against the catalog, in
// cart order, one lookup at a time. Entries that fail to resolve are dropped
// and their names returned. The repaired cart is persisted once if anything
// was dropped. Only a persistence failure is returned as an error.
func (m *CartManager) SetCartProductProductInfos(ctx context.Context, gw catalog.Gateway) ([]string, error) {
	cart, err := m.GetCart(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	lookupCtx := context.WithoutCancel(ctx)

	entries := cart.Products()
	survivors := make([]*domain.CartProduct, 0, len(entries))
	removed := make([]string, 0)
	for _, entry := range entries {
		product, err := gw.FetchProduct(lookupCtx, entry.ID())
		if err != nil {
			m.log.Info("dropping cart entry",
				zap.String("product_id", entry.ID()),
				zap.String("color", entry.Color()),
				zap.String("name", entry.Name()),
				zap.Error(err))
			removed = append(removed, entry.Name())
			continue
		}
		survivors = append(survivors, domain.NewCartProduct(
			entry.ID(), entry.Color(), entry.Quantity(), entry.Name(), product))
	}
	cart.SetProducts(survivors)

	m.metrics.ObserveReconcile(time.Since(start))
	m.metrics.ObserveDropped(len(removed))

	if len(removed) > 0 {
		if err := m.PostCart(ctx); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func lookupKey(id, color string) *domain.CartProduct {
	return domain.NewCartProduct(id, color, 0, "", nil)
}
