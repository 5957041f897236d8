package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/kanap/cart-service/internal/domain"
	"github.com/fjod/kanap/cart-service/internal/storage"
	"go.uber.org/zap"
)

// DefaultKey is used when no session is given.
const DefaultKey = "cart"

// StoredItem is the flat shape a line item is serialized to. The resolved
// product is never stored.
type StoredItem struct {
	ID       string `json:"id"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// LocalStorage keeps the cart as a JSON array under one key of a
// key/value store.
type LocalStorage struct {
	store storage.Store
	key   string
	log   *zap.Logger
}

func NewLocalStorage(store storage.Store, key string, log *zap.Logger) *LocalStorage {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalStorage{store: store, key: key, log: log}
}

// Load reads the cart. A missing or unreadable value yields an empty cart.
func (l *LocalStorage) Load(ctx context.Context) (*domain.Cart, error) {
	raw, ok, err := l.store.Read(ctx, l.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.NewCart(), nil
	}

	var items []StoredItem
	if err := json.Unmarshal(raw, &items); err != nil {
		l.log.Warn("ignoring malformed cart data", zap.String("key", l.key), zap.Error(err))
		return domain.NewCart(), nil
	}
	return l.GenerateCartFromData(items), nil
}

func (l *LocalStorage) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(l.GenerateDataFromCart(cart))
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return l.store.Write(ctx, l.key, data)
}

func (l *LocalStorage) GenerateCartFromData(items []StoredItem) *domain.Cart {
	cart := domain.NewCart()
	products := make([]*domain.CartProduct, 0, len(items))
	for _, it := range items {
		products = append(products, l.GenerateCartProductFromData(it))
	}
	cart.SetProducts(products)
	return cart
}

func (l *LocalStorage) GenerateDataFromCart(cart *domain.Cart) []StoredItem {
	products := cart.Products()
	items := make([]StoredItem, 0, len(products))
	for i := range products {
		items = append(items, l.GenerateDataFromCartProduct(&products[i]))
	}
	return items
}

func (l *LocalStorage) GenerateCartProductFromData(item StoredItem) *domain.CartProduct {
	return domain.NewCartProduct(item.ID, item.Color, item.Quantity, item.Name, nil)
}

func (l *LocalStorage) GenerateDataFromCartProduct(p *domain.CartProduct) StoredItem {
	return StoredItem{
		ID:       p.ID(),
		Color:    p.Color(),
		Quantity: p.Quantity(),
		Name:     p.Name(),
	}
}
