package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/cart-service/internal/domain"
	"github.com/fjod/kanap/cart-service/internal/manager"
	"github.com/fjod/kanap/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 100

// ManagerFactory builds the cart manager of one session.
type ManagerFactory interface {
	ForSession(sessionID string) (*manager.CartManager, error)
}

type CartHandler struct {
	managers ManagerFactory
	catalog  catalog.Gateway
	timeout  time.Duration
	log      *zap.Logger
}

func NewCartHandler(managers ManagerFactory, gw catalog.Gateway, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		managers: managers,
		catalog:  gw,
		timeout:  timeout,
		log:      logger.OrNop(log),
	}
}

type AddItemRequestDTO struct {
	ID       string `json:"id"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemResponse struct {
	ID       string   `json:"id"`
	Color    string   `json:"color"`
	Quantity int      `json:"quantity"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	AltTxt   string   `json:"altTxt,omitempty"`
}

type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    *float64           `json:"total_price"`
	Removed       []string           `json:"removed,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}

	removed, err := mgr.SetCartProductProductInfos(ctx, h.catalog)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(mgr.Cart(), removed))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id is required")
		return
	}
	if req.Color == "" {
		respondError(w, http.StatusBadRequest, "invalid_color", "color is required")
		return
	}
	if req.Quantity < 1 || req.Quantity > MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 100")
		return
	}

	product, err := h.catalog.FetchProduct(ctx, req.ID)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	if !product.HasColor(req.Color) {
		respondError(w, http.StatusBadRequest, "invalid_color", "color not offered for this product")
		return
	}

	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}
	cart, err := mgr.GetCart(ctx)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	quantity := req.Quantity
	if existing, found := lineQuantity(cart, req.ID, req.Color); found {
		quantity = min(quantity, MaxQuantity-existing)
	}
	if quantity <= 0 {
		respondError(w, http.StatusConflict, "quantity_limit", "cart line already holds the maximum quantity")
		return
	}

	err = mgr.AddProduct(ctx, domain.LineItem{
		ID:       req.ID,
		Color:    req.Color,
		Quantity: quantity,
		Name:     product.Name,
	})
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartResponse(mgr.Cart(), nil))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, color := pathParam(r, "id"), pathParam(r, "color")

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 || req.Quantity > MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 100")
		return
	}

	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}
	updated, err := mgr.UpdateProductQuantity(ctx, id, color, req.Quantity)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, "not_found", "cart line not found")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(mgr.Cart(), nil))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, color := pathParam(r, "id"), pathParam(r, "color")

	mgr, ok := h.managerFor(w, r)
	if !ok {
		return
	}
	deleted, err := mgr.DeleteProduct(ctx, id, color)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "not_found", "cart line not found")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(mgr.Cart(), nil))
}

func (h *CartHandler) managerFor(w http.ResponseWriter, r *http.Request) (*manager.CartManager, bool) {
	mgr, err := h.managers.ForSession(getSessionID(r.Context()))
	if err != nil {
		handleError(w, h.log, err)
		return nil, false
	}
	return mgr, true
}

// pathParam returns a decoded route parameter. chi routes on RawPath when
// it is set, as for "Black%2FYellow", and its parameters are then still
// escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func lineQuantity(cart *domain.Cart, id, color string) (int, bool) {
	for _, p := range cart.Products() {
		if p.ID() == id && p.Color() == color {
			return p.Quantity(), true
		}
	}
	return 0, false
}

func toCartResponse(cart *domain.Cart, removed []string) CartResponse {
	products := cart.Products()
	items := make([]CartItemResponse, 0, len(products))
	for _, p := range products {
		item := CartItemResponse{
			ID:       p.ID(),
			Color:    p.Color(),
			Quantity: p.Quantity(),
			Name:     p.Name(),
		}
		if info := p.Product(); info != nil {
			price := info.Price
			item.Price = &price
			item.ImageURL = info.ImageURL
			item.AltTxt = info.AltTxt
		}
		items = append(items, item)
	}

	resp := CartResponse{
		Items:         items,
		TotalQuantity: cart.TotalQuantity(),
		Removed:       removed,
	}
	if total, known := cart.TotalPrice(); known {
		resp.TotalPrice = &total
	}
	return resp
}
