package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/pkg/logger"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog catalog.Catalog
	timeout time.Duration
	log     *zap.Logger
}

func NewProductHandler(c catalog.Catalog, timeout time.Duration, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
		log:     logger.OrNop(log),
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.FetchProduct(ctx, pathParam(r, "id"))
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}
