package http

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/cart-service/internal/domain"
	"github.com/fjod/kanap/pkg/logger"
	"go.uber.org/zap"
)

// OrderEvents is notified once an order has been accepted. Optional.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, sessionID, orderID string) error
}

type OrderHandler struct {
	managers  ManagerFactory
	catalog   catalog.Gateway
	submitter catalog.OrderSubmitter
	events    OrderEvents
	timeout   time.Duration
	log       *zap.Logger
}

func NewOrderHandler(managers ManagerFactory, gw catalog.Gateway, submitter catalog.OrderSubmitter, events OrderEvents, timeout time.Duration, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		managers:  managers,
		catalog:   gw,
		submitter: submitter,
		events:    events,
		timeout:   timeout,
		log:       logger.OrNop(log),
	}
}

type OrderRequestDTO struct {
	Contact domain.Contact `json:"contact"`
}

type OrderResponse struct {
	OrderID string `json:"orderId"`
}

func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if field, ok := validateContact(req.Contact); !ok {
		respondError(w, http.StatusBadRequest, "invalid_contact", field+" is invalid")
		return
	}

	sessionID := getSessionID(r.Context())
	mgr, err := h.managers.ForSession(sessionID)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	// Only lines still present in the catalog are ordered.
	if _, err := mgr.SetCartProductProductInfos(ctx, h.catalog); err != nil {
		handleError(w, h.log, err)
		return
	}
	order, err := domain.NewOrder(req.Contact, mgr.Cart())
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	confirmation, err := h.submitter.SubmitOrder(ctx, order)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	if err := mgr.ResetCart(ctx); err != nil {
		// The order is already placed.
		h.log.Error("failed to reset cart after order",
			zap.String("order_id", confirmation.OrderID), zap.Error(err))
	}
	if h.events != nil {
		if err := h.events.PublishOrderPlaced(ctx, sessionID, confirmation.OrderID); err != nil {
			h.log.Warn("failed to publish order event",
				zap.String("order_id", confirmation.OrderID), zap.Error(err))
		}
	}

	respondJSON(w, http.StatusCreated, OrderResponse{OrderID: confirmation.OrderID})
}

func validateContact(c domain.Contact) (string, bool) {
	for _, f := range []struct {
		name, value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"address", c.Address},
		{"city", c.City},
		{"email", c.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			return f.name, false
		}
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return "email", false
	}
	return "", true
}
