package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/cart"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/checkout"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/session"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/validation"
)

// HandlerConfig groups dependencies for the checkout API.
type HandlerConfig struct {
	Sessions *session.Store
	Workflow *checkout.Workflow
	Logger   *slog.Logger
}

type handler struct {
	sessions *session.Store
	workflow *checkout.Workflow
	validate *validatorv10.Validate
	logger   *slog.Logger
}

var (
	errCheckoutInProgress = errors.New("checkout in progress")
	errAddressNotFound    = errors.New("address not found")
	errOrderNotFound      = errors.New("order not found")
)

// RegisterRoutes registers the session, cart and checkout routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &handler{
		sessions: cfg.Sessions,
		workflow: cfg.Workflow,
		validate: validation.New(),
		logger:   cfg.Logger,
	}

	s := r.Group("/sessions")
	s.POST("", h.createSession)
	s.GET("/:id", h.getSession)
	s.POST("/:id/cart/items", h.addItem)
	s.PATCH("/:id/cart/items/:itemID", h.updateItem)
	s.DELETE("/:id/cart/items/:itemID", h.removeItem)
	s.POST("/:id/addresses", h.addAddress)
	s.GET("/:id/assessment", h.assessment)
	s.POST("/:id/checkout", h.checkout)
	s.POST("/:id/checkout/escalation", h.resolveEscalation)
	s.POST("/:id/checkout/warning", h.resolveWarning)
	s.GET("/:id/orders", h.listOrders)
	s.GET("/:id/orders/:orderID", h.getOrder)
}

// writeError maps domain errors to HTTP responses.
func (h *handler) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, session.ErrNotFound):
		status, code = http.StatusNotFound, "session_not_found"
	case errors.Is(err, errOrderNotFound):
		status, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, cart.ErrItemNotFound):
		status, code = http.StatusNotFound, "item_not_found"
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrMissingItemID):
		status, code = http.StatusBadRequest, "invalid_cart_item"
	case errors.Is(err, errAddressNotFound):
		status, code = http.StatusBadRequest, "address_not_found"
	case errors.Is(err, checkout.ErrInvalidRequest):
		status, code = http.StatusBadRequest, "invalid_checkout"
	case errors.Is(err, errCheckoutInProgress):
		status, code = http.StatusConflict, "checkout_in_progress"
	case errors.Is(err, checkout.ErrInvalidTransition), errors.Is(err, checkout.ErrNoPendingOrder):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, checkout.ErrProceedNotAllowed):
		status, code = http.StatusConflict, "proceed_not_allowed"
	case errors.Is(err, checkout.ErrAlreadyCommitted):
		status, code = http.StatusConflict, "already_committed"
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	c.JSON(status, gin.H{"error": code, "detail": err.Error()})
}
