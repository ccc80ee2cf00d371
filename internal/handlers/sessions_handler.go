package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/cart"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/checkout"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/validation"
)

func (h *handler) createSession(c *gin.Context) {
	var req validation.CreateSessionRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	id, st := h.sessions.Create(req.User)
	c.Header("Location", "/sessions/"+id)
	c.JSON(http.StatusCreated, gin.H{"session_id": id, "state": st})
}

func (h *handler) getSession(c *gin.Context) {
	st, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// editCart applies fn to the cart of an idle session. fn may also change
// the user on next; nothing is kept when it fails.
func (h *handler) editCart(id string, fn func(crt *cart.Cart, next *checkout.State) error) (checkout.State, error) {
	return h.sessions.Update(id, func(st checkout.State) (checkout.State, error) {
		if !st.Idle() {
			return st, errors.Wrapf(errCheckoutInProgress, "session is %s", st.Phase)
		}
		next := st.Clone()
		crt := cart.New(next.Cart)
		if err := fn(crt, &next); err != nil {
			return st, err
		}
		next.Cart = crt.Items()
		return next, nil
	})
}

func (h *handler) addItem(c *gin.Context) {
	var req validation.AddItemRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	var res cart.AddResult
	st, err := h.editCart(c.Param("id"), func(crt *cart.Cart, next *checkout.State) error {
		var err error
		res, err = cart.GuardedAdd(crt, h.workflow.Rules(), next.User, req.Item, req.Units(), req.Acknowledge)
		if err == nil && res.Acknowledged {
			next.User.WarningCount++
		}
		return err
	})
	switch {
	case errors.Is(err, cart.ErrAddBlocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "add_blocked", "warning": res.Warning})
		return
	case errors.Is(err, cart.ErrWarningNotAcknowledged):
		c.JSON(http.StatusConflict, gin.H{
			"error":           "warning_not_acknowledged",
			"warning":         res.Warning,
			"can_acknowledge": res.Warning.AllowsProceed(),
		})
		return
	case err != nil:
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"added":         res.Added,
		"warning":       res.Warning,
		"cart":          st.Cart,
		"warning_count": st.User.WarningCount,
	})
}

func (h *handler) updateItem(c *gin.Context) {
	var req validation.UpdateQuantityRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	st, err := h.editCart(c.Param("id"), func(crt *cart.Cart, _ *checkout.State) error {
		return crt.SetQuantity(c.Param("itemID"), *req.Quantity)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": st.Cart})
}

func (h *handler) removeItem(c *gin.Context) {
	st, err := h.editCart(c.Param("id"), func(crt *cart.Cart, _ *checkout.State) error {
		return crt.Remove(c.Param("itemID"))
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": st.Cart})
}

func (h *handler) addAddress(c *gin.Context) {
	var addr health.DeliveryAddress
	if err := validation.BindAndValidate(c, &addr, h.validate); err != nil {
		return
	}
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}

	_, err := h.sessions.Update(c.Param("id"), func(st checkout.State) (checkout.State, error) {
		if len(st.User.DeliveryAddresses) == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			for i := range st.User.DeliveryAddresses {
				st.User.DeliveryAddresses[i].IsDefault = false
			}
			st.User.DefaultAddressID = addr.ID
		}
		st.User.DeliveryAddresses = append(st.User.DeliveryAddresses, addr)
		return st, nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": addr})
}

func (h *handler) assessment(c *gin.Context) {
	st, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workflow.Rules().Assess(st.User, st.Cart))
}

func (h *handler) listOrders(c *gin.Context) {
	st, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	orders := st.User.OrderHistory
	if orders == nil {
		orders = []health.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handler) getOrder(c *gin.Context) {
	st, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	for _, o := range st.User.OrderHistory {
		if o.ID == c.Param("orderID") {
			c.JSON(http.StatusOK, o)
			return
		}
	}
	h.writeError(c, errors.Wrapf(errOrderNotFound, "order %s", c.Param("orderID")))
}
