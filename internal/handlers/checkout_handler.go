package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/checkout"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/validation"
)

// IdempotencyHeader carries the client's checkout attempt id.
const IdempotencyHeader = "Idempotency-Key"

var outcomeStatus = map[checkout.Outcome]int{
	checkout.OutcomeCommitted:          http.StatusCreated,
	checkout.OutcomeAwaitingEscalation: http.StatusAccepted,
	checkout.OutcomeAwaitingWarningAck: http.StatusAccepted,
	checkout.OutcomeBlocked:            http.StatusUnprocessableEntity,
	checkout.OutcomeCancelled:          http.StatusOK,
}

// resolveAddress picks the explicit address, then a saved one by id, then
// the user's default.
func resolveAddress(user health.User, req validation.CheckoutRequest) (*health.DeliveryAddress, error) {
	if req.Address != nil {
		return req.Address, nil
	}
	id := req.AddressID
	if id == "" {
		id = user.DefaultAddressID
	}
	for i := range user.DeliveryAddresses {
		a := user.DeliveryAddresses[i]
		if (id != "" && a.ID == id) || (id == "" && a.IsDefault) {
			return &a, nil
		}
	}
	if req.AddressID != "" {
		return nil, errors.Wrapf(errAddressNotFound, "address %s", req.AddressID)
	}
	return nil, nil
}

// runStep applies one workflow step to the session and writes the outcome.
func (h *handler) runStep(c *gin.Context, step func(checkout.State) (checkout.Result, error)) {
	id := c.Param("id")

	var res checkout.Result
	_, err := h.sessions.Update(id, func(st checkout.State) (checkout.State, error) {
		r, err := step(st)
		if err != nil {
			return st, err
		}
		res = r
		return r.State, nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	if res.Order != nil {
		c.Header("Location", "/sessions/"+id+"/orders/"+res.Order.ID)
	}
	status, ok := outcomeStatus[res.Outcome]
	if !ok {
		status = http.StatusOK
	}
	body := gin.H{
		"outcome":    res.Outcome,
		"phase":      res.State.Phase,
		"risk_level": res.RiskLevel,
	}
	if res.Warning != nil {
		body["warning"] = res.Warning
	}
	if res.Order != nil {
		body["order"] = res.Order
	}
	if res.Escalation != nil {
		body["escalation"] = res.Escalation
	}
	c.JSON(status, body)
}

func (h *handler) checkout(c *gin.Context) {
	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	ctx := c.Request.Context()
	attemptID := c.GetHeader(IdempotencyHeader)

	h.runStep(c, func(st checkout.State) (checkout.Result, error) {
		addr, err := resolveAddress(st.User, req)
		if err != nil {
			return checkout.Result{}, err
		}
		return h.workflow.Checkout(ctx, st, checkout.Request{
			AttemptID: attemptID,
			Address:   addr,
			Payment:   req.Payment,
		})
	})
}

func (h *handler) resolveEscalation(c *gin.Context) {
	var req validation.EscalationRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	ctx := c.Request.Context()

	h.runStep(c, func(st checkout.State) (checkout.Result, error) {
		return h.workflow.ResolveEscalation(ctx, st, checkout.Action(req.Action))
	})
}

func (h *handler) resolveWarning(c *gin.Context) {
	var req validation.WarningRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	ctx := c.Request.Context()

	h.runStep(c, func(st checkout.State) (checkout.Result, error) {
		return h.workflow.ResolveWarning(ctx, st, checkout.Action(req.Action))
	})
}
