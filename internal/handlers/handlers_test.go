package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/checkout"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/metrics"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/notify"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/session"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dispatcher := notify.NewDispatcher(notify.NewSimulatedNotifier(logger, 0, 0), logger)
	wf := checkout.New(health.NewRules(health.DefaultThresholds()), dispatcher,
		idempotency.NewMemoryGuard(), metrics.Nop{}, logger, 0)

	return NewRouter(HandlerConfig{
		Sessions: session.NewStore(),
		Workflow: wf,
		Logger:   logger,
	})
}

type response struct {
	code   int
	header http.Header
	body   map[string]any
}

func call(t *testing.T, r http.Handler, method, path string, body any, headers ...string) response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := response{code: w.Code, header: w.Header()}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out.body), w.Body.String())
	}
	return out
}

func userJSON(glucose, intake float64) map[string]any {
	return map[string]any{
		"id":                      "u1",
		"name":                    "John Smith",
		"age":                     58,
		"diabetes_type":           "type2",
		"current_glucose_level":   glucose,
		"target_glucose_range":    map[string]any{"min": 80, "max": 140},
		"daily_glucose_intake":    intake,
		"max_daily_glucose_limit": 50,
		"family_contacts": []map[string]any{{
			"id": "f1", "name": "Sarah", "phone": "+1-555-0101", "email": "sarah@example.com", "notify_on_risk": true,
		}},
		"doctor_contact": map[string]any{"name": "Dr. Lee", "phone": "+1-555-0199", "email": "lee@clinic.example"},
	}
}

func itemJSON(id string, impact, sugar float64, risky bool) map[string]any {
	return map[string]any{
		"id": id, "name": id, "price": "4.50",
		"glucose_impact": impact, "sugar_content": sugar, "is_diabetes_risky": risky,
	}
}

var inlineAddress = map[string]any{"full_address": "1 Main St", "city": "Springfield"}

func createSession(t *testing.T, r http.Handler, glucose, intake float64) string {
	t.Helper()
	res := call(t, r, http.MethodPost, "/sessions", map[string]any{"user": userJSON(glucose, intake)})
	require.Equal(t, http.StatusCreated, res.code, res.body)
	id, _ := res.body["session_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealth(t *testing.T) {
	res := call(t, newTestRouter(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "ok", res.body["status"])
}

func TestCheckout_DirectCommitAndAttemptReuse(t *testing.T) {
	r := newTestRouter()
	id := createSession(t, r, 120, 10)
	base := "/sessions/" + id

	res := call(t, r, http.MethodPost, base+"/addresses", inlineAddress)
	require.Equal(t, http.StatusCreated, res.code)
	addr := res.body["address"].(map[string]any)
	assert.Equal(t, true, addr["is_default"])

	res = call(t, r, http.MethodPost, base+"/cart/items", map[string]any{"item": itemJSON("salad", 2, 3, false), "quantity": 2})
	require.Equal(t, http.StatusCreated, res.code, res.body)

	res = call(t, r, http.MethodGet, base+"/assessment", nil)
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "low", res.body["risk_level"])
	assert.Equal(t, false, res.body["blocked"])

	payment := map[string]any{"payment": map[string]any{"type": "cod"}}
	res = call(t, r, http.MethodPost, base+"/checkout", payment, IdempotencyHeader, "attempt-1")
	require.Equal(t, http.StatusCreated, res.code, res.body)
	assert.Equal(t, "committed", res.body["outcome"])
	order := res.body["order"].(map[string]any)
	assert.Equal(t, "confirmed", order["status"])
	assert.Equal(t, "1 Main St", order["delivery_address"].(map[string]any)["full_address"])
	assert.Equal(t, base+"/orders/"+order["id"].(string), res.header.Get("Location"))

	res = call(t, r, http.MethodGet, base+"/orders", nil)
	assert.Len(t, res.body["orders"], 1)

	res = call(t, r, http.MethodGet, base+"/orders/"+order["id"].(string), nil)
	assert.Equal(t, http.StatusOK, res.code)

	call(t, r, http.MethodPost, base+"/cart/items", map[string]any{"item": itemJSON("salad", 2, 3, false)})
	res = call(t, r, http.MethodPost, base+"/checkout", payment, IdempotencyHeader, "attempt-1")
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "already_committed", res.body["error"])
}

func TestCheckout_EscalationSend(t *testing.T) {
	r := newTestRouter()
	base := "/sessions/" + createSession(t, r, 120, 10)

	res := call(t, r, http.MethodPost, base+"/cart/items", map[string]any{"item": itemJSON("pasta", 8, 2, false), "quantity": 2})
	require.Equal(t, http.StatusCreated, res.code, res.body)

	res = call(t, r, http.MethodPost, base+"/checkout", map[string]any{
		"address": inlineAddress,
		"payment": map[string]any{"type": "card", "details": map[string]any{"last_four_digits": "4242"}},
	})
	require.Equal(t, http.StatusAccepted, res.code, res.body)
	assert.Equal(t, "awaiting_escalation", res.body["outcome"])

	res = call(t, r, http.MethodPatch, base+"/cart/items/pasta", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "checkout_in_progress", res.body["error"])

	res = call(t, r, http.MethodPost, base+"/checkout/warning", map[string]any{"action": "proceed"})
	assert.Equal(t, http.StatusConflict, res.code)

	res = call(t, r, http.MethodPost, base+"/checkout/escalation", map[string]any{"action": "send"})
	require.Equal(t, http.StatusCreated, res.code, res.body)
	order := res.body["order"].(map[string]any)
	assert.Equal(t, "medium", order["risk_level"])
	assert.Equal(t, true, order["family_notified"])
	assert.Equal(t, false, order["doctor_notified"])
	escalation := res.body["escalation"].(map[string]any)
	assert.Equal(t, float64(2), escalation["attempted"])
}

func TestCheckout_WarningAcknowledgement(t *testing.T) {
	r := newTestRouter()
	base := "/sessions/" + createSession(t, r, 100, 25)

	add := map[string]any{"item": itemJSON("juice", 1, 16, true)}
	res := call(t, r, http.MethodPost, base+"/cart/items", add)
	require.Equal(t, http.StatusConflict, res.code, res.body)
	assert.Equal(t, "warning_not_acknowledged", res.body["error"])
	assert.Equal(t, true, res.body["can_acknowledge"])

	add["acknowledge"] = true
	res = call(t, r, http.MethodPost, base+"/cart/items", add)
	require.Equal(t, http.StatusCreated, res.code, res.body)
	assert.Equal(t, float64(1), res.body["warning_count"])

	res = call(t, r, http.MethodPost, base+"/checkout", map[string]any{"address": inlineAddress, "payment": map[string]any{"type": "cash"}})
	require.Equal(t, http.StatusAccepted, res.code, res.body)
	assert.Equal(t, "awaiting_warning_ack", res.body["outcome"])
	assert.Equal(t, "info", res.body["warning"].(map[string]any)["level"])

	res = call(t, r, http.MethodPost, base+"/checkout/warning", map[string]any{"action": "proceed"})
	require.Equal(t, http.StatusCreated, res.code, res.body)

	res = call(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, res.code)
	user := res.body["user"].(map[string]any)
	assert.Equal(t, float64(2), user["warning_count"])
	assert.Equal(t, "idle", res.body["phase"])
}

func TestCheckout_Blocked(t *testing.T) {
	r := newTestRouter()
	base := "/sessions/" + createSession(t, r, 120, 10)

	res := call(t, r, http.MethodPost, base+"/cart/items", map[string]any{"item": itemJSON("shake", 1, 45, false), "acknowledge": true})
	require.Equal(t, http.StatusCreated, res.code, res.body)

	res = call(t, r, http.MethodPatch, base+"/cart/items/shake", map[string]any{"quantity": 3})
	require.Equal(t, http.StatusOK, res.code, res.body)

	res = call(t, r, http.MethodPost, base+"/checkout", map[string]any{"address": inlineAddress, "payment": map[string]any{"type": "cod"}})
	require.Equal(t, http.StatusUnprocessableEntity, res.code, res.body)
	assert.Equal(t, "blocked", res.body["outcome"])
	assert.Contains(t, res.body["warning"].(map[string]any)["message"], "CHECKOUT BLOCKED")

	res = call(t, r, http.MethodGet, base+"/orders", nil)
	assert.Empty(t, res.body["orders"])

	res = call(t, r, http.MethodPost, base+"/cart/items", map[string]any{"item": itemJSON("cake", 9, 45, true)})
	assert.Equal(t, http.StatusUnprocessableEntity, res.code)
	assert.Equal(t, "add_blocked", res.body["error"])
}

func TestErrors(t *testing.T) {
	r := newTestRouter()

	res := call(t, r, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, res.code)
	assert.Equal(t, "session_not_found", res.body["error"])

	res = call(t, r, http.MethodPost, "/sessions", map[string]any{"user": map[string]any{"name": ""}})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "validation_failed", res.body["error"])

	base := "/sessions/" + createSession(t, r, 120, 10)
	res = call(t, r, http.MethodPost, base+"/checkout", map[string]any{"address": inlineAddress, "payment": map[string]any{"type": "cod"}})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "invalid_checkout", res.body["error"], "empty cart")

	res = call(t, r, http.MethodDelete, base+"/cart/items/nothing", nil)
	assert.Equal(t, http.StatusNotFound, res.code)

	call(t, r, http.MethodPost, base+"/cart/items", map[string]any{"item": itemJSON("salad", 2, 3, false)})
	res = call(t, r, http.MethodPost, base+"/checkout", map[string]any{"address_id": "nope", "payment": map[string]any{"type": "cod"}})
	assert.Equal(t, http.StatusBadRequest, res.code)
	assert.Equal(t, "address_not_found", res.body["error"])

	res = call(t, r, http.MethodPost, base+"/checkout/escalation", map[string]any{"action": "send"})
	assert.Equal(t, http.StatusConflict, res.code)
	assert.Equal(t, "invalid_transition", res.body["error"])
}
