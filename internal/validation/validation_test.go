package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
)

func validUser() health.User {
	return health.User{
		ID:                   "u1",
		Name:                 "John Smith",
		DiabetesType:         health.DiabetesType2,
		CurrentGlucoseLevel:  145,
		TargetGlucoseRange:   health.GlucoseRange{Min: 80, Max: 140},
		DailyGlucoseIntake:   25,
		MaxDailyGlucoseLimit: 50,
	}
}

func TestCreateSessionRequest(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(CreateSessionRequest{User: validUser()}))

	u := validUser()
	u.Name = ""
	u.DiabetesType = "type3"
	u.MaxDailyGlucoseLimit = 0
	err := v.Struct(CreateSessionRequest{User: u})
	require.Error(t, err)

	fields := ErrorsToMap(err)
	assert.Contains(t, fields, "CreateSessionRequest.User.Name")
	assert.Contains(t, fields, "CreateSessionRequest.User.DiabetesType")
	assert.Contains(t, fields, "CreateSessionRequest.User.MaxDailyGlucoseLimit")
}

func TestAddItemRequest(t *testing.T) {
	v := New()
	item := health.FoodItem{ID: "cake", Name: "Cake", Price: decimal.NewFromInt(5), GlucoseImpact: 9, SugarContent: 45}

	req := AddItemRequest{Item: item}
	require.NoError(t, v.Struct(req))
	assert.Equal(t, 1, req.Units())

	item.GlucoseImpact = 11
	assert.Error(t, v.Struct(AddItemRequest{Item: item}))

	item.GlucoseImpact = 9
	assert.Error(t, v.Struct(AddItemRequest{Item: item, Quantity: -1}))
}

func TestUpdateQuantityRequest(t *testing.T) {
	v := New()
	zero := 0
	assert.NoError(t, v.Struct(UpdateQuantityRequest{Quantity: &zero}))
	assert.Error(t, v.Struct(UpdateQuantityRequest{}))

	neg := -2
	assert.Error(t, v.Struct(UpdateQuantityRequest{Quantity: &neg}))
}

func TestCheckoutRequest_PaymentVariants(t *testing.T) {
	v := New()
	addr := &health.DeliveryAddress{FullAddress: "1 Main St", City: "Springfield"}

	tests := []struct {
		name    string
		payment *health.PaymentMethod
		wantErr bool
	}{
		{"missing", nil, true},
		{"cod", &health.PaymentMethod{Type: health.PaymentCOD}, false},
		{"card with digits", &health.PaymentMethod{Type: health.PaymentCard, Details: &health.PaymentDetails{LastFourDigits: "1234"}}, false},
		{"card without digits", &health.PaymentMethod{Type: health.PaymentCard}, true},
		{"wallet without name", &health.PaymentMethod{Type: health.PaymentWallet}, true},
		{"netbanking", &health.PaymentMethod{Type: health.PaymentNetBanking, Details: &health.PaymentDetails{Bank: "HDFC"}}, false},
		{"unknown type", &health.PaymentMethod{Type: "barter"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(CheckoutRequest{Address: addr, Payment: tt.payment})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := v.Struct(CheckoutRequest{Address: &health.DeliveryAddress{}, Payment: &health.PaymentMethod{Type: health.PaymentCash}})
	require.Error(t, err)
	assert.Contains(t, ErrorsToMap(err), "CheckoutRequest.Address.FullAddress")
}

func TestActionRequests(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(EscalationRequest{Action: "send"}))
	assert.Error(t, v.Struct(EscalationRequest{Action: "proceed"}))
	assert.NoError(t, v.Struct(WarningRequest{Action: "proceed"}))
	assert.Error(t, v.Struct(WarningRequest{}))
}

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := New()

	run := func(body string) (*httptest.ResponseRecorder, error) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var req WarningRequest
		return w, BindAndValidate(c, &req, v)
	}

	w, err := run(`{"action":"proceed"}`)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)

	w, err = run(`{"action":`)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request_body")

	w, err = run(`{"action":"later"}`)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}
