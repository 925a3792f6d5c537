package response

import (
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, err error) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Set(RequestIDKey, "req-1")

	HandleAppError(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.ErrorCode
	}{
		{"not found", order.NewOrderNotFoundError(7), http.StatusNotFound, errors.CodeOrderNotFound},
		{"access denied looks like not found", order.NewAccessDeniedError(7), http.StatusNotFound, errors.CodeOrderNotFound},
		{"invalid status", order.NewInvalidStatusError("SHIPPED"), http.StatusBadRequest, errors.CodeInvalidOrderStatus},
		{"insufficient stock", &product.InsufficientStockError{ProductID: 1, Requested: 2}, http.StatusConflict, errors.CodeInsufficientStock},
		{"payment", errors.New(errors.CodePaymentFailed, "gateway down"), http.StatusBadGateway, errors.CodePaymentFailed},
		{"unknown", stdErrors.New("boom"), http.StatusInternalServerError, errors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := render(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.Equal(t, string(tt.code), body.Error)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestHandleAppErrorMasksInternalMessage(t *testing.T) {
	_, body := render(t, stdErrors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.Equal(t, "internal server error", body.Message)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 3, NewPagination(1, 20, 41).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 10).TotalPages)
}
