package httpx

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("qty: %w", orders.ErrValidation)))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("order 7: %w", orders.ErrNotFound)))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("dup: %w", orders.ErrConflict)))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("stock: %w", orders.ErrInsufficientStock)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}
