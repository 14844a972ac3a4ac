package controllers

import (
	"net/http"
	"strings"

	"creme-store/apperrors"
	"creme-store/middlewares"
	"creme-store/validators"

	"github.com/gin-gonic/gin"
)

func (h *Controller) PlaceOrder(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("checkout", succeeded(c)) }()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	sessionID := strings.TrimSpace(c.GetHeader(cartSessionHeader))
	if sessionID == "" {
		respondError(c, apperrors.NewValidationError(map[string]string{"cart": "Your cart is empty."}))
		return
	}

	var form validators.ShippingForm
	if !bindJSON(c, &form) {
		return
	}

	result, err := h.Checkout.Checkout(c.Request.Context(), sessionID, user, form, c.GetHeader(idempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
