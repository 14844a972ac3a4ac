package controllers

import (
	"log"
	"net/http"
	"strconv"

	"creme-store/apperrors"
	"creme-store/middlewares"
	"creme-store/models"
	"creme-store/services"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

func (h *Controller) CreateOrder(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("create", succeeded(c)) }()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}
	input.UserID = user.UserID
	if input.UserEmail == "" {
		input.UserEmail = user.Email
	}
	input.CheckoutKey = c.GetHeader(idempotencyHeader)

	result, err := h.Orders.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"id": result.Order.ID, "orderId": result.Order.OrderID, "order": result.Order})
}

func (h *Controller) GetUserOrders(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("list", succeeded(c)) }()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.Orders.GetUserOrders(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Controller) GetOrderDetails(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("details", succeeded(c)) }()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	order, err := h.Orders.GetOrderDetails(c.Request.Context(), c.Param("id"), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Controller) GetAllOrdersForAdmin(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("admin_list", succeeded(c)) }()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.NewValidationError(map[string]string{"limit": "must be a whole number"}))
			return
		}
		limit = v
	}

	orders, err := h.Orders.GetAllOrdersForAdmin(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Controller) UpdateOrderStatus(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("update_status", succeeded(c)) }()

	var request struct {
		Status models.OrderStatus `json:"status"`
	}
	if !bindJSON(c, &request) {
		return
	}

	order, err := h.Orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), request.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "id": order.ID, "status": order.Status})
}

// HandleDeadLetter lets operators report an order event that could not be processed.
func (h *Controller) HandleDeadLetter(c *gin.Context) {
	defer func() { middlewares.RecordOrderOperation("dead_letter", succeeded(c)) }()

	var deadLetter struct {
		OrderID string `json:"order_id"`
		Reason  string `json:"reason"`
	}
	if !bindJSON(c, &deadLetter) {
		return
	}
	if deadLetter.OrderID == "" {
		respondError(c, apperrors.NewValidationError(map[string]string{"order_id": "is required"}))
		return
	}

	log.Printf("Handling dead letter for order %s: %s", deadLetter.OrderID, deadLetter.Reason)
	c.JSON(http.StatusOK, gin.H{"message": "Dead letter processed"})
}
