package controllers

import (
	"net/http"
	"strings"

	"creme-store/apperrors"
	"creme-store/cart"
	"creme-store/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const cartSessionHeader = "X-Cart-Session"

type cartResponse struct {
	Cart         *cart.Session      `json:"cart"`
	Total        float64            `json:"total"`
	ItemCount    int                `json:"itemCount"`
	Notification *cart.Notification `json:"notification,omitempty"`
}

func newCartResponse(s *cart.Session, n *cart.Notification) cartResponse {
	return cartResponse{Cart: s, Total: s.Total(), ItemCount: s.ItemCount(), Notification: n}
}

// cartSession reads the session id, minting one for first-time visitors. The id is
// always echoed back so the storefront can keep it.
func cartSession(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(cartSessionHeader))
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(cartSessionHeader, id)
	return id
}

func (h *Controller) GetCart(c *gin.Context) {
	session, err := h.Carts.Load(c.Request.Context(), cartSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session, nil))
}

func (h *Controller) AddCartItem(c *gin.Context) {
	defer func() { middlewares.RecordCartOperation("add", succeeded(c)) }()

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if input.ProductID == "" {
		respondError(c, apperrors.NewValidationError(map[string]string{"productId": "is required"}))
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	ctx := c.Request.Context()
	product, err := h.Catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	var note cart.Notification
	session, err := h.Carts.Update(ctx, cartSession(c), func(s *cart.Session) error {
		n, err := s.AddToCart(*product, input.Quantity)
		note = n
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session, &note))
}

func (h *Controller) UpdateCartItem(c *gin.Context) {
	defer func() { middlewares.RecordCartOperation("update", succeeded(c)) }()

	var input struct {
		Quantity *int `json:"quantity"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if input.Quantity == nil {
		respondError(c, apperrors.NewValidationError(map[string]string{"quantity": "is required"}))
		return
	}

	productID := c.Param("productId")
	session, err := h.Carts.Update(c.Request.Context(), cartSession(c), func(s *cart.Session) error {
		s.UpdateItemQuantity(productID, *input.Quantity)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session, nil))
}

func (h *Controller) RemoveCartItem(c *gin.Context) {
	defer func() { middlewares.RecordCartOperation("remove", succeeded(c)) }()

	productID := c.Param("productId")
	var note cart.Notification
	session, err := h.Carts.Update(c.Request.Context(), cartSession(c), func(s *cart.Session) error {
		note = s.RemoveItemFromCart(productID)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session, &note))
}

func (h *Controller) ClearCart(c *gin.Context) {
	defer func() { middlewares.RecordCartOperation("clear", succeeded(c)) }()

	session, err := h.Carts.Update(c.Request.Context(), cartSession(c), func(s *cart.Session) error {
		s.ClearCart()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(session, nil))
}
