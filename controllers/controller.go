package controllers

import (
	"log"
	"net/http"

	"creme-store/apperrors"
	"creme-store/cart"
	"creme-store/flows"
	"creme-store/mailer"
	"creme-store/middlewares"
	"creme-store/services"

	"github.com/gin-gonic/gin"
)

// Controller holds everything the HTTP handlers need.
type Controller struct {
	Orders   *services.OrderService
	Checkout *services.CheckoutService
	Catalog  *services.CatalogService
	Carts    cart.Store
	Flows    *flows.Runner
	Mailer   *mailer.Mailer
}

func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{"error": apperrors.Code(err)}

	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		body["message"] = "Something went wrong. Please try again."
	} else {
		body["message"] = err.Error()
	}
	if fields := apperrors.Fields(err); fields != nil {
		body["fields"] = fields
	}
	c.JSON(status, body)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.NewValidationError(map[string]string{"body": "invalid JSON: " + err.Error()}))
		return false
	}
	return true
}

func currentUser(c *gin.Context) (services.Customer, bool) {
	userID := c.GetString(middlewares.ContextUserID)
	if userID == "" {
		respondError(c, apperrors.ErrUnauthenticated)
		return services.Customer{}, false
	}
	return services.Customer{UserID: userID, Email: c.GetString(middlewares.ContextEmail)}, true
}

func succeeded(c *gin.Context) bool {
	return c.Writer.Status() >= 200 && c.Writer.Status() < 300
}
