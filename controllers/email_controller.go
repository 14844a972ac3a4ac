package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"creme-store/apperrors"
	"creme-store/mailer"
	"creme-store/middlewares"

	"github.com/gin-gonic/gin"
)

// SendEmail sends a branded email. Customers may only write to their own address;
// administrators may write to anyone.
func (h *Controller) SendEmail(c *gin.Context) {
	customer, ok := currentUser(c)
	if !ok {
		return
	}

	var email mailer.Email
	if !bindJSON(c, &email) {
		return
	}

	if !c.GetBool(middlewares.ContextIsAdmin) && !strings.EqualFold(strings.TrimSpace(email.To), customer.Email) {
		respondError(c, fmt.Errorf("%w: emails can only be sent to your own address", apperrors.ErrForbidden))
		return
	}

	if err := h.Mailer.SendBrandedEmail(c.Request.Context(), email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}
