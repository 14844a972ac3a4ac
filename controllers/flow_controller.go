package controllers

import (
	"context"
	"net/http"
	"time"

	"creme-store/middlewares"

	"github.com/gin-gonic/gin"
)

func runFlow[In, Out any](c *gin.Context, name string, fn func(context.Context, In) (Out, error)) {
	started := time.Now()
	defer func() { middlewares.RecordFlowRun(name, started, succeeded(c)) }()

	var input In
	if !bindJSON(c, &input) {
		return
	}

	out, err := fn(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Controller) ChatSupport(c *gin.Context) {
	runFlow(c, "chat-support", h.Flows.ChatSupport)
}

func (h *Controller) GiftCard(c *gin.Context) {
	runFlow(c, "gift-card", h.Flows.GiftCard)
}

func (h *Controller) InvoiceEmail(c *gin.Context) {
	runFlow(c, "invoice-email", h.Flows.InvoiceEmail)
}

func (h *Controller) SupportMessage(c *gin.Context) {
	runFlow(c, "support-message", h.Flows.SupportMessage)
}

func (h *Controller) LoyaltyPoints(c *gin.Context) {
	runFlow(c, "loyalty-points", h.Flows.LoyaltyPoints)
}

