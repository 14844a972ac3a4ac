package controllers

import (
	"net/http"
	"strconv"

	"creme-store/apperrors"
	"creme-store/models"
	"creme-store/services"

	"github.com/gin-gonic/gin"
)

func (h *Controller) ListProducts(c *gin.Context) {
	filter := models.ProductFilter{
		CategorySlug: c.Query("category"),
		SubCategory:  c.Query("subCategory"),
	}
	for name, dst := range map[string]*bool{"featured": &filter.Featured, "weeklyDeal": &filter.WeeklyDeal} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, apperrors.NewValidationError(map[string]string{name: "must be true or false"}))
			return
		}
		*dst = v
	}

	products, err := h.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *Controller) GetProduct(c *gin.Context) {
	product, err := h.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Controller) CreateProduct(c *gin.Context) {
	var input services.CreateProductInput
	if !bindJSON(c, &input) {
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}
