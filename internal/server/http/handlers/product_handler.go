package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/server/http/dto"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	facade CatalogFacade
	now    func() time.Time
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(facade CatalogFacade) *ProductHandler {
	return &ProductHandler{facade: facade, now: time.Now}
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	filter, ok := productFilter(c)
	if !ok {
		return
	}

	page, err := h.facade.Products(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	count := len(page.Items)
	total := page.Total
	c.JSON(http.StatusOK, dto.Envelope{
		Success:    true,
		Count:      &count,
		Total:      &total,
		Pagination: toPagination(page.Pagination),
		Data:       toProductResponses(page.Items, h.now()),
	})
}

func productFilter(c *gin.Context) (model.ProductFilter, bool) {
	filter := model.ProductFilter{
		Category:   model.Category(c.Query("category")),
		Search:     c.Query("search"),
		Sort:       model.ProductSort(c.Query("sort")),
		ActiveOnly: true,
	}

	number, ok := queryInt(c, "page")
	if !ok {
		return filter, false
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return filter, false
	}
	filter.Page = model.Page{Number: number, Limit: limit}

	for name, dst := range map[string]**model.Money{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "invalid "+name)
			return filter, false
		}
		m := model.MoneyFromFloat(v)
		*dst = &m
	}

	if raw := c.Query("inStock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid inStock")
			return filter, false
		}
		filter.InStock = v
	}
	return filter, true
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.facade.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toProductResponse(*product, h.now()))
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	product, err := h.facade.CreateProduct(c.Request.Context(), fromProductRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toProductResponse(*product, h.now()))
}

// Update handles PUT /api/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid product payload")
		return
	}
	product, err := h.facade.UpdateProduct(c.Request.Context(), id, fromProductPatchRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toProductResponse(*product, h.now()))
}

// Delete handles DELETE /api/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: gin.H{}})
}

// SetStock handles PUT /api/products/:id/stock.
func (h *ProductHandler) SetStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "stock is required")
		return
	}
	product, err := h.facade.SetStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toProductResponse(*product, h.now()))
}

// AddReview handles POST /api/products/:id/reviews.
func (h *ProductHandler) AddReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rating is required")
		return
	}
	product, err := h.facade.AddReview(c.Request.Context(), id, CurrentUserID(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toProductResponse(*product, h.now()))
}
