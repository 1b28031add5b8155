package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/healthmart/internal/domain/model"
	"github.com/polkiloo/healthmart/internal/server/http/dto"
)

// OrderHandler manages checkout and order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Quote handles POST /api/orders/quote.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid cart payload")
		return
	}
	quote, err := h.facade.Quote(c.Request.Context(), toLineRequests(req.Lines()), model.ShippingMethod(req.ShippingMethod))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.QuoteResponse{
		OrderItems:   toLineResponses(quote.Lines),
		Subtotal:     quote.Subtotal,
		ShippingCost: quote.ShippingCost,
		TotalAmount:  quote.TotalAmount,
	})
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order payload")
		return
	}

	a := req.ShippingAddress
	order, err := h.facade.PlaceOrder(c.Request.Context(), model.PlaceOrderRequest{
		UserID:          CurrentUserID(c),
		Lines:           toLineRequests(req.Lines()),
		ShippingAddress: model.ShippingAddress{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country},
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		ShippingMethod:  model.ShippingMethod(req.ShippingMethod),
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id, CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(*order))
}

// Mine handles GET /api/orders/myorders.
func (h *OrderHandler) Mine(c *gin.Context) {
	orders, err := h.facade.MyOrders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	count := len(orders)
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Count: &count, Data: toOrderResponses(orders)})
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	number, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	filter := model.OrderFilter{
		Status:        model.OrderStatus(c.Query("status")),
		PaymentStatus: model.PaymentStatus(c.Query("paymentStatus")),
		Page:          model.Page{Number: number, Limit: limit},
	}

	page, err := h.facade.Orders(c.Request.Context(), filter)
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
		Data:       toOrderResponses(page.Items),
	})
}

// UpdateStatus handles PUT /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), id, model.OrderStatus(req.Status), req.TrackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(*order))
}

// UpdatePayment handles PUT /api/orders/:id/payment.
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "paymentStatus is required")
		return
	}
	order, err := h.facade.UpdatePaymentStatus(c.Request.Context(), id, model.PaymentStatus(req.Status), req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(*order))
}
