// Package httpapi: тонкий JSON API над сервисом заказов и сагой подтверждения.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/domain"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/orders"
	"github.com/vladislavdragonenkov/kitchen-oms/internal/service/saga"
)

// OrderService: операции над составом заказа.
type OrderService interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListOrders(ctx context.Context, query domain.ListOrdersQuery) (domain.OrderPage, error)
	AddProduct(ctx context.Context, orderID string, input orders.AddProductInput) (domain.Order, error)
	RemoveProduct(ctx context.Context, orderID, itemID string) (domain.Order, error)
	UpdateItemQuantity(ctx context.Context, orderID, itemID string, quantity int) (domain.Order, error)
	UpdateIngredientQuantity(ctx context.Context, orderID, itemID, ingredientID string, quantity int) (domain.Order, error)
	UpdateObservation(ctx context.Context, orderID, itemID, observation string) (domain.Order, error)
}

// OrderConfirmer запускает сагу подтверждения.
type OrderConfirmer interface {
	Confirm(ctx context.Context, orderID, bearerToken string) (saga.ConfirmationResult, error)
}

// Handler обслуживает /api/v1/orders.
type Handler struct {
	orders    OrderService
	confirmer OrderConfirmer
	logger    *log.Entry
}

// NewHandler конструирует обработчик.
func NewHandler(orders OrderService, confirmer OrderConfirmer, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &Handler{orders: orders, confirmer: confirmer, logger: logger}
}

// NewRouter собирает gin.Engine с middleware и маршрутами API.
func NewRouter(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(h.logger))
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

// RegisterRoutes регистрирует маршруты заказов.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/orders")
	{
		group.POST("", h.createOrder)
		group.GET("", h.listOrders)
		group.GET("/:id", h.getOrder)
		group.POST("/:id/items", h.addProduct)
		group.DELETE("/:id/items/:itemId", h.removeProduct)
		group.PUT("/:id/items/:itemId/quantity", h.updateItemQuantity)
		group.PUT("/:id/items/:itemId/observation", h.updateObservation)
		group.PUT("/:id/items/:itemId/ingredients/:ingredientId/quantity", h.updateIngredientQuantity)
		group.POST("/:id/confirm", h.confirm)
	}
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), orders.CreateOrderInput{CustomerID: req.CustomerID, Source: req.Source})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) listOrders(c *gin.Context) {
	query := domain.ListOrdersQuery{CustomerID: c.Query("customerId")}

	var err error
	if query.Page, err = intQuery(c, "page"); err != nil {
		badRequest(c, err)
		return
	}
	if query.PageSize, err = intQuery(c, "pageSize"); err != nil {
		badRequest(c, err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseOrderStatus(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		query.Status = &status
	}

	page, err := h.orders.ListOrders(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := orderPageResponse{
		Items:       make([]orderResponse, 0, len(page.Items)),
		Page:        page.Page,
		PageSize:    page.PageSize,
		HasNextPage: page.HasNextPage,
	}
	for _, order := range page.Items {
		out.Items = append(out.Items, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	h.respondOrder(c, order, err)
}

func (h *Handler) addProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.AddProduct(c.Request.Context(), c.Param("id"), req.input())
	h.respondOrder(c, order, err)
}

func (h *Handler) removeProduct(c *gin.Context) {
	order, err := h.orders.RemoveProduct(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	h.respondOrder(c, order, err)
}

func (h *Handler) updateItemQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateItemQuantity(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.Quantity)
	h.respondOrder(c, order, err)
}

func (h *Handler) updateIngredientQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateIngredientQuantity(c.Request.Context(), c.Param("id"), c.Param("itemId"), c.Param("ingredientId"), req.Quantity)
	h.respondOrder(c, order, err)
}

func (h *Handler) updateObservation(c *gin.Context) {
	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateObservation(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.Observation)
	h.respondOrder(c, order, err)
}

// confirm пробрасывает bearer-токен клиента в платёжный шлюз.
func (h *Handler) confirm(c *gin.Context) {
	result, err := h.confirmer.Confirm(c.Request.Context(), c.Param("id"), bearerToken(c.GetHeader("Authorization")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmResponse{
		Order:          toOrderResponse(result.Order),
		PaymentID:      result.PaymentID,
		PaymentSkipped: result.PaymentSkipped,
	})
}

func (h *Handler) respondOrder(c *gin.Context, order domain.Order, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrPageInvalid
	}
	return n, nil
}
