package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/cart"
	"roamly/api/middleware"
)

type CartHandlers struct {
	Products ProductRepository
	Visitors visitorSource
	logger   *zap.Logger
}

func NewCartHandlers(products ProductRepository, visitors visitorSource, logger *zap.Logger) *CartHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandlers{Products: products, Visitors: visitors, logger: logger}
}

type cartResponse struct {
	Lines []cart.Line `json:"lines"`
	Total string      `json:"total"`
	Count int         `json:"count"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *CartHandlers) visitorCart(c *gin.Context) *cart.Store {
	return h.Visitors.Get(c.Request.Context(), middleware.VisitorID(c)).Cart
}

func (h *CartHandlers) respond(c *gin.Context, s *cart.Store) {
	c.JSON(http.StatusOK, cartResponse{
		Lines: s.Lines(),
		Total: s.Total().StringFixed(2),
		Count: s.Count(),
	})
}

func (h *CartHandlers) Get(c *gin.Context) {
	h.respond(c, h.visitorCart(c))
}

// AddItem adds one of a product. Title, price and image come from the catalogue, not the client.
func (h *CartHandlers) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	product, err := h.Products.GetProduct(ctx, req.ProductID)
	if err != nil {
		status := storeStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("load product for cart", zap.String("product_id", req.ProductID), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": "Product not available"})
		return
	}
	if !product.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not available"})
		return
	}

	s := h.visitorCart(c)
	err = s.Add(cart.Item{
		ID:    product.ID,
		Title: product.Title,
		Price: product.Price,
		Image: product.Image,
		Type:  product.Type,
	})
	if err != nil {
		if errors.Is(err, cart.ErrInvalidItem) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Product cannot be added", "details": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		return
	}
	h.respond(c, s)
}

// UpdateItem sets a line's quantity; zero or less removes it.
func (h *CartHandlers) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	s := h.visitorCart(c)
	s.UpdateQuantity(c.Param("id"), *req.Quantity)
	h.respond(c, s)
}

func (h *CartHandlers) RemoveItem(c *gin.Context) {
	s := h.visitorCart(c)
	s.Remove(c.Param("id"))
	h.respond(c, s)
}

func (h *CartHandlers) Clear(c *gin.Context) {
	s := h.visitorCart(c)
	s.Clear()
	h.respond(c, s)
}
