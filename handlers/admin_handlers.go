package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/models"
	"roamly/api/storage"
)

// Upload folders, one per admin screen.
var uploadPrefixes = map[string]bool{
	"posts":    true,
	"products": true,
	"gallery":  true,
}

// AdminHandlers backs the admin screens. Every route sits behind AdminRequired.
type AdminHandlers struct {
	Posts    PostRepository
	Products ProductRepository
	Gallery  GalleryRepository
	Orders   OrderRepository
	Uploader storage.Uploader
	logger   *zap.Logger
}

func NewAdminHandlers(posts PostRepository, products ProductRepository, gallery GalleryRepository, orders OrderRepository, uploader storage.Uploader, logger *zap.Logger) *AdminHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandlers{
		Posts:    posts,
		Products: products,
		Gallery:  gallery,
		Orders:   orders,
		Uploader: uploader,
		logger:   logger,
	}
}

func (h *AdminHandlers) storeError(c *gin.Context, op string, err error) {
	status := storeStatus(err)
	switch status {
	case http.StatusNotFound:
		c.JSON(status, gin.H{"error": "Not found"})
	case http.StatusConflict:
		c.JSON(status, gin.H{"error": "Slug already in use"})
	default:
		h.logger.Error(op, zap.Error(err))
		c.JSON(status, gin.H{"error": "Failed to " + op})
	}
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

// ListPosts includes drafts.
func (h *AdminHandlers) ListPosts(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	posts, err := h.Posts.ListPosts(ctx, models.PostFilter{Kind: c.Query("kind"), Category: c.Query("category")})
	if err != nil {
		h.storeError(c, "list posts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *AdminHandlers) CreatePost(c *gin.Context) {
	var in models.PostInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := h.Posts.CreatePost(ctx, in)
	if err != nil {
		h.storeError(c, "create post", err)
		return
	}
	h.logger.Info("post created", zap.String("slug", post.Slug), zap.String("kind", post.Kind))
	c.JSON(http.StatusCreated, post)
}

func (h *AdminHandlers) UpdatePost(c *gin.Context) {
	var in models.PostInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := h.Posts.UpdatePost(ctx, c.Param("id"), in)
	if err != nil {
		h.storeError(c, "update post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *AdminHandlers) DeletePost(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Posts.DeletePost(ctx, c.Param("id")); err != nil {
		h.storeError(c, "delete post", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProducts includes inactive products.
func (h *AdminHandlers) ListProducts(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	products, err := h.Products.ListProducts(ctx, false)
	if err != nil {
		h.storeError(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *AdminHandlers) bindProduct(c *gin.Context) (models.ProductInput, bool) {
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return in, false
	}
	if in.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return in, false
	}
	return in, true
}

func (h *AdminHandlers) CreateProduct(c *gin.Context) {
	in, ok := h.bindProduct(c)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	product, err := h.Products.CreateProduct(ctx, in)
	if err != nil {
		h.storeError(c, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *AdminHandlers) UpdateProduct(c *gin.Context) {
	in, ok := h.bindProduct(c)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	product, err := h.Products.UpdateProduct(ctx, c.Param("id"), in)
	if err != nil {
		h.storeError(c, "update product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *AdminHandlers) DeleteProduct(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Products.DeleteProduct(ctx, c.Param("id")); err != nil {
		h.storeError(c, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandlers) AddGalleryImage(c *gin.Context) {
	var in models.GalleryImageInput
	if !bindJSON(c, &in) {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	img, err := h.Gallery.AddImage(ctx, in)
	if err != nil {
		h.storeError(c, "add gallery image", err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *AdminHandlers) DeleteGalleryImage(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Gallery.DeleteImage(ctx, c.Param("id")); err != nil {
		h.storeError(c, "delete gallery image", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload stores an image from the "file" form field and returns its public URL.
// The optional "folder" field picks posts, products or gallery.
func (h *AdminHandlers) Upload(c *gin.Context) {
	folder := c.DefaultPostForm("folder", "posts")
	if !uploadPrefixes[folder] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder must be one of posts, products, gallery"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	defer src.Close()

	ctx, cancel := withTimeout(c)
	defer cancel()

	url, err := storage.UploadImage(ctx, h.Uploader, folder, src)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotImage):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only images can be uploaded"})
		case errors.Is(err, storage.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds 10 MB"})
		default:
			h.logger.Error("upload image", zap.String("folder", folder), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload image"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h *AdminHandlers) ListOrders(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", models.OrderPendingReview, models.OrderApproved, models.OrderRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	orders, err := h.Orders.ListOrders(ctx, status, limit)
	if err != nil {
		h.storeError(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandlers) GetOrder(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	order, err := h.Orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		h.storeError(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus approves or rejects an order after the payment proof was checked.
func (h *AdminHandlers) UpdateOrderStatus(c *gin.Context) {
	var req models.OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Orders.UpdateOrderStatus(ctx, c.Param("id"), req.Status); err != nil {
		h.storeError(c, "update order status", err)
		return
	}
	h.logger.Info("order status updated", zap.String("order_id", c.Param("id")), zap.String("status", req.Status))
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}
