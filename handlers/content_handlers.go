package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"roamly/api/middleware"
	"roamly/api/models"
)

// Largest page a public listing returns.
const maxListLimit = 100

type markdownRenderer interface {
	Render(markdown string) (string, error)
}

// ContentHandlers serves the public read side: posts, adventures, gallery and shop.
type ContentHandlers struct {
	Posts    PostRepository
	Products ProductRepository
	Gallery  GalleryRepository
	Renderer markdownRenderer
	logger   *zap.Logger
}

func NewContentHandlers(posts PostRepository, products ProductRepository, gallery GalleryRepository, renderer markdownRenderer, logger *zap.Logger) *ContentHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandlers{Posts: posts, Products: products, Gallery: gallery, Renderer: renderer, logger: logger}
}

// ListPosts lists published posts. kind and category narrow the listing.
func (h *ContentHandlers) ListPosts(c *gin.Context) {
	kind := c.Query("kind")
	if kind != "" && kind != models.PostKindBlog && kind != models.PostKindAdventure {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be 'blog' or 'adventure'"})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	posts, err := h.Posts.ListPosts(ctx, models.PostFilter{
		Kind:          kind,
		Category:      c.Query("category"),
		PublishedOnly: true,
		Limit:         limit,
	})
	if err != nil {
		h.logger.Error("list posts", zap.Error(err))
		c.JSON(storeStatus(err), gin.H{"error": "Failed to retrieve posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns one post with its rendered body. Drafts are visible to admins only.
func (h *ContentHandlers) GetPost(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := h.Posts.GetPostBySlug(ctx, c.Param("slug"))
	if err != nil {
		status := storeStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("get post", zap.String("slug", c.Param("slug")), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": "Post not found"})
		return
	}
	if !post.Published && !middleware.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	html, err := h.Renderer.Render(post.Body)
	if err != nil {
		h.logger.Error("render post body", zap.String("slug", post.Slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render post"})
		return
	}
	post.BodyHTML = html
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandlers) ListGallery(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	images, err := h.Gallery.ListImages(ctx)
	if err != nil {
		h.logger.Error("list gallery", zap.Error(err))
		c.JSON(storeStatus(err), gin.H{"error": "Failed to retrieve gallery"})
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *ContentHandlers) ListProducts(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	products, err := h.Products.ListProducts(ctx, true)
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		c.JSON(storeStatus(err), gin.H{"error": "Failed to retrieve products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ContentHandlers) GetProduct(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	product, err := h.Products.GetProduct(ctx, c.Param("id"))
	if err != nil {
		status := storeStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("get product", zap.String("product_id", c.Param("id")), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": "Product not found"})
		return
	}
	if !product.Active && !middleware.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// parseLimit reads ?limit=, writing a 400 when it is not a positive integer.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return maxListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}
