package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamly/api/models"
	"roamly/api/session"
	"roamly/api/store"
)

// Default deadline for store calls made from a request.
const storeTimeout = 10 * time.Second

// visitorSource hands out the per-visitor state for a cookie id.
type visitorSource interface {
	Get(ctx context.Context, id string) *session.Visitor
}

type AdminRepository interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type PostRepository interface {
	ListPosts(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type ProductRepository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type GalleryRepository interface {
	ListImages(ctx context.Context) ([]models.GalleryImage, error)
	AddImage(ctx context.Context, in models.GalleryImageInput) (*models.GalleryImage, error)
	DeleteImage(ctx context.Context, id string) error
}

type OrderRepository interface {
	ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) error
}

// storeStatus maps store errors to HTTP status codes.
func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storeTimeout)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
