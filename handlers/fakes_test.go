package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"roamly/api/checkout"
	"roamly/api/content"
	"roamly/api/models"
	"roamly/api/routes"
	"roamly/api/session"
	"roamly/api/store"
	"roamly/api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testAdminEmail    = "admin@roamly.test"
	testAdminPassword = "correct horse battery"
)

type fakeAdmins struct {
	admin models.Admin
}

func newFakeAdmins(t *testing.T) *fakeAdmins {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	return &fakeAdmins{admin: models.Admin{ID: 1, Email: testAdminEmail, HashedPassword: hash}}
}

func (f *fakeAdmins) GetAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	if !strings.EqualFold(email, f.admin.Email) {
		return nil, store.ErrNotFound
	}
	a := f.admin
	return &a, nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[string]models.Post
	seq   int
}

func newFakePosts(posts ...models.Post) *fakePosts {
	f := &fakePosts{posts: map[string]models.Post{}}
	for _, p := range posts {
		f.posts[p.ID] = p
	}
	return f
}

func (f *fakePosts) ListPosts(_ context.Context, filter models.PostFilter) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Post{}
	for _, p := range f.posts {
		if filter.Kind != "" && p.Kind != filter.Kind {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.PublishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakePosts) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePosts) HasSlug(ctx context.Context, slug string) (bool, error) {
	p, err := f.GetPostBySlug(ctx, slug)
	if err != nil {
		return false, nil
	}
	return p.Published, nil
}

func (f *fakePosts) CreatePost(_ context.Context, in models.PostInput) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == in.Slug {
			return nil, store.ErrConflict
		}
	}
	f.seq++
	p := models.Post{
		ID:        fmt.Sprintf("post-%d", f.seq),
		Kind:      in.Kind,
		Slug:      in.Slug,
		Title:     in.Title,
		Body:      in.Body,
		Category:  in.Category,
		Published: in.Published,
	}
	f.posts[p.ID] = p
	return &p, nil
}

func (f *fakePosts) UpdatePost(_ context.Context, id string, in models.PostInput) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Title, p.Body, p.Published = in.Title, in.Body, in.Published
	f.posts[id] = p
	return &p, nil
}

func (f *fakePosts) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

type fakeProducts struct {
	products map[string]models.Product
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{products: map[string]models.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) ListProducts(_ context.Context, activeOnly bool) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) CreateProduct(_ context.Context, in models.ProductInput) (*models.Product, error) {
	p := models.Product{ID: fmt.Sprintf("prod-%d", len(f.products)+1), Title: in.Title, Price: in.Price, Type: in.Type, Active: in.Active}
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeProducts) UpdateProduct(_ context.Context, id string, in models.ProductInput) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Title, p.Price, p.Active = in.Title, in.Price, in.Active
	f.products[id] = p
	return &p, nil
}

func (f *fakeProducts) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeGallery struct {
	images []models.GalleryImage
}

func (f *fakeGallery) ListImages(context.Context) ([]models.GalleryImage, error) {
	return append([]models.GalleryImage{}, f.images...), nil
}

func (f *fakeGallery) AddImage(_ context.Context, in models.GalleryImageInput) (*models.GalleryImage, error) {
	img := models.GalleryImage{ID: fmt.Sprintf("img-%d", len(f.images)+1), URL: in.URL, Caption: in.Caption}
	f.images = append(f.images, img)
	return &img, nil
}

func (f *fakeGallery) DeleteImage(_ context.Context, id string) error {
	for i, img := range f.images {
		if img.ID == id {
			f.images = append(f.images[:i], f.images[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// fakeOrders is both the checkout order placer and the admin order repository.
type fakeOrders struct {
	mu     sync.Mutex
	placed []checkout.Order
	status map[string]string
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{status: map[string]string{}}
}

func (f *fakeOrders) PlaceOrder(_ context.Context, o checkout.Order) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, o)
	id := fmt.Sprintf("ord_%d", len(f.placed))
	f.status[id] = models.OrderPendingReview
	return id, nil
}

func (f *fakeOrders) Placed() []checkout.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]checkout.Order(nil), f.placed...)
}

func (f *fakeOrders) ListOrders(_ context.Context, status string, _ int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for id, s := range f.status {
		if status == "" || s == status {
			out = append(out, models.Order{ID: id, Status: s})
		}
	}
	return out, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.status[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.Order{ID: id, Status: s}, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.status[id]; !ok {
		return store.ErrNotFound
	}
	f.status[id] = status
	return nil
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (u *memUploader) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[name] = b
	return "https://files.roamly.test/" + name, nil
}

func (u *memUploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}

type fakeAnalytics struct {
	AnalyticsRepository
	mu     sync.Mutex
	events []models.AnalyticsEvent
}

func (f *fakeAnalytics) InsertAnalyticsEvents(_ context.Context, events []models.AnalyticsEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeAnalytics) RecordView(ctx context.Context, v routes.ViewEvent) error {
	return f.InsertAnalyticsEvents(ctx, []models.AnalyticsEvent{{EventType: models.EventPageView, PagePath: v.Path, SessionID: v.VisitorID}})
}

func (f *fakeAnalytics) GetTopNPagePaths(_ context.Context, _, _ time.Time, limit uint64) ([]models.TopPathResult, error) {
	return []models.TopPathResult{{PagePath: "#shop", Count: limit}}, nil
}

func (f *fakeAnalytics) Events() []models.AnalyticsEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AnalyticsEvent(nil), f.events...)
}

// testEnv wires the full router against in-memory fakes.
type testEnv struct {
	router    *gin.Engine
	tokens    *utils.TokenIssuer
	posts     *fakePosts
	products  *fakeProducts
	gallery   *fakeGallery
	orders    *fakeOrders
	uploads   *memUploader
	analytics *fakeAnalytics
	visitors  *session.Registry
}

type envOption func(*envConfig)

type envConfig struct {
	analyticsOff bool
}

func withoutAnalytics() envOption {
	return func(c *envConfig) { c.analyticsOff = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	tokens, err := utils.NewTokenIssuer("handler-test-secret", time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		tokens: tokens,
		posts: newFakePosts(
			models.Post{ID: "p-1", Kind: models.PostKindBlog, Slug: "lisbon-on-foot", Title: "Lisbon on foot", Body: "# Day one\n\n<script>alert(1)</script>", Category: "europe", Published: true},
			models.Post{ID: "p-2", Kind: models.PostKindAdventure, Slug: "annapurna", Title: "Annapurna", Category: "asia", Published: true},
			models.Post{ID: "p-3", Kind: models.PostKindBlog, Slug: "unfinished", Title: "Draft", Published: false},
		),
		products: newFakeProducts(
			models.Product{ID: "preset-pack", Title: "Preset pack", Price: decimal.RequireFromString("10.00"), Type: "preset", Active: true},
			models.Product{ID: "city-guide", Title: "City guide", Price: decimal.RequireFromString("5.00"), Type: "guide", Active: true},
			models.Product{ID: "retired", Title: "Old map", Price: decimal.RequireFromString("1.00"), Type: "map", Active: false},
		),
		gallery:   &fakeGallery{},
		orders:    newFakeOrders(),
		uploads:   &memUploader{},
		analytics: &fakeAnalytics{},
	}
	env.visitors = session.NewRegistry(nil, env.orders, time.Hour, nil)
	t.Cleanup(env.visitors.Close)

	var (
		analytics AnalyticsRepository
		recorder  routes.ViewRecorder
	)
	if !cfg.analyticsOff {
		analytics, recorder = env.analytics, env.analytics
	}

	srv := &Server{
		Auth:       NewAuthHandlers(newFakeAdmins(t), tokens, false, nil),
		Navigation: NewNavigationHandlers(routes.NewNavigator(env.posts, recorder, nil), env.visitors),
		Cart:       NewCartHandlers(env.products, env.visitors, nil),
		Checkout:   NewCheckoutHandlers(env.visitors, env.uploads, nil),
		Content:    NewContentHandlers(env.posts, env.products, env.gallery, content.NewRenderer(), nil),
		Admin:      NewAdminHandlers(env.posts, env.products, env.gallery, env.orders, env.uploads, nil),
		Analytics:  NewAnalyticsHandlers(analytics, nil),
		Tokens:     tokens,
		FEOrigin:   "http://localhost:3000",
	}
	env.router = srv.Router()
	return env
}

// client replays cookies between requests like a browser.
type client struct {
	t       *testing.T
	env     *testEnv
	cookies map[string]*http.Cookie
	bearer  string
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e, cookies: map[string]*http.Cookie{}}
}

// asAdmin attaches a valid admin bearer token.
func (c *client) asAdmin() *client {
	tok, err := c.env.tokens.GenerateJWT(&models.Admin{ID: 1, Email: testAdminEmail})
	require.NoError(c.t, err)
	c.bearer = tok
	return c
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) json(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *client) multipart(path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}
