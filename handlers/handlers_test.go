package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/api/checkout"
	"roamly/api/middleware"
	"roamly/api/models"
	"roamly/api/routes"
)

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type cartBody struct {
	Lines []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"lines"`
	Total string `json:"total"`
	Count int    `json:"count"`
}

func paymentForm(t *testing.T, method, accept string, proof []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("method", method))
	require.NoError(t, mw.WriteField("acceptTerms", accept))
	if proof != nil {
		fw, err := mw.CreateFormFile("proof", "receipt.png")
		require.NoError(t, err)
		_, err = fw.Write(proof)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func pixel(t *testing.T) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)
	return b
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.client(t).json(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestNavigate(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		fragment string
		current  string
		wantKind routes.Kind
		wantView string
		anchor   bool
		slug     string
	}{
		{name: "named route", fragment: "#blogs", wantKind: routes.Blogs, wantView: "blogs"},
		{name: "about anchors home", fragment: "#about", wantKind: routes.Home, wantView: "home", anchor: true},
		{name: "shop from home anchors", fragment: "#shop", current: "home", wantKind: routes.Home, wantView: "home", anchor: true},
		{name: "shop from gallery navigates", fragment: "#shop", current: "gallery", wantKind: routes.Shop, wantView: "shop"},
		{name: "published slug", fragment: "#lisbon-on-foot", wantKind: routes.Post, wantView: "post", slug: "lisbon-on-foot"},
		{name: "draft slug falls back home", fragment: "#unfinished", wantKind: routes.Home, wantView: "home"},
		{name: "unknown falls back home", fragment: "#nowhere", wantKind: routes.Home, wantView: "home"},
		{name: "admin gated", fragment: "#admin-orders", wantKind: routes.AdminOrders, wantView: routes.AdminLoginView},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"fragment": tt.fragment, "current": tt.current})
			w := env.client(t).json(http.MethodPost, "/api/navigate", string(body))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			nav := decode[routes.Navigation](t, w)
			assert.Equal(t, tt.wantKind, nav.Route.Kind)
			assert.Equal(t, tt.wantView, nav.View.Name)
			assert.Equal(t, tt.anchor, nav.Anchor)
			assert.Equal(t, !tt.anchor, nav.ScrollTop)
			assert.Equal(t, tt.slug, nav.SelectedPost)
		})
	}
}

func TestNavigateAdminWithSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).asAdmin()

	w := c.json(http.MethodPost, "/api/navigate", `{"fragment":"#admin-orders"}`)
	require.Equal(t, http.StatusOK, w.Code)
	nav := decode[routes.Navigation](t, w)
	assert.Equal(t, "admin-orders", nav.View.Name)
}

func TestNavigateKeepsVisitorState(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/navigate", `{"fragment":"#gallery"}`).Code)
	// No current given: the visitor is on gallery, so #shop is a real navigation.
	nav := decode[routes.Navigation](t, c.json(http.MethodPost, "/api/navigate", `{"fragment":"#shop"}`))
	assert.Equal(t, routes.Shop, nav.Route.Kind)
	assert.False(t, nav.Anchor)

	w := c.json(http.MethodGet, "/api/navigate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"shop"`)

	paths := []string{}
	for _, ev := range env.analytics.Events() {
		paths = append(paths, ev.PagePath)
	}
	assert.Equal(t, []string{"#gallery", "#shop"}, paths)
}

func TestNavigateInitFromDeepLink(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	w := c.json(http.MethodPost, "/api/navigate/init", `{"fragment":"#/lisbon-on-foot"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"selectedPost":"lisbon-on-foot"`)

	w = c.json(http.MethodPost, "/api/navigate/init", `{"fragment":"#admin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"admin-login"`)
	assert.Empty(t, env.analytics.Events())
}

func TestCart(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	for _, id := range []string{"preset-pack", "preset-pack", "city-guide"} {
		w := c.json(http.MethodPost, "/api/cart/items", `{"productId":"`+id+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	got := decode[cartBody](t, c.json(http.MethodGet, "/api/cart", ""))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "preset-pack", got.Lines[0].ID)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.Equal(t, "25.00", got.Total)
	assert.Equal(t, 3, got.Count)

	got = decode[cartBody](t, c.json(http.MethodPatch, "/api/cart/items/preset-pack", `{"quantity":0}`))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "5.00", got.Total)

	got = decode[cartBody](t, c.json(http.MethodDelete, "/api/cart/items/absent", ""))
	assert.Equal(t, 1, got.Count)

	got = decode[cartBody](t, c.json(http.MethodDelete, "/api/cart", ""))
	assert.Empty(t, got.Lines)
	assert.Equal(t, "0.00", got.Total)
}

func TestCartRejectsUnknownAndInactiveProducts(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	assert.Equal(t, http.StatusNotFound, c.json(http.MethodPost, "/api/cart/items", `{"productId":"nope"}`).Code)
	assert.Equal(t, http.StatusNotFound, c.json(http.MethodPost, "/api/cart/items", `{"productId":"retired"}`).Code)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodPost, "/api/cart/items", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodPatch, "/api/cart/items/preset-pack", `{}`).Code)
}

func TestCartIsPerVisitor(t *testing.T) {
	env := newTestEnv(t)
	alice, bob := env.client(t), env.client(t)

	require.Equal(t, http.StatusOK, alice.json(http.MethodPost, "/api/cart/items", `{"productId":"city-guide"}`).Code)
	got := decode[cartBody](t, bob.json(http.MethodGet, "/api/cart", ""))
	assert.Zero(t, got.Count)
	assert.Contains(t, alice.cookies, middleware.VisitorCookie)
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/cart/items", `{"productId":"preset-pack"}`).Code)

	snap := decode[checkout.Snapshot](t, c.json(http.MethodGet, "/api/checkout", ""))
	assert.Equal(t, checkout.StepInfo, snap.Step)
	assert.Len(t, snap.Methods, 7)

	w := c.json(http.MethodPost, "/api/checkout/info", `{"email":"traveller@example.com"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.ElementsMatch(t, []string{"firstName", "lastName", "country"},
		decode[struct{ Fields []string }](t, w).Fields)

	w = c.json(http.MethodPost, "/api/checkout/info",
		`{"email":"traveller@example.com","firstName":"Ana","lastName":"Silva","country":"PT"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, checkout.StepPayment, decode[checkout.Snapshot](t, w).Step)

	// Back keeps the contact fields.
	snap = decode[checkout.Snapshot](t, c.json(http.MethodPost, "/api/checkout/back", ""))
	assert.Equal(t, checkout.StepInfo, snap.Step)
	assert.Equal(t, "Ana", snap.Contact.FirstName)
	assert.Equal(t, http.StatusConflict, c.json(http.MethodPost, "/api/checkout/back", "").Code)
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/checkout/info",
		`{"email":"traveller@example.com","firstName":"Ana","lastName":"Silva","country":"PT"}`).Code)

	body, ct := paymentForm(t, "wise", "true", pixel(t))
	w = c.multipart("/api/checkout/payment", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap = decode[checkout.Snapshot](t, w)
	assert.Equal(t, checkout.StepSuccess, snap.Step)
	assert.Equal(t, "ord_1", snap.OrderID)

	placed := env.orders.Placed()
	require.Len(t, placed, 1)
	assert.Equal(t, checkout.Wise, placed[0].Payment.Method)
	assert.Equal(t, "10", placed[0].Total.String())
	assert.Equal(t, 1, env.uploads.Len())

	body, ct = paymentForm(t, "wise", "true", pixel(t))
	assert.Equal(t, http.StatusConflict, c.multipart("/api/checkout/payment", body, ct).Code)
	assert.Len(t, env.orders.Placed(), 1)

	w = c.json(http.MethodPost, "/api/checkout/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next":"shop"`)
	assert.Equal(t, checkout.StepInfo, decode[checkout.Snapshot](t, c.json(http.MethodGet, "/api/checkout", "")).Step)
}

func TestCheckoutPaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	// Wrong step.
	body, ct := paymentForm(t, "paypal", "true", pixel(t))
	assert.Equal(t, http.StatusConflict, c.multipart("/api/checkout/payment", body, ct).Code)

	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/checkout/info",
		`{"email":"traveller@example.com","firstName":"Ana","lastName":"Silva","country":"PT"}`).Code)

	// Empty cart.
	body, ct = paymentForm(t, "paypal", "true", pixel(t))
	w := c.multipart("/api/checkout/payment", body, ct)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "empty")

	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/cart/items", `{"productId":"city-guide"}`).Code)

	body, ct = paymentForm(t, "cash", "false", nil)
	w = c.multipart("/api/checkout/payment", body, ct)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"method", "acceptTerms", "proof"}, decode[struct{ Fields []string }](t, w).Fields)

	body, ct = paymentForm(t, "wise", "yes", pixel(t))
	w = c.multipart("/api/checkout/payment", body, ct)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "acceptTerms must be true, false or on")
	assert.Equal(t, []string{"acceptTerms"}, decode[struct{ Fields []string }](t, w).Fields)

	body, ct = paymentForm(t, "upi", "true", []byte("not an image at all"))
	w = c.multipart("/api/checkout/payment", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Empty(t, env.orders.Placed())
	assert.Zero(t, env.uploads.Len())
}

func TestCheckoutAcceptsCheckedBox(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/cart/items", `{"productId":"city-guide"}`).Code)
	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/checkout/info",
		`{"email":"traveller@example.com","firstName":"Ana","lastName":"Silva","country":"PT"}`).Code)

	body, ct := paymentForm(t, "paypal", "on", pixel(t))
	w := c.multipart("/api/checkout/payment", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, env.orders.Placed(), 1)
	assert.True(t, env.orders.Placed()[0].Payment.AcceptTerms)
}

func TestParseAcceptTerms(t *testing.T) {
	for raw, want := range map[string]bool{"": false, "on": true, "ON": true, "true": true, "1": true, "false": false} {
		got, err := parseAcceptTerms(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := parseAcceptTerms("yes")
	assert.Error(t, err)
}

func TestPublicContent(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	posts := decode[[]models.Post](t, c.json(http.MethodGet, "/api/posts?kind=adventure", ""))
	require.Len(t, posts, 1)
	assert.Equal(t, "annapurna", posts[0].Slug)

	posts = decode[[]models.Post](t, c.json(http.MethodGet, "/api/posts?category=europe", ""))
	require.Len(t, posts, 1)

	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodGet, "/api/posts?kind=video", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodGet, "/api/posts?limit=0", "").Code)

	post := decode[models.Post](t, c.json(http.MethodGet, "/api/posts/lisbon-on-foot", ""))
	assert.Contains(t, post.BodyHTML, "<h1")
	assert.NotContains(t, post.BodyHTML, "<script>")

	assert.Equal(t, http.StatusNotFound, c.json(http.MethodGet, "/api/posts/unfinished", "").Code)
	assert.Equal(t, http.StatusOK, env.client(t).asAdmin().json(http.MethodGet, "/api/posts/unfinished", "").Code)

	products := decode[[]models.Product](t, c.json(http.MethodGet, "/api/products", ""))
	assert.Len(t, products, 2)
	assert.Equal(t, http.StatusNotFound, c.json(http.MethodGet, "/api/products/retired", "").Code)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	assert.Equal(t, http.StatusUnauthorized, c.json(http.MethodGet, "/api/admin/orders", "").Code)

	w := c.json(http.MethodPost, "/api/admin/login", `{"email":"admin@roamly.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	w = c.json(http.MethodPost, "/api/admin/login", `{"email":"someone@roamly.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Contains(t, c.json(http.MethodGet, "/api/admin/session", "").Body.String(), `"authenticated":false`)

	w = c.json(http.MethodPost, "/api/admin/login", `{"email":"admin@roamly.test","password":"`+testAdminPassword+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, c.cookies, middleware.AdminCookie)

	assert.Contains(t, c.json(http.MethodGet, "/api/admin/session", "").Body.String(), `"authenticated":true`)
	assert.Equal(t, http.StatusOK, c.json(http.MethodGet, "/api/admin/orders", "").Code)

	require.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/admin/logout", "").Code)
	assert.NotContains(t, c.cookies, middleware.AdminCookie)
	assert.Equal(t, http.StatusUnauthorized, c.json(http.MethodGet, "/api/admin/orders", "").Code)
}

func TestAdminPosts(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).asAdmin()

	all := decode[[]models.Post](t, c.json(http.MethodGet, "/api/admin/posts", ""))
	assert.Len(t, all, 3)

	w := c.json(http.MethodPost, "/api/admin/posts", `{"kind":"blog","slug":"porto","title":"Porto","published":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Post](t, w)

	w = c.json(http.MethodPost, "/api/admin/posts", `{"kind":"blog","slug":"porto","title":"Porto again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.json(http.MethodPost, "/api/admin/posts", `{"kind":"vlog","slug":"x","title":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.json(http.MethodPut, "/api/admin/posts/"+created.ID, `{"kind":"blog","slug":"porto","title":"Porto by night"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Porto by night", decode[models.Post](t, w).Title)

	assert.Equal(t, http.StatusNoContent, c.json(http.MethodDelete, "/api/admin/posts/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, c.json(http.MethodDelete, "/api/admin/posts/"+created.ID, "").Code)
}

func TestAdminProductsAndGallery(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).asAdmin()

	assert.Len(t, decode[[]models.Product](t, c.json(http.MethodGet, "/api/admin/products", "")), 3)
	w := c.json(http.MethodPost, "/api/admin/products", `{"title":"Map","price":"-1","type":"map"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = c.json(http.MethodPost, "/api/admin/products", `{"title":"Map","price":"3.50","type":"map","active":true}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.json(http.MethodPost, "/api/admin/gallery", `{"url":"https://files.roamly.test/a.jpg","caption":"Sunrise"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	img := decode[models.GalleryImage](t, w)

	gallery := decode[[]models.GalleryImage](t, env.client(t).json(http.MethodGet, "/api/gallery", ""))
	require.Len(t, gallery, 1)
	assert.Equal(t, "Sunrise", gallery[0].Caption)

	assert.Equal(t, http.StatusNoContent, c.json(http.MethodDelete, "/api/admin/gallery/"+img.ID, "").Code)
}

func TestAdminUpload(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).asAdmin()

	upload := func(folder string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("folder", folder))
		fw, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return c.multipart("/api/admin/uploads", &buf, mw.FormDataContentType())
	}

	w := upload("gallery", pixel(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "https://files.roamly.test/gallery/")

	assert.Equal(t, http.StatusUnsupportedMediaType, upload("gallery", []byte("plain text")).Code)
	assert.Equal(t, http.StatusBadRequest, upload("../etc", pixel(t)).Code)
}

func TestAdminOrders(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).asAdmin()

	id, err := env.orders.PlaceOrder(context.Background(), checkout.Order{})
	require.NoError(t, err)

	orders := decode[[]models.Order](t, c.json(http.MethodGet, "/api/admin/orders?status=pending_review", ""))
	require.Len(t, orders, 1)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodGet, "/api/admin/orders?status=shipped", "").Code)

	w := c.json(http.MethodPatch, "/api/admin/orders/"+id, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderApproved, decode[models.Order](t, c.json(http.MethodGet, "/api/admin/orders/"+id, "")).Status)

	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodPatch, "/api/admin/orders/"+id, `{"status":"paid"}`).Code)
	assert.Equal(t, http.StatusNotFound, c.json(http.MethodPatch, "/api/admin/orders/ord_missing", `{"status":"rejected"}`).Code)
}

func TestTrackEvents(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	w := c.json(http.MethodPost, "/api/track", `[{"eventType":"click","pagePath":"#shop"}]`)
	require.Equal(t, http.StatusNoContent, w.Code)

	events := env.analytics.Events()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].EventID)
	assert.NotEmpty(t, events[0].SessionID)
	assert.False(t, events[0].Timestamp.IsZero())

	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodPost, "/api/track", `{"eventType":"click"}`).Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t).asAdmin()

	w := c.json(http.MethodGet, "/api/admin/stats/top-paths?limit=3", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"pagePath":"#shop","count":3}]`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodGet, "/api/admin/stats/top-paths?start=yesterday", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		c.json(http.MethodGet, "/api/admin/stats/top-paths?start=2025-02-01T00:00:00Z&end=2025-01-01T00:00:00Z", "").Code)
	assert.Equal(t, http.StatusBadRequest, c.json(http.MethodGet, "/api/admin/stats/event-counts", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.client(t).json(http.MethodGet, "/api/admin/stats/top-paths", "").Code)
}

func TestAnalyticsDisabled(t *testing.T) {
	env := newTestEnv(t, withoutAnalytics())
	c := env.client(t).asAdmin()

	assert.Equal(t, http.StatusNoContent, c.json(http.MethodPost, "/api/track", `[{"eventType":"click"}]`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, c.json(http.MethodGet, "/api/admin/stats/top-paths", "").Code)
	assert.Equal(t, http.StatusOK, c.json(http.MethodPost, "/api/navigate", `{"fragment":"#shop"}`).Code)
	assert.Empty(t, env.analytics.Events())
}
