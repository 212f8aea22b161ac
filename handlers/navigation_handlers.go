package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roamly/api/middleware"
	"roamly/api/routes"
)

type NavigationHandlers struct {
	Navigator *routes.Navigator
	Visitors  visitorSource
}

func NewNavigationHandlers(nav *routes.Navigator, visitors visitorSource) *NavigationHandlers {
	return &NavigationHandlers{Navigator: nav, Visitors: visitors}
}

type navigateRequest struct {
	Fragment string `json:"fragment"`
	// Current is the fragment of the view the client shows now. When empty the
	// visitor's last recorded route is used.
	Current string `json:"current"`
}

// Navigate resolves a fragment change and returns the view plus the side effects to apply.
func (h *NavigationHandlers) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	visitor := h.Visitors.Get(c.Request.Context(), middleware.VisitorID(c))
	current := visitor.Route().Active
	if req.Current != "" {
		current = routes.ParseCurrent(req.Current)
	}

	nav := h.Navigator.Navigate(c.Request.Context(), routes.Request{
		Fragment:  req.Fragment,
		Current:   current,
		Authed:    middleware.IsAdmin(c),
		VisitorID: visitor.ID,
		Referrer:  c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
	})
	visitor.ApplyNavigation(nav)

	c.JSON(http.StatusOK, nav)
}

type initRequest struct {
	Fragment string `json:"fragment"`
}

// Init sets the visitor's route from the fragment in the address bar at load
// time, so deep links open on their view.
func (h *NavigationHandlers) Init(c *gin.Context) {
	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	visitor := h.Visitors.Get(c.Request.Context(), middleware.VisitorID(c))
	state := h.Navigator.Initial(c.Request.Context(), req.Fragment)
	visitor.ResetRoute(state)
	h.writeState(c, state)
}

// State returns the visitor's active route.
func (h *NavigationHandlers) State(c *gin.Context) {
	visitor := h.Visitors.Get(c.Request.Context(), middleware.VisitorID(c))
	h.writeState(c, visitor.Route())
}

func (h *NavigationHandlers) writeState(c *gin.Context, state routes.State) {
	c.JSON(http.StatusOK, gin.H{
		"route":        state.Active,
		"view":         routes.Gate(state.Active, middleware.IsAdmin(c)),
		"selectedPost": state.SelectedPost,
	})
}
