package routes

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const recordTimeout = 2 * time.Second

// SlugLookup checks the content store for a post or adventure slug.
type SlugLookup interface {
	HasSlug(ctx context.Context, slug string) (bool, error)
}

// ViewRecorder receives one event per completed navigation.
type ViewRecorder interface {
	RecordView(ctx context.Context, v ViewEvent) error
}

// ViewEvent describes a navigation for analytics.
type ViewEvent struct {
	VisitorID string
	Path      string
	Referrer  string
	UserAgent string
	At        time.Time
}

// Request is a fragment change reported by the front-end.
type Request struct {
	Fragment  string
	Current   Route
	Authed    bool
	VisitorID string
	Referrer  string
	UserAgent string
}

// Navigation is the resolved route plus the side effects the front-end must apply.
type Navigation struct {
	Route        Route  `json:"route"`
	View         View   `json:"view"`
	Anchor       bool   `json:"anchor"`
	ScrollTop    bool   `json:"scrollTop"`
	SelectedPost string `json:"selectedPost,omitempty"`
}

// Navigator resolves fragment changes and owns their side effects.
type Navigator struct {
	slugs    SlugLookup
	recorder ViewRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewNavigator wires a navigator. slugs and recorder may be nil.
func NewNavigator(slugs SlugLookup, recorder ViewRecorder, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{slugs: slugs, recorder: recorder, logger: logger, now: time.Now}
}

// Navigate resolves req.Fragment, applies the admin gate and records the view.
func (n *Navigator) Navigate(ctx context.Context, req Request) Navigation {
	current := req.Current
	if current.IsZero() {
		current = HomeRoute
	}

	res := Resolve(req.Fragment, current, n.slugSet(ctx))
	nav := Navigation{
		Route:     res.Route,
		View:      Gate(res.Route, req.Authed),
		Anchor:    res.Anchor,
		ScrollTop: !res.Anchor,
	}
	if res.Route.Kind == Post {
		nav.SelectedPost = res.Route.Slug
	}

	n.record(ctx, req, nav)
	return nav
}

// Initial resolves the fragment present when the app loads. No view is recorded.
func (n *Navigator) Initial(ctx context.Context, fragment string) State {
	return NewState(fragment, n.slugSet(ctx))
}

func (n *Navigator) record(ctx context.Context, req Request, nav Navigation) {
	if n.recorder == nil || nav.Anchor {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	err := n.recorder.RecordView(ctx, ViewEvent{
		VisitorID: req.VisitorID,
		Path:      "#" + nav.Route.Fragment(),
		Referrer:  req.Referrer,
		UserAgent: req.UserAgent,
		At:        n.now().UTC(),
	})
	if err != nil {
		n.logger.Warn("record route view", zap.String("route", nav.Route.String()), zap.Error(err))
	}
}

func (n *Navigator) slugSet(ctx context.Context) SlugSet {
	if n.slugs == nil {
		return nil
	}
	return lookupSet{ctx: ctx, lookup: n.slugs, logger: n.logger}
}

// lookupSet adapts a context-aware lookup to SlugSet. Lookup failures count as "not a slug".
type lookupSet struct {
	ctx    context.Context
	lookup SlugLookup
	logger *zap.Logger
}

func (l lookupSet) HasSlug(slug string) bool {
	ok, err := l.lookup.HasSlug(l.ctx, slug)
	if err != nil {
		l.logger.Warn("slug lookup failed", zap.String("slug", slug), zap.Error(err))
		return false
	}
	return ok
}

// State is a visitor's active route and selected post.
type State struct {
	Active       Route  `json:"active"`
	SelectedPost string `json:"selectedPost,omitempty"`
}

// NewState resolves the fragment present at load time so deep links land on their view.
func NewState(fragment string, slugs SlugSet) State {
	var s State
	res := Resolve(fragment, HomeRoute, slugs)
	s.Apply(Navigation{Route: res.Route, SelectedPost: res.Route.Slug})
	return s
}

// Apply makes nav the active route.
func (s *State) Apply(nav Navigation) {
	s.Active = nav.Route
	if nav.Route.Kind == Post {
		s.SelectedPost = nav.SelectedPost
	}
}
