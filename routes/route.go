// Package routes maps URL fragments from the single-page front-end onto the
// fixed set of views the site can show, and gates the admin views.
package routes

import "strings"

// Kind names a view. The string value is the fragment the front-end uses.
type Kind string

const (
	Home       Kind = "home"
	Adventures Kind = "adventures"
	Gallery    Kind = "gallery"
	Shop       Kind = "shop"
	Post       Kind = "post"
	WorkWithUs Kind = "work-with-us"
	Reels      Kind = "reels"
	Blogs      Kind = "blogs"
	Checkout   Kind = "checkout"
	Terms      Kind = "terms"
	Privacy    Kind = "privacy"
	Disclaimer Kind = "disclaimer"
	Cookies    Kind = "cookies"

	Admin           Kind = "admin"
	AdminBlogs      Kind = "admin-blogs"
	AdminAdventures Kind = "admin-adventures"
	AdminGallery    Kind = "admin-gallery"
	AdminProducts   Kind = "admin-products"
	AdminOrders     Kind = "admin-orders"
	AdminReels      Kind = "admin-reels"
)

// AdminLoginView is rendered in place of any admin view when the visitor is not signed in.
const AdminLoginView = "admin-login"

// named lists every route reachable by its literal fragment. Post is reached by slug only.
var named = map[string]Kind{
	string(Home):            Home,
	string(Adventures):      Adventures,
	string(Gallery):         Gallery,
	string(Shop):            Shop,
	string(WorkWithUs):      WorkWithUs,
	string(Reels):           Reels,
	string(Blogs):           Blogs,
	string(Checkout):        Checkout,
	string(Terms):           Terms,
	string(Privacy):         Privacy,
	string(Disclaimer):      Disclaimer,
	string(Cookies):         Cookies,
	string(Admin):           Admin,
	string(AdminBlogs):      AdminBlogs,
	string(AdminAdventures): AdminAdventures,
	string(AdminGallery):    AdminGallery,
	string(AdminProducts):   AdminProducts,
	string(AdminOrders):     AdminOrders,
	string(AdminReels):      AdminReels,
}

// Route is the active view. Slug is only set for Post.
type Route struct {
	Kind Kind   `json:"kind"`
	Slug string `json:"slug,omitempty"`
}

// HomeRoute is the fallback for anything that does not resolve.
var HomeRoute = Route{Kind: Home}

// Fragment returns the URL fragment (without '#') that resolves back to r.
func (r Route) Fragment() string {
	if r.Kind == Post {
		return r.Slug
	}
	return string(r.Kind)
}

func (r Route) String() string {
	if r.Kind == Post {
		return string(Post) + "(" + r.Slug + ")"
	}
	return string(r.Kind)
}

// IsZero reports whether r was never set.
func (r Route) IsZero() bool {
	return r.Kind == ""
}

// IsAdmin reports whether r is one of the back-office views.
func IsAdmin(r Route) bool {
	return strings.HasPrefix(string(r.Kind), string(Admin))
}

// Known returns the route for a literal fragment name.
func Known(name string) (Route, bool) {
	k, ok := named[name]
	if !ok {
		return Route{}, false
	}
	return Route{Kind: k}, true
}

// ParseCurrent turns the fragment a client reports as its active view back into a Route.
// Home sections such as about map to home. Unknown names are taken as post
// slugs; the caller does not need them verified.
func ParseCurrent(fragment string) Route {
	name := normalize(fragment)
	if name == "" || alwaysAnchors[name] {
		return HomeRoute
	}
	if r, ok := Known(name); ok {
		return r
	}
	return Route{Kind: Post, Slug: name}
}
