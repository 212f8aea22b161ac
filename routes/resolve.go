package routes

import (
	"strings"
)

// SlugSet answers whether a fragment names a loaded blog post or adventure.
type SlugSet interface {
	HasSlug(slug string) bool
}

// Slugs is an in-memory SlugSet.
type Slugs map[string]struct{}

// NewSlugs builds a Slugs set from a list.
func NewSlugs(slugs ...string) Slugs {
	s := make(Slugs, len(slugs))
	for _, slug := range slugs {
		if slug = strings.TrimSpace(slug); slug != "" {
			s[slug] = struct{}{}
		}
	}
	return s
}

func (s Slugs) HasSlug(slug string) bool {
	_, ok := s[slug]
	return ok
}

// Resolution is the outcome of resolving a fragment.
// Anchor is set when the fragment is an in-page section of home; the browser
// scrolls to it natively so the viewport must not be reset.
type Resolution struct {
	Route  Route `json:"route"`
	Anchor bool  `json:"anchor"`
}

// alwaysAnchors are home sections with no view of their own.
var alwaysAnchors = map[string]bool{
	"about": true,
	"map":   true,
}

// homeAnchors are sections on home that double as full views elsewhere.
var homeAnchors = map[Kind]bool{
	Adventures: true,
	Shop:       true,
}

// Resolve maps a URL fragment to a route. current is the route active before
// the change and decides whether #adventures / #shop are anchors. It never
// fails: anything unrecognised lands on home.
func Resolve(fragment string, current Route, slugs SlugSet) Resolution {
	name := normalize(fragment)
	if name == "" || name == string(Home) {
		return Resolution{Route: HomeRoute}
	}
	if alwaysAnchors[name] {
		return Resolution{Route: HomeRoute, Anchor: true}
	}
	if r, ok := Known(name); ok {
		if homeAnchors[r.Kind] && current.Kind == Home {
			return Resolution{Route: HomeRoute, Anchor: true}
		}
		return Resolution{Route: r}
	}
	if slugs != nil && slugs.HasSlug(name) {
		return Resolution{Route: Route{Kind: Post, Slug: name}}
	}
	return Resolution{Route: HomeRoute}
}

func normalize(fragment string) string {
	name := strings.TrimSpace(fragment)
	name = strings.TrimPrefix(name, "#")
	name = strings.TrimPrefix(name, "/")
	return strings.TrimSpace(name)
}
