package routes

// View is what the front-end renders for a route. It differs from the
// route only when the admin gate substitutes the login form.
type View struct {
	Name  string `json:"name"`
	Route Route  `json:"route"`
}

// Gate decides the view for r. Admin routes without an authenticated session
// render the login view, but the requested route is carried through unchanged
// so the same fragment shows the real view after signing in.
func Gate(r Route, authed bool) View {
	if IsAdmin(r) && !authed {
		return View{Name: AdminLoginView, Route: r}
	}
	return View{Name: string(r.Kind), Route: r}
}
