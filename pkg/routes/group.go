package routes

import "net/http"

// Group organizes routes under a common prefix. Child groups inherit and
// extend the parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in the given groups to the mux, joining method,
// accumulated prefix, and pattern into a ServeMux pattern.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		register(mux, "", group)
	}
}

func register(mux *http.ServeMux, parent string, group Group) {
	prefix := parent + group.Prefix

	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		register(mux, prefix, child)
	}
}
