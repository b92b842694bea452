package middleware

import "net/http"

// System manages an ordered stack of HTTP middleware. Middleware added first
// wraps outermost and sees the request before anything added after it.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	wrappers []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.wrappers = append(s.wrappers, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.wrappers) - 1; i >= 0; i-- {
		handler = s.wrappers[i](handler)
	}
	return handler
}
