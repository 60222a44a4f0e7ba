package tui

import (
	"context"
	"sync"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
)

// Router is the client-side navigator of the terminal client.
// The login form navigates through it from its submission goroutine.
type Router struct {
	mu      sync.Mutex
	current string
}

// NewRouter starts at the login route.
func NewRouter() *Router {
	return &Router{current: RouteLogin}
}

const RouteLogin = "/login"

// Navigate implements loginform.Navigator.
func (r *Router) Navigate(_ context.Context, target string) error {
	r.mu.Lock()
	r.current = target
	r.mu.Unlock()
	return nil
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

var _ loginform.Navigator = (*Router)(nil)
