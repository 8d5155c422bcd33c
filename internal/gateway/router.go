package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
)

// Router dispatches invocations to handlers, running each command's
// guards first. Whatever happens, the caller gets exactly one response.
type Router struct {
	mu     sync.RWMutex
	routes map[string]route
}

type route struct {
	handler Handler
	guards  []Guard
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]route)}
}

// Handle registers a handler with its guards. Guards run in order; the
// first denial wins.
func (r *Router) Handle(command string, h Handler, guards ...Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[command] = route{handler: h, guards: guards}
}

// Commands returns the registered command names.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for name := range r.routes {
		out = append(out, name)
	}
	return out
}

// Dispatch runs one invocation and always returns a terminal response.
func (r *Router) Dispatch(ctx context.Context, inv Invocation) Response {
	r.mu.RLock()
	rt, ok := r.routes[inv.Command]
	r.mu.RUnlock()
	if !ok {
		return Response{Content: "Unknown command.", Ephemeral: true}
	}

	for _, guard := range rt.guards {
		if verdict := guard(inv); !verdict.Allowed {
			logging.Gateway("denied /%s for %s: %s", inv.Command, inv.UserID, verdict.Reason)
			return Response{Content: verdict.Reason, Ephemeral: true}
		}
	}

	resp, err := rt.handler(ctx, inv)
	if err != nil {
		return Response{Content: userMessage(err), Ephemeral: true}
	}
	return resp
}

// userMessage maps handler errors onto user-visible replies. Economy
// sentinels are expected, recoverable conditions; anything else is
// reported generically and logged.
func userMessage(err error) string {
	switch {
	case errors.Is(err, economy.ErrUnknownItem):
		return "That item isn't in the catalog."
	case errors.Is(err, economy.ErrInsufficientFunds):
		return "You don't have enough oil for that."
	case errors.Is(err, economy.ErrNotOwned):
		return "You don't own that item."
	case errors.Is(err, economy.ErrInsufficientInventory):
		return "You don't have that many."
	case errors.Is(err, economy.ErrInvalidArgument):
		return "That's not a valid amount."
	default:
		logging.Get(logging.CategoryGateway).Error("handler error: %v", err)
		return "Something went wrong. Try again."
	}
}
