// Package gateway is the command surface of the manager bot: it maps
// Discord interactions onto the economy core and renders exactly one
// terminal response per invocation.
package gateway

import "context"

// Invocation is a validated, already-authenticated command call as
// delivered by the gateway. Handlers never see raw Discord types.
type Invocation struct {
	Command string
	UserID  string
	GuildID string

	// IsAdmin reflects the caller's administrator permission in the
	// guild, resolved by the gateway before dispatch.
	IsAdmin bool

	// Args holds option values keyed by option name: string options as
	// string, integer options as int64, user options as the user ID.
	Args map[string]any
}

// StringArg returns a string option, empty when absent.
func (inv Invocation) StringArg(name string) string {
	if v, ok := inv.Args[name].(string); ok {
		return v
	}
	return ""
}

// IntArg returns an integer option, def when absent.
func (inv Invocation) IntArg(name string, def int) int {
	if v, ok := inv.Args[name].(int64); ok {
		return int(v)
	}
	return def
}

// Response is the single terminal reply to an invocation.
type Response struct {
	Content string

	// Ephemeral responses are visible only to the caller. Anything that
	// echoes secrets or errors stays ephemeral.
	Ephemeral bool
}

// Handler executes one command.
type Handler func(ctx context.Context, inv Invocation) (Response, error)
