package httpapi

import (
	"context"
	"net/http"
)

// serverBaseCtx is canceled on shutdown so in-flight engine calls stop too.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// generateContext derives the context for one /generate call: canceled when
// the client goes away, the server shuts down, or the generate timeout hits.
// The returned cancel func must always be called.
func generateContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	if generateTimeout <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, generateTimeout)
	return tctx, func() { tcancel(); cancel() }
}

// joinContexts returns a context that is canceled when either a or b is done.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(b)
	stop := context.AfterFunc(a, cancel)
	return ctx, func() { stop(); cancel() }
}
