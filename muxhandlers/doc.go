// Package muxhandlers provides middleware for the strela request pipeline
// and the mux router. Every constructor returns a mux.MiddlewareFunc, which
// can be registered as a pipeline stage with pipeline.Named or on a router
// with Router.Use.
//
// # Method Override
//
// MethodOverrideMiddleware lets clients tunnel PUT, DELETE, HEAD, PATCH and
// VIEW through POST with the X-HTTP-Method-Override header. An override
// value outside the allowed set is answered with 400. It has to run before
// routing, so it belongs in the pipeline rather than on the router:
//
//	mo, err := muxhandlers.MethodOverrideMiddleware(muxhandlers.MethodOverrideConfig{})
//	if err != nil {
//	    return err
//	}
//	p, err := pipeline.New(pipeline.Config{
//	    Handlers: []pipeline.Handler{pipeline.Named("methodoverride", mo)},
//	    Terminal: router,
//	})
//
// # Client IP
//
// ClientIPMiddleware resolves the caller address from X-Forwarded-For, then
// the RFC 7239 Forwarded header, then the transport peer, and stores it in
// the request Properties under ClientIPKey. TrustedProxies restricts which
// peers may supply forwarding headers.
//
//	ip, ok := muxhandlers.ClientIPFromContext(r.Context())
//
// # Timing
//
// TimingMiddleware observes the time spent in the rest of the chain in the
// strela_handler_duration_seconds histogram, labelled by stage, method and
// status code, and writes a debug log entry. Stack two stages to separate
// total from dispatch time.
//
// # Remove Headers
//
// RemoveHeadersMiddleware deletes server fingerprinting headers after the
// chain returns. Headers already written by an inner handler have been sent
// and are not affected.
//
// # Other Handlers
//
// RecoveryMiddleware, RequestIDMiddleware, TimeoutMiddleware and
// APIKeyMiddleware cover panics, request correlation, execution deadlines
// and API key checks. JSONBodyMiddleware validates the Content-Type and
// size of JSON request bodies on a router.
package muxhandlers
