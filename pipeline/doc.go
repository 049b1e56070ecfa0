// Package pipeline runs an ordered chain of request interceptors in front
// of a terminal handler, usually a *mux.Router.
//
// Handlers are composed once by New: the first handler is the outermost
// one, so requests enter handlers in slice order and responses leave in
// reverse order. A handler short-circuits by not calling next.
//
//	p, err := pipeline.New(pipeline.Config{
//		Handlers: []pipeline.Handler{
//			pipeline.Named("client-ip", muxhandlers.ClientIPMiddleware(muxhandlers.ClientIPConfig{})),
//			pipeline.Named("method-override", overrideMW),
//		},
//		Terminal: router,
//	})
//
// Every request gets a fresh Properties bag in its context, shared by all
// handlers of that request only.
package pipeline
