package brainstorm

// ──────────────────────────────────────────────
// Middleware — onion-model pipeline around event dispatch
// ──────────────────────────────────────────────
//
// Each middleware wraps the next layer. Call next() to proceed;
// skip it to intercept.
//
// Usage:
//
//	controller.Use(func(ctx *EventContext, next NextFunc) {
//	    log.Println("before")
//	    next()
//	    log.Println("after")
//	})

// NextFunc proceeds to the next middleware or the core handler.
type NextFunc func()

// MiddlewareFunc is the signature for all middleware functions.
type MiddlewareFunc func(ctx *EventContext, next NextFunc)

// EventContext is the shared context flowing through the pipeline.
type EventContext struct {
	// Event is the inbound chat event being processed.
	Event InboundEvent
	// Extra is an arbitrary map for middleware to attach/read data.
	Extra map[string]interface{}
	// Handled is set to true when the core handler has been reached.
	Handled bool
	// Err is the core handler's result, readable by outer layers after next().
	Err error
}

// EventPipeline builds and executes an onion-model call chain.
type EventPipeline struct {
	middlewares []MiddlewareFunc
}

// NewEventPipeline creates an empty pipeline.
func NewEventPipeline() *EventPipeline {
	return &EventPipeline{}
}

// Use appends a middleware to the pipeline.
func (p *EventPipeline) Use(mw MiddlewareFunc) {
	p.middlewares = append(p.middlewares, mw)
}

// Len returns the number of registered middlewares.
func (p *EventPipeline) Len() int {
	return len(p.middlewares)
}

// Execute runs the full pipeline ending with coreHandler.
//
// The pipeline builds an onion chain:
//
//	mw[0].before → mw[1].before → core → mw[1].after → mw[0].after
func (p *EventPipeline) Execute(ctx *EventContext, coreHandler func()) {
	if len(p.middlewares) == 0 {
		coreHandler()
		return
	}

	chain := coreHandler
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		mw := p.middlewares[i]
		next := chain
		chain = func() {
			mw(ctx, next)
		}
	}

	chain()
}
