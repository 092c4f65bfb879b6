package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every domain HTTP handler. The application calls
// RegisterRoutes once at startup on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// HandlerFunc adapts a plain route registration function to Handler.
type HandlerFunc func(*httprouter.Router)

func (f HandlerFunc) RegisterRoutes(router *httprouter.Router) {
	f(router)
}
