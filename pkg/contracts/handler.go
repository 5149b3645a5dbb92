package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every domain handler so the application can
// register routes without knowing about individual domains.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
