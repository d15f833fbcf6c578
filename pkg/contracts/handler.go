package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// Handler mounts a group of routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Pinger is a backing store that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
