package ports

import "context"

// Transport delivers outgoing messages to the cloud side.
type Transport interface {
	SendJSON(ctx context.Context, payload interface{}) error
}
