package ports

import (
	"context"

	"github.com/layer-3/webauth/core"
)

// EventPublisher notifies other parties about issued tokens
type EventPublisher interface {
	PublishAuthenticated(ctx context.Context, event core.AuthenticatedEvent) error
}
