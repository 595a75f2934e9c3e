package services

import (
	"context"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	"github.com/Josh363/small-business-app/internal/domain/providers"
	"github.com/Josh363/small-business-app/internal/infrastructure/observability"
)

// publish sends event on the global business channel. A nil bus is a no-op
// and publish failures are only logged.
func publish(ctx context.Context, bus providers.EventBus, event *entities.BusinessEvent) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, providers.EventChannelBusinessUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("business_id", event.BusinessID).
			Str("type", string(event.EventType)).
			Msg("Failed to publish business event")
	}
}

// consume feeds events to handle until ctx is done or the subscription closes.
func consume(ctx context.Context, events <-chan *entities.BusinessEvent, handle func(*entities.BusinessEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event != nil {
				handle(event)
			}
		}
	}
}
