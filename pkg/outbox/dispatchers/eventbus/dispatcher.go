package eventbus

import (
	"context"

	"github.com/sgc-hq/sgc/pkg/eventbus"
	"github.com/sgc-hq/sgc/pkg/outbox"
)

type Dispatcher struct {
	bus eventbus.EventBusWithError
}

func New(bus eventbus.EventBusWithError) *Dispatcher {
	return &Dispatcher{
		bus: bus,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg outbox.DispatchedMessage) error {
	_ = ctx
	// PublishE surfaces subscriber errors and panics so the relay retries.
	// Subscriber signature: func(meta *outbox.Meta, topic string, payload json.RawMessage) error
	return d.bus.PublishE(&msg.Meta, msg.Meta.Topic, msg.Payload)
}
