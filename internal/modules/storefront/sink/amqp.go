package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/messaging"
)

// ErrBrokerNotReady is returned while the messaging client is reconnecting.
var ErrBrokerNotReady = errors.New("messaging client not ready")

// ClientFunc resolves the application's messaging client for ctx.
type ClientFunc func(ctx context.Context) (messaging.AMQPClient, error)

// AMQPSink publishes submissions to a topic exchange, routed by telemetry event type.
// The connection belongs to the go-bricks messaging client.
type AMQPSink struct {
	exchange string
	client   ClientFunc
	logger   logger.Logger
}

func NewAMQPSink(client ClientFunc, exchange string, log logger.Logger) *AMQPSink {
	return &AMQPSink{exchange: exchange, client: client, logger: log}
}

// DeclareAMQP registers the telemetry exchange and its publisher with the application.
func DeclareAMQP(decls *messaging.Declarations, exchange string) {
	decls.DeclarePublisher(&messaging.PublisherOptions{
		Exchange:    exchange,
		RoutingKey:  "#",
		EventType:   "storefront.telemetry",
		Description: "Storefront telemetry submissions routed by XDM event type",
	}, &messaging.ExchangeDeclaration{
		Name:    exchange,
		Type:    amqp.ExchangeTopic,
		Durable: true,
	})
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Submit(ctx context.Context, sub domain.Submission) error {
	client, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve messaging client: %w", err)
	}
	// PublishToExchange drops silently when the client is not ready.
	if !client.IsReady() {
		return ErrBrokerNotReady
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	eventType := string(sub.XDM.EventType)
	opts := messaging.PublishOptions{
		Exchange:   s.exchange,
		RoutingKey: eventType,
		Headers: amqp.Table{
			"content_type": "application/json",
			"event_type":   eventType,
		},
	}
	if err := client.PublishToExchange(ctx, opts, body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}
