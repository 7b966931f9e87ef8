package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds, per paho convention
)

// SampleHandler processes one raw payload from the bus.
type SampleHandler interface {
	OnSample(ctx context.Context, payload []byte) error
}

// Consumer subscribes to a single topic and feeds every message to the
// ingestion pipeline. Paho delivers messages in order by default, which
// keeps ingestion strictly serialized.
type Consumer struct {
	client paho.Client
	topic  string
	logger *log.Logger
}

// NewConsumer connects to the broker and returns a consumer ready to
// subscribe. The connection auto-reconnects; an unreachable broker at
// startup is a fatal configuration error for the caller.
func NewConsumer(brokerURL, clientID, topic string, logger *log.Logger) (*Consumer, error) {
	if brokerURL == "" || topic == "" {
		return nil, errors.New("mqtt consumer: broker URL and topic are required")
	}
	if logger == nil {
		logger = log.Default()
	}

	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(paho.Client) {
		logger.Printf("mqtt: connected to %s", brokerURL)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Printf("mqtt: connection lost: %v", err)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt consumer: connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt consumer: connect: %w", err)
	}

	return &Consumer{client: client, topic: topic, logger: logger}, nil
}

// Subscribe binds the handler to the topic. Handler errors are already
// logged by the pipeline; the subscription never terminates on them.
func (c *Consumer) Subscribe(ctx context.Context, handler SampleHandler) error {
	if handler == nil {
		return errors.New("mqtt consumer: nil handler")
	}

	token := c.client.Subscribe(c.topic, 0, func(_ paho.Client, msg paho.Message) {
		_ = handler.OnSample(ctx, msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt consumer: subscribe %s: %w", c.topic, err)
	}
	c.logger.Printf("mqtt: subscribed to %s", c.topic)
	return nil
}

// Close unsubscribes and disconnects from the broker.
func (c *Consumer) Close() {
	if token := c.client.Unsubscribe(c.topic); token != nil {
		token.Wait()
	}
	c.client.Disconnect(disconnectQuiesce)
}
