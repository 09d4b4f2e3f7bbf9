package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	wmamqp "github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	wmkafka "github.com/ThreeDotsLabs/watermill-kafka/pkg/kafka"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	stan "github.com/nats-io/stan.go"
)

// Publisher defines the interface for publishing normalized events.
type Publisher interface {
	// Publish sends an event to a specific topic.
	Publish(ctx context.Context, topic string, event Event) error
	// Close gracefully closes the publisher and its underlying connections.
	Close() error
}

// PublisherFactory builds a custom Watermill publisher for a driver name.
// The returned func is invoked on Close; it may be nil.
type PublisherFactory func(cfg WatermillConfig, logger watermill.LoggerAdapter) (message.Publisher, func() error, error)

var publisherFactories = map[string]PublisherFactory{}

// RegisterPublisherDriver registers a new publisher driver.
func RegisterPublisherDriver(name string, factory PublisherFactory) {
	if name == "" || factory == nil {
		return
	}
	publisherFactories[strings.ToLower(name)] = factory
}

// NewPublisher creates a publisher for the configured driver. Supported
// drivers are gochannel, amqp, kafka, and nats, plus any driver added via
// RegisterPublisherDriver.
func NewPublisher(cfg WatermillConfig) (Publisher, error) {
	logger := watermill.NewStdLogger(false, false)

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "gochannel"
	}

	switch driver {
	case "gochannel":
		pubsub := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.GoChannel.OutputChannelBuffer,
			Persistent:                     cfg.GoChannel.Persistent,
			BlockPublishUntilSubscriberAck: cfg.GoChannel.BlockPublishUntilSubscriberAck,
		}, logger)
		return &watermillPublisher{publisher: pubsub, closeFn: pubsub.Close}, nil
	case "amqp":
		if cfg.AMQP.URL == "" {
			return nil, errors.New("amqp url is required")
		}
		amqpCfg, err := amqpPublisherConfig(cfg.AMQP.URL, cfg.AMQP.Mode)
		if err != nil {
			return nil, err
		}
		pub, err := wmamqp.NewPublisher(amqpCfg, logger)
		if err != nil {
			return nil, err
		}
		return &watermillPublisher{publisher: pub, closeFn: pub.Close}, nil
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, errors.New("kafka brokers are required")
		}
		pub, err := wmkafka.NewPublisher(cfg.Kafka.Brokers, wmkafka.DefaultMarshaler{}, nil, logger)
		if err != nil {
			return nil, err
		}
		return &watermillPublisher{publisher: pub, closeFn: pub.Close}, nil
	case "nats":
		if cfg.NATS.ClusterID == "" || cfg.NATS.ClientID == "" {
			return nil, errors.New("nats cluster_id and client_id are required")
		}
		natsCfg := wmnats.StreamingPublisherConfig{
			ClusterID: cfg.NATS.ClusterID,
			ClientID:  cfg.NATS.ClientID,
			Marshaler: wmnats.GobMarshaler{},
		}
		if cfg.NATS.URL != "" {
			natsCfg.StanOptions = append(natsCfg.StanOptions, stan.NatsURL(cfg.NATS.URL))
		}
		pub, err := wmnats.NewStreamingPublisher(natsCfg, logger)
		if err != nil {
			return nil, err
		}
		return &watermillPublisher{publisher: pub, closeFn: pub.Close}, nil
	default:
		factory, ok := publisherFactories[driver]
		if !ok {
			return nil, fmt.Errorf("unsupported watermill driver: %s", driver)
		}
		pub, closeFn, err := factory(cfg, logger)
		if err != nil {
			return nil, err
		}
		if closeFn == nil {
			closeFn = pub.Close
		}
		return &watermillPublisher{publisher: pub, closeFn: closeFn}, nil
	}
}

func amqpPublisherConfig(url, mode string) (wmamqp.Config, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "queue", "durable_queue":
		return wmamqp.NewDurableQueueConfig(url), nil
	case "pubsub", "fanout":
		return wmamqp.NewDurablePubSubConfig(url, wmamqp.GenerateQueueNameTopicNameWithSuffix("payhook")), nil
	default:
		return wmamqp.Config{}, fmt.Errorf("unsupported amqp mode: %s", mode)
	}
}

type watermillPublisher struct {
	publisher message.Publisher
	closeFn   func() error
}

// eventMessage is the wire format consumers receive.
type eventMessage struct {
	Provider  string          `json:"provider"`
	Name      string          `json:"name"`
	RequestID string          `json:"request_id"`
	RecordID  string          `json:"record_id"`
	DataType  string          `json:"data_type"`
	Payload   json.RawMessage `json:"payload"`
}

func (p *watermillPublisher) Publish(ctx context.Context, topic string, event Event) error {
	payload := event.RawPayload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	body, err := json.Marshal(eventMessage{
		Provider:  event.Provider,
		Name:      event.Name,
		RequestID: event.RequestID,
		RecordID:  event.RecordID,
		DataType:  event.DataType,
		Payload:   json.RawMessage(payload),
	})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set("provider", event.Provider)
	msg.Metadata.Set("event", event.Name)
	msg.Metadata.Set("request_id", event.RequestID)
	return p.publisher.Publish(topic, msg)
}

func (p *watermillPublisher) Close() error {
	if p.closeFn == nil {
		return nil
	}
	return p.closeFn()
}
