package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

func TestNewPublisherDefaultsToGoChannel(t *testing.T) {
	pub, err := NewPublisher(WatermillConfig{})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()
	if pub == nil {
		t.Fatalf("expected publisher")
	}
}

func TestNewPublisherUnsupportedDriver(t *testing.T) {
	if _, err := NewPublisher(WatermillConfig{Driver: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestNewPublisherMissingSettings(t *testing.T) {
	if _, err := NewPublisher(WatermillConfig{Driver: "amqp"}); err == nil {
		t.Fatalf("amqp without url must fail")
	}
	if _, err := NewPublisher(WatermillConfig{Driver: "kafka"}); err == nil {
		t.Fatalf("kafka without brokers must fail")
	}
	if _, err := NewPublisher(WatermillConfig{Driver: "nats"}); err == nil {
		t.Fatalf("nats without cluster and client ids must fail")
	}
}

type stubDriverPublisher struct {
	published []*message.Message
	closed    bool
}

func (s *stubDriverPublisher) Publish(topic string, messages ...*message.Message) error {
	s.published = append(s.published, messages...)
	return nil
}

func (s *stubDriverPublisher) Close() error {
	s.closed = true
	return nil
}

func TestRegisterPublisherDriver(t *testing.T) {
	stub := &stubDriverPublisher{}
	RegisterPublisherDriver("stub", func(cfg WatermillConfig, logger watermill.LoggerAdapter) (message.Publisher, func() error, error) {
		return stub, nil, nil
	})

	pub, err := NewPublisher(WatermillConfig{Driver: "STUB"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := pub.Publish(context.Background(), "topic", Event{Name: "X"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(stub.published) != 1 {
		t.Fatalf("expected one message, got %d", len(stub.published))
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !stub.closed {
		t.Fatalf("close must reach the driver")
	}
}

func TestPublishWireFormat(t *testing.T) {
	logger := watermill.NopLogger{}
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	defer pubsub.Close()

	messages, err := pubsub.Subscribe(context.Background(), "payments")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := &watermillPublisher{publisher: pubsub, closeFn: nil}
	raw := []byte(`{"event_type":"PAYMENT.SALE.COMPLETED","resource":{"amount":{"total":"50.00"}}}`)
	err = pub.Publish(context.Background(), "payments", Event{
		Provider:   "paypal",
		Name:       "PAYMENT.SALE.COMPLETED",
		RequestID:  "req-1",
		RecordID:   "I-BA456",
		DataType:   "payment",
		RawPayload: raw,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if msg.Metadata.Get("provider") != "paypal" || msg.Metadata.Get("event") != "PAYMENT.SALE.COMPLETED" {
			t.Fatalf("unexpected metadata %v", msg.Metadata)
		}
		var wire eventMessage
		if err := json.Unmarshal(msg.Payload, &wire); err != nil {
			t.Fatalf("decode wire payload: %v", err)
		}
		if wire.RecordID != "I-BA456" || wire.DataType != "payment" || wire.RequestID != "req-1" {
			t.Fatalf("unexpected wire envelope %+v", wire)
		}
		if string(wire.Payload) != string(raw) {
			t.Fatalf("payload must carry the raw body, got %s", wire.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for published message")
	}
}

func TestPublishEmptyPayloadBecomesEmptyObject(t *testing.T) {
	logger := watermill.NopLogger{}
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	defer pubsub.Close()

	messages, err := pubsub.Subscribe(context.Background(), "topic")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := &watermillPublisher{publisher: pubsub}
	if err := pub.Publish(context.Background(), "topic", Event{Name: "X"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		var wire eventMessage
		if err := json.Unmarshal(msg.Payload, &wire); err != nil {
			t.Fatalf("decode wire payload: %v", err)
		}
		if string(wire.Payload) != "{}" {
			t.Fatalf("empty payload must serialize as {}, got %s", wire.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for published message")
	}
}
