package mqtt

import (
	"context"
	"errors"
	"testing"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
	"smart-waste-service/internal/services"
)

type stubMessage struct {
	topic   string
	payload []byte
}

func (m stubMessage) Duplicate() bool   { return false }
func (m stubMessage) Qos() byte         { return 0 }
func (m stubMessage) Retained() bool    { return false }
func (m stubMessage) Topic() string     { return m.topic }
func (m stubMessage) MessageID() uint16 { return 0 }
func (m stubMessage) Payload() []byte   { return m.payload }
func (m stubMessage) Ack()              {}

type stubProcessor struct {
	messages []services.SensorMessage
	err      error
}

func (p *stubProcessor) ProcessSensorMessage(_ context.Context, msg services.SensorMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

type stubPublisher struct {
	gatewayEvents []ports.GatewayEvent
}

func (p *stubPublisher) PublishSensorEvent(_ context.Context, _ ports.SensorEvent) error { return nil }
func (p *stubPublisher) PublishAlert(_ context.Context, _ domain.Alert) error            { return nil }
func (p *stubPublisher) PublishGatewayEvent(_ context.Context, ev ports.GatewayEvent) error {
	p.gatewayEvents = append(p.gatewayEvents, ev)
	return nil
}

func newTestIngestor(processor Processor, publisher ports.EventPublisher) *Ingestor {
	return NewIngestor(Options{
		BrokerURL: "tcp://localhost:1883",
		ClientID:  "test",
		TopicRoot: "wastesense",
	}, processor, publisher)
}

func TestSignalLostQueuesOneWakeup(t *testing.T) {
	ingestor := newTestIngestor(&stubProcessor{}, &stubPublisher{})

	// Both the lost-connection handler and a failed subscribe use this path;
	// repeated signals must never block the caller.
	ingestor.signalLost()
	ingestor.signalLost()

	select {
	case <-ingestor.lostCh:
	default:
		t.Fatal("retry loop would never wake")
	}
	select {
	case <-ingestor.lostCh:
		t.Fatal("duplicate wakeup queued")
	default:
	}
}

func TestHandleMessageProcessesSensorData(t *testing.T) {
	processor := &stubProcessor{}
	ingestor := newTestIngestor(processor, &stubPublisher{})

	ingestor.handleMessage(nil, stubMessage{
		topic:   "wastesense/gw-1/data/uid-1",
		payload: []byte(`{"uid":"uid-1","nSeq":3,"rssi":-60,"battery_pct":90,"dist":80,"timestamp":1756450800}`),
	})

	if len(processor.messages) != 1 {
		t.Fatalf("processed messages = %d, want 1", len(processor.messages))
	}
	msg := processor.messages[0]
	if msg.GatewayID != "gw-1" || msg.SensorUID != "uid-1" || msg.Payload.DistanceCm != 80 {
		t.Fatalf("message wrong: %+v", msg)
	}

	snap := ingestor.Stats()
	if snap.Received != 1 || snap.Processed != 1 || snap.Failed != 0 {
		t.Fatalf("counters wrong: %+v", snap)
	}
	if snap.LastMessage == nil {
		t.Fatal("last message time not recorded")
	}
}

func TestHandleMessageDropsMalformedTopic(t *testing.T) {
	processor := &stubProcessor{}
	ingestor := newTestIngestor(processor, &stubPublisher{})

	ingestor.handleMessage(nil, stubMessage{topic: "other/gw-1/data/uid-1", payload: []byte(`{}`)})

	if len(processor.messages) != 0 {
		t.Fatal("malformed topic reached the processor")
	}
	snap := ingestor.Stats()
	if snap.Received != 1 || snap.DroppedTopics != 1 || snap.Processed != 0 {
		t.Fatalf("counters wrong: %+v", snap)
	}
}

func TestHandleMessageCountsRejectedPayload(t *testing.T) {
	processor := &stubProcessor{}
	ingestor := newTestIngestor(processor, &stubPublisher{})

	ingestor.handleMessage(nil, stubMessage{
		topic:   "wastesense/gw-1/data/uid-1",
		payload: []byte(`{"uid":"uid-1"}`),
	})

	if len(processor.messages) != 0 {
		t.Fatal("incomplete payload reached the processor")
	}
	snap := ingestor.Stats()
	if snap.Failed != 1 || snap.Processed != 0 {
		t.Fatalf("counters wrong: %+v", snap)
	}
}

func TestHandleMessageCountsProcessorFailure(t *testing.T) {
	processor := &stubProcessor{err: errors.New("db down")}
	ingestor := newTestIngestor(processor, &stubPublisher{})

	ingestor.handleMessage(nil, stubMessage{
		topic:   "wastesense/gw-1/data/uid-1",
		payload: []byte(`{"uid":"uid-1","nSeq":3,"rssi":-60,"battery_pct":90,"dist":80,"timestamp":1756450800}`),
	})

	snap := ingestor.Stats()
	if snap.Failed != 1 || snap.Processed != 0 {
		t.Fatalf("counters wrong: %+v", snap)
	}
}

func TestHandleMessageForwardsGatewayTraffic(t *testing.T) {
	publisher := &stubPublisher{}
	ingestor := newTestIngestor(&stubProcessor{}, publisher)

	ingestor.handleMessage(nil, stubMessage{
		topic:   "wastesense/gw-1/status/uptime",
		payload: []byte(`{"uptime_s": 4711}`),
	})

	if len(publisher.gatewayEvents) != 1 {
		t.Fatalf("gateway events = %d, want 1", len(publisher.gatewayEvents))
	}
	ev := publisher.gatewayEvents[0]
	if ev.GatewayID != "gw-1" || ev.Metric != "status/uptime" {
		t.Fatalf("gateway event wrong: %+v", ev)
	}
	data, ok := ev.Data.(map[string]any)
	if !ok {
		t.Fatalf("json payload not decoded: %T", ev.Data)
	}
	if data["uptime_s"] != float64(4711) {
		t.Fatalf("payload content wrong: %v", data)
	}
}

func TestHandleMessageForwardsOpaquePayloadAsRaw(t *testing.T) {
	publisher := &stubPublisher{}
	ingestor := newTestIngestor(&stubProcessor{}, publisher)

	ingestor.handleMessage(nil, stubMessage{
		topic:   "wastesense/gw-1/status",
		payload: []byte("ONLINE"),
	})

	ev := publisher.gatewayEvents[0]
	if ev.Raw != "ONLINE" {
		t.Fatalf("raw payload = %q, want ONLINE", ev.Raw)
	}
	if ev.Data != "ONLINE" {
		t.Fatalf("non-json payload not preserved as string: %v", ev.Data)
	}
}
