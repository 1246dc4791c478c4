package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"smart-waste-service/internal/ports"
	"smart-waste-service/internal/services"
)

// Connection states of the ingestion pipeline.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// Processor handles one validated sensor message.
type Processor interface {
	ProcessSensorMessage(ctx context.Context, msg services.SensorMessage) error
}

type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	TopicRoot string
	// Fixed delay between reconnect attempts. Connection loss is never fatal.
	Backoff time.Duration
}

// Stats owns the pipeline's observable counters. Reads go through Snapshot;
// nothing outside the ingestor mutates them.
type Stats struct {
	received  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
	lastMsg   atomic.Int64 // unix seconds, 0 = never
	connected atomic.Int64 // unix seconds, 0 = not connected
	state     atomic.Value // string
}

type StatsSnapshot struct {
	State          string     `json:"state"`
	Received       int64      `json:"messages_received"`
	Processed      int64      `json:"messages_processed"`
	Failed         int64      `json:"messages_failed"`
	DroppedTopics  int64      `json:"topics_dropped"`
	LastMessage    *time.Time `json:"last_message_time"`
	ConnectedSince *time.Time `json:"connected_since"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		State:         StateDisconnected,
		Received:      s.received.Load(),
		Processed:     s.processed.Load(),
		Failed:        s.failed.Load(),
		DroppedTopics: s.dropped.Load(),
	}
	if v, ok := s.state.Load().(string); ok {
		snap.State = v
	}
	if ts := s.lastMsg.Load(); ts > 0 {
		t := time.Unix(ts, 0).UTC()
		snap.LastMessage = &t
	}
	if ts := s.connected.Load(); ts > 0 {
		t := time.Unix(ts, 0).UTC()
		snap.ConnectedSince = &t
	}
	return snap
}

func (s *Stats) setState(state string) {
	s.state.Store(state)
	if state == StateConnected {
		s.connected.Store(time.Now().Unix())
	} else {
		s.connected.Store(0)
	}
}

// Ingestor maintains the broker connection and runs the pipeline steps for
// every inbound message. Messages are handled sequentially in delivery order
// on the client's callback goroutine; there is no parallel processing of
// in-flight messages.
type Ingestor struct {
	opts      Options
	processor Processor
	events    ports.EventPublisher
	stats     Stats

	lostCh chan struct{}
}

func NewIngestor(opts Options, processor Processor, events ports.EventPublisher) *Ingestor {
	if opts.Backoff <= 0 {
		opts.Backoff = 3 * time.Second
	}
	i := &Ingestor{
		opts:      opts,
		processor: processor,
		events:    events,
		lostCh:    make(chan struct{}, 1),
	}
	i.stats.setState(StateDisconnected)
	return i
}

// Stats returns a read-only snapshot for diagnostics.
func (i *Ingestor) Stats() StatsSnapshot {
	return i.stats.Snapshot()
}

// Run drives the connection state machine until the context is cancelled:
// Disconnected -> Connecting -> Connected, back to Disconnected on loss, with
// a fixed backoff between attempts, forever. On cancellation the connection
// is closed after letting the in-flight callback finish.
func (i *Ingestor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		i.stats.setState(StateConnecting)
		log.Printf("mqtt: connecting broker=%s", i.opts.BrokerURL)

		client, err := i.connect()
		if err != nil {
			i.stats.setState(StateDisconnected)
			log.Printf("mqtt: connect failed (retrying in %s): %v", i.opts.Backoff, err)
			if !sleepCtx(ctx, i.opts.Backoff) {
				return
			}
			continue
		}

		i.stats.setState(StateConnected)

		select {
		case <-ctx.Done():
			// The quiesce window lets the current message callback complete.
			client.Disconnect(500)
			i.stats.setState(StateDisconnected)
			log.Printf("mqtt: stopped")
			return
		case <-i.lostCh:
			i.stats.setState(StateDisconnected)
			if !sleepCtx(ctx, i.opts.Backoff) {
				return
			}
		}
	}
}

// signalLost wakes the Run loop so it re-enters the backoff and retry path.
// Non-blocking; a pending signal is enough.
func (i *Ingestor) signalLost() {
	select {
	case i.lostCh <- struct{}{}:
	default:
	}
}

func (i *Ingestor) connect() (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(i.opts.BrokerURL).
		SetClientID(i.opts.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetKeepAlive(60 * time.Second)

	if i.opts.Username != "" {
		opts = opts.SetUsername(i.opts.Username).SetPassword(i.opts.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Printf("mqtt: connection lost: %v", err)
		i.signalLost()
	})

	filter := i.opts.TopicRoot + "/#"
	opts.SetOnConnectHandler(func(c paho.Client) {
		if token := c.Subscribe(filter, 0, i.handleMessage); token.Wait() && token.Error() != nil {
			log.Printf("mqtt: subscribe %s failed: %v", filter, token.Error())
			// A client-initiated disconnect fires no lost callback, so the
			// retry loop must be woken explicitly.
			c.Disconnect(0)
			i.signalLost()
			return
		}
		log.Printf("mqtt: connected, subscribed filter=%s", filter)
	})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", i.opts.BrokerURL, token.Error())
	}
	return client, nil
}

// handleMessage applies the pipeline steps to one inbound publish. Errors
// here are local: malformed topics and payloads are counted and dropped, a
// failed message rolls back only its own writes, and the loop moves on.
func (i *Ingestor) handleMessage(_ paho.Client, m paho.Message) {
	i.stats.received.Add(1)
	ctx := context.Background()

	parsed, err := ParseTopic(i.opts.TopicRoot, m.Topic())
	if err != nil {
		i.stats.dropped.Add(1)
		log.Printf("mqtt: dropped message: %v", err)
		return
	}

	if !parsed.IsSensor {
		i.forwardOpaque(ctx, parsed, m.Payload())
		return
	}

	payload, err := decodeSensorPayload(m.Payload())
	if err != nil {
		i.stats.failed.Add(1)
		log.Printf("mqtt: rejected message topic=%s: %v", m.Topic(), err)
		return
	}

	msg := services.SensorMessage{
		GatewayID: parsed.GatewayID,
		SensorUID: parsed.SensorUID,
		Payload:   payload,
	}
	if err := i.processor.ProcessSensorMessage(ctx, msg); err != nil {
		i.stats.failed.Add(1)
		log.Printf("mqtt: processing failed topic=%s: %v", m.Topic(), err)
		return
	}

	i.stats.processed.Add(1)
	i.stats.lastMsg.Store(time.Now().Unix())
}

// forwardOpaque relays non-sensor traffic under the root to subscribers.
// Payloads that fail structured decode keep the raw string; they are never
// silently discarded.
func (i *Ingestor) forwardOpaque(ctx context.Context, parsed ParsedTopic, payload []byte) {
	raw := string(payload)
	ev := ports.GatewayEvent{
		Topic:      parsed.Root + "/" + parsed.GatewayID,
		GatewayID:  parsed.GatewayID,
		Metric:     parsed.Metric,
		Raw:        raw,
		ReceivedAt: time.Now().Unix(),
	}
	if parsed.Metric != "" {
		ev.Topic += "/" + parsed.Metric
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err == nil {
		ev.Data = decoded
	} else {
		ev.Data = raw
	}

	if err := i.events.PublishGatewayEvent(ctx, ev); err != nil {
		log.Printf("mqtt: forward gateway event failed topic=%s: %v", ev.Topic, err)
		return
	}
	i.stats.processed.Add(1)
	i.stats.lastMsg.Store(time.Now().Unix())
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
