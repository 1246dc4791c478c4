package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type sensorPayload struct {
	UID        string `json:"uid"`
	NSeq       int    `json:"nSeq"`
	RSSI       int    `json:"rssi"`
	BatteryPct int    `json:"battery_pct"`
	Dist       int    `json:"dist"`
	Timestamp  int64  `json:"timestamp"`
}

func main() {
	brokerAddr := flag.String("broker", "tcp://localhost:1883", "MQTT broker address, e.g. tcp://localhost:1883")
	topicRoot := flag.String("topic-root", "wastesense", "Telemetry topic root")
	gatewayID := flag.String("gateway-id", "sim-gateway-1", "Gateway identifier")
	sensorUID := flag.String("sensor-uid", "003D00454741501320313431", "Sensor identifier")
	interval := flag.Duration("interval", 5*time.Second, "Interval between published readings")
	baseDist := flag.Int("base-dist", 120, "Baseline sensor-to-waste distance in cm")
	distJitter := flag.Int("dist-jitter", 15, "Maximum random jitter applied to the distance")
	baseRSSI := flag.Int("base-rssi", -65, "Baseline RSSI value to simulate")
	rssiJitter := flag.Int("rssi-jitter", 8, "Maximum random jitter applied to RSSI readings")
	battery := flag.Int("battery", 87, "Reported battery percentage")

	flag.Parse()

	clientID := fmt.Sprintf("%s-simulator-%d", *sensorUID, time.Now().UnixNano())
	opts := mqtt.NewClientOptions().AddBroker(*brokerAddr).SetClientID(clientID)
	opts = opts.SetOrderMatters(false)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("failed to connect to broker: %v", token.Error())
	}
	log.Printf("connected to MQTT broker %s as %s", *brokerAddr, clientID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	nSeq := 0
	topic := fmt.Sprintf("%s/%s/data/%s", *topicRoot, *gatewayID, *sensorUID)

	publish := func() {
		nSeq++
		payload := sensorPayload{
			UID:        *sensorUID,
			NSeq:       nSeq,
			RSSI:       jittered(*baseRSSI, *rssiJitter),
			BatteryPct: *battery,
			Dist:       jittered(*baseDist, *distJitter),
			Timestamp:  time.Now().Unix(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("failed to encode payload: %v", err)
			return
		}

		token := client.Publish(topic, 0, false, data)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("publish error: %v", err)
			return
		}
		log.Printf("published %s nSeq=%d dist=%d rssi=%d", topic, payload.NSeq, payload.Dist, payload.RSSI)
	}

	publish()

	for {
		select {
		case <-ctx.Done():
			log.Print("received shutdown signal, disconnecting")
			client.Disconnect(250)
			return
		case <-ticker.C:
			publish()
		}
	}
}

func jittered(base, jitter int) int {
	if jitter <= 0 {
		return base
	}
	delta := rand.Intn(jitter*2+1) - jitter
	return base + delta
}
