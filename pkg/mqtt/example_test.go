package mqtt_test

import (
	"context"
	"fmt"
	"time"

	"github.com/autopeer-io/vfleet/pkg/log"
	"github.com/autopeer-io/vfleet/pkg/mqtt"
)

// ExampleClient shows how a vehicle session connects, listens for route
// assignments and publishes a status update.
func ExampleClient() {
	cfg := &mqtt.ClientConfig{
		BrokerURL:       "tcp://localhost:1883",
		ClientID:        mqtt.GenerateClientID("vfleet-car-5"),
		ProtocolVersion: mqtt.ProtocolV311,
		KeepAlive:       60,
		ConnectTimeout:  5 * time.Second,
		CleanStart:      true,
	}

	client, err := mqtt.NewClient(cfg)
	if err != nil {
		log.Error(err, "Failed to create MQTT client")
		return
	}

	// Start returns at once; the connection is established in the background.
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		log.Error(err, "Failed to start MQTT client")
		return
	}
	defer client.Disconnect(ctx)

	if err := client.AwaitConnection(ctx); err != nil {
		log.Error(err, "Connection timed out")
		return
	}

	// Handlers run on their own goroutine.
	onRoute := func(ctx context.Context, topic string, payload []byte) {
		fmt.Printf("route assignment on %s: %s\n", topic, payload)
	}
	if err := client.Subscribe(ctx, "PTIN2023/CAR/STARTROUTE", 1, onRoute); err != nil {
		log.Error(err, "Failed to subscribe")
	}

	status := []byte(`{"id_car": 5, "status_num": 5, "status": "waits"}`)
	if err := client.Publish(ctx, "PTIN2023/CAR/UPDATESTATUS", 0, false, status); err != nil {
		log.Error(err, "Failed to publish status")
	}
}
