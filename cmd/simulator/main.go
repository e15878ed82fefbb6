package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/sensorgrid/telemetry/internal/config"
	"github.com/sensorgrid/telemetry/internal/domain"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	run := time.Now().UnixNano()
	for i := 0; i < 100; i++ {
		r := domain.TelemetryReading{
			TenantID:   "acme",
			DeviceID:   "dev-123",
			Type:       "water_level",
			Value:      1.2 + rand.Float64(),
			Unit:       "m",
			Battery:    rand.Intn(101),
			Signal:     -40 - rand.Intn(60),
			RecordedAt: time.Now().UTC(),
			ExternalID: fmt.Sprintf("sim-%d-%d", run, i),
		}
		payload, _ := json.Marshal(r)
		token := client.Publish(config.MQTTTopic(), 0, false, payload)
		token.Wait()
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
