package mqtt

import (
	"context"
	"encoding/json"
	"errors"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/sensorgrid/telemetry/internal/domain"
	"github.com/sensorgrid/telemetry/internal/service"
)

// Consumer feeds readings published by devices into the ingestion engine.
// Rejected payloads are logged and dropped; brokers redeliver at least once,
// so duplicates here are routine, not faults.
type Consumer struct {
	svcs  *service.Services
	topic string
}

func NewConsumer(svcs *service.Services, topic string) *Consumer {
	return &Consumer{svcs: svcs, topic: topic}
}

func (cs *Consumer) Subscribe(client mqtt.Client) error {
	token := client.Subscribe(cs.topic, 0, cs.handle)
	token.Wait()
	return token.Error()
}

func (cs *Consumer) handle(_ mqtt.Client, msg mqtt.Message) {
	var rd domain.TelemetryReading
	if err := json.Unmarshal(msg.Payload(), &rd); err != nil {
		log.Error().Err(err).Str("topic", msg.Topic()).Msg("undecodable telemetry payload")
		return
	}

	if _, err := cs.svcs.Telemetry.Ingest(context.Background(), &rd); err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			log.Debug().Str("tenant_id", rd.TenantID).Str("external_id", rd.ExternalID).
				Msg("redelivered reading ignored")
		}
		// validation and storage failures already logged by the engine
		return
	}
}
