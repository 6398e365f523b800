package kafka

import (
	"strings"
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "mes-production-group",
		ClientID:      "mes-production-service",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics contains all production Kafka topic names
var Topics = struct {
	JobsEvents      string
	StockEvents     string
	MaterialsEvents string
}{
	JobsEvents:      "mes.jobs.events",
	StockEvents:     "mes.stock.events",
	MaterialsEvents: "mes.materials.events",
}

// TopicForEventType routes an event type to its topic
func TopicForEventType(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "mes.stock"):
		return Topics.StockEvents
	case strings.HasPrefix(eventType, "mes.materials"):
		return Topics.MaterialsEvents
	default:
		return Topics.JobsEvents
	}
}
