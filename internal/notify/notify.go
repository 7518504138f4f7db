package notify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// Transport names accepted by New.
const (
	TransportRabbitMQ = "rabbitmq"
	TransportKafka    = "kafka"
	TransportLog      = "log"
)

// Config selects and configures a transport.
type Config struct {
	Transport    string
	RabbitURL    string
	Queue        string
	KafkaBrokers []string
	KafkaTopic   string
}

// Transport is a notifier that owns resources.
type Transport interface {
	service.Notifier
	Close() error
}

// New returns the transport named by cfg.Transport.  Empty means log.
func New(cfg Config, log zerolog.Logger) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Transport)) {
	case "", TransportLog:
		return NewLogNotifier(log), nil
	case TransportRabbitMQ:
		return NewRabbitMQPublisher(cfg.RabbitURL, cfg.Queue, log), nil
	case TransportKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("notify: kafka transport needs KAFKA_BROKERS")
		}
		return NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	}
	return nil, fmt.Errorf("notify: unknown transport %q", cfg.Transport)
}
