package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/metrics"
)

// Config holds broker and filtering settings.
type Config struct {
	Broker    string
	Port      int
	Location  string
	Username  string
	Password  string
	BaseTopic string
	LEDCount  int
}

// Listener subscribes to espresense sightings and feeds them to a store.
type Listener struct {
	cfg   Config
	store beacon.Updater
	stats *Stats
	now   func() time.Time
	log   logrus.FieldLogger

	client paho.Client
}

// NewListener builds a listener; nothing connects until Run.
func NewListener(cfg Config, store beacon.Updater, logger logrus.FieldLogger) *Listener {
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = DefaultBaseTopic
	}
	return &Listener{
		cfg:   cfg,
		store: store,
		stats: NewStats(nil),
		now:   time.Now,
		log:   logger.WithField("component", "mqtt"),
	}
}

// Topic is the subscription filter.
func (l *Listener) Topic() string {
	return l.cfg.BaseTopic + "/+/+"
}

// Stats returns the message counters.
func (l *Listener) Stats() *Stats {
	return l.stats
}

// Handle processes one message. Rejected messages are logged and counted,
// never forwarded.
func (l *Listener) Handle(topic string, body []byte) {
	obs, err := ParseMessage(topic, body, l.cfg.Location)
	if err != nil {
		metrics.IncTelemetryDropped(dropReason(err))
		switch {
		case errors.Is(err, ErrOtherLocation):
		case errors.Is(err, ErrMalformedTopic):
			l.log.WithError(err).Debug("ignoring message")
		default:
			l.log.WithError(err).WithField("topic", topic).Warn("dropping message")
		}
		return
	}

	var pos float64
	if obs.Position != nil {
		pos = WrapPosition(*obs.Position, l.cfg.LEDCount)
	} else {
		pos = beacon.IDToPosition(obs.ID, l.cfg.LEDCount)
	}

	l.store.Update(obs.ID, pos, obs.Signal, l.now())
	l.stats.Record(obs.ID)
	metrics.IncTelemetry("mqtt")
}

func (l *Listener) clientOptions() *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", l.cfg.Broker, l.cfg.Port))
	opts.SetClientID("ble2wled-" + uuid.NewString())
	if l.cfg.Username != "" && l.cfg.Password != "" {
		opts.SetUsername(l.cfg.Username)
		opts.SetPassword(l.cfg.Password)
	}
	opts.SetKeepAlive(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetMaxReconnectInterval(10 * time.Second)

	opts.SetOnConnectHandler(func(c paho.Client) {
		topic := l.Topic()
		token := c.Subscribe(topic, 0, func(_ paho.Client, m paho.Message) {
			l.Handle(m.Topic(), m.Payload())
		})
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			l.log.WithError(token.Error()).WithField("topic", topic).Error("subscribe failed")
			return
		}
		l.log.WithField("topic", topic).Info("connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		l.log.WithError(err).Warn("MQTT connection lost, reconnecting")
	})
	return opts
}

// Run connects and blocks until ctx is cancelled. The client keeps retrying
// in the background if the broker is unreachable.
func (l *Listener) Run(ctx context.Context) error {
	l.client = paho.NewClient(l.clientOptions())
	log := l.log.WithFields(logrus.Fields{
		"broker":   l.cfg.Broker,
		"port":     l.cfg.Port,
		"location": l.cfg.Location,
	})

	token := l.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
	case <-time.After(5 * time.Second):
		log.Warn("MQTT broker not reachable yet, retrying in background")
	case <-ctx.Done():
		l.client.Disconnect(250)
		return nil
	}
	log.Debug("MQTT listener started")

	<-ctx.Done()
	l.client.Disconnect(250)
	log.Debug("MQTT listener stopped")
	return nil
}
