// Package mqtt ingests espresense beacon reports from an MQTT broker.
//
// espresense publishes one message per beacon sighting to
// espresense/devices/{beacon_id}/{location} with a JSON body carrying at
// least "id" and "rssi".
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultBaseTopic is where espresense publishes device sightings.
const DefaultBaseTopic = "espresense/devices"

// Reasons a message is rejected before it reaches the store.
var (
	ErrMalformedTopic = errors.New("malformed topic")
	ErrOtherLocation  = errors.New("message for another location")
	ErrMissingField   = errors.New("missing id or rssi")
	ErrIDMismatch     = errors.New("topic and payload beacon id differ")
	ErrBadPayload     = errors.New("bad payload")
)

// Observation is one validated beacon sighting.
type Observation struct {
	ID     string
	Signal int
	// Position is set when the payload carries one.
	Position *float64
}

type payload struct {
	ID       *string  `json:"id"`
	RSSI     *float64 `json:"rssi"`
	Position *float64 `json:"position"`
}

// ParseMessage validates a message received on topic for the given location.
func ParseMessage(topic string, body []byte, location string) (Observation, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 {
		return Observation{}, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
	topicID, topicLocation := parts[len(parts)-2], parts[len(parts)-1]
	if topicID == "" {
		return Observation{}, fmt.Errorf("%w: empty beacon id in %q", ErrMalformedTopic, topic)
	}
	if topicLocation != location {
		return Observation{}, ErrOtherLocation
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Observation{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.ID == nil || *p.ID == "" || p.RSSI == nil {
		return Observation{}, fmt.Errorf("%w: from %s", ErrMissingField, topicID)
	}
	if *p.ID != topicID {
		return Observation{}, fmt.Errorf("%w: topic %s, payload %s", ErrIDMismatch, topicID, *p.ID)
	}

	rssi := *p.RSSI
	if math.IsNaN(rssi) || rssi < -127 || rssi > 20 {
		return Observation{}, fmt.Errorf("%w: rssi %v out of range", ErrBadPayload, rssi)
	}
	if p.Position != nil && (math.IsNaN(*p.Position) || math.IsInf(*p.Position, 0)) {
		return Observation{}, fmt.Errorf("%w: position %v", ErrBadPayload, *p.Position)
	}

	return Observation{
		ID:       topicID,
		Signal:   int(rssi), // truncates toward zero
		Position: p.Position,
	}, nil
}

// WrapPosition maps any finite coordinate into [0, ledCount).
func WrapPosition(pos float64, ledCount int) float64 {
	n := float64(ledCount)
	p := math.Mod(pos, n)
	if p < 0 {
		p += n
	}
	if p >= n {
		p = 0
	}
	return p
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedTopic):
		return "malformed_topic"
	case errors.Is(err, ErrOtherLocation):
		return "other_location"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrIDMismatch):
		return "id_mismatch"
	default:
		return "bad_payload"
	}
}
