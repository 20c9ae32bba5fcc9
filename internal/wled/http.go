package wled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ble2wled.klederson.com/internal/led"
)

// HTTP sink defaults.
const (
	DefaultHTTPTimeout = time.Second
	DefaultMaxRetries  = 3
	DefaultRetryPause  = 50 * time.Millisecond
)

type statePayload struct {
	On  bool           `json:"on"`
	Seg []segmentState `json:"seg"`
}

type segmentState struct {
	ID int      `json:"id"`
	I  [][3]int `json:"i"`
}

// StatePayload builds the /json/state body that sets every pixel of
// segment 0 individually.
func StatePayload(frame led.Frame) ([]byte, error) {
	pixels := make([][3]int, len(frame))
	for i, c := range frame {
		pixels[i] = [3]int{int(c.R), int(c.G), int(c.B)}
	}
	return json.Marshal(statePayload{
		On:  true,
		Seg: []segmentState{{ID: 0, I: pixels}},
	})
}

// HTTPSink posts frames to a controller's JSON API, retrying timeouts and
// connection failures.
type HTTPSink struct {
	URL        string
	Timeout    time.Duration // per attempt
	MaxRetries int
	RetryPause time.Duration

	client *http.Client
	log    logrus.FieldLogger
}

// NewHTTPSink targets http://host/json/state. host may carry an explicit
// scheme.
func NewHTTPSink(host string, timeout time.Duration, logger logrus.FieldLogger) *HTTPSink {
	base := host
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &HTTPSink{
		URL:        strings.TrimRight(base, "/") + "/json/state",
		Timeout:    timeout,
		MaxRetries: DefaultMaxRetries,
		RetryPause: DefaultRetryPause,
		client:     &http.Client{},
		log:        logger.WithField("component", "wled-http"),
	}
}

// Update implements animation.Sink. It returns the last attempt's error once
// every retry has failed.
func (s *HTTPSink) Update(ctx context.Context, frame led.Frame) error {
	body, err := StatePayload(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	attempts := max(s.MaxRetries, 1)
	for attempt := 1; ; attempt++ {
		err = s.post(ctx, body)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt >= attempts {
			break
		}
		s.log.WithError(err).Debugf("attempt %d/%d failed, retrying", attempt, attempts)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.RetryPause):
		}
	}
	return fmt.Errorf("wled http %s failed after %d attempts: %w", s.URL, attempts, err)
}

func (s *HTTPSink) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
