// Package webhook posts property lifecycle events to a configurable URL,
// best effort: failures are logged and dropped.
package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/imoview/realty-crm/internal/core/domain"
)

const requestTimeout = 5 * time.Second

// URLSource yields the destination for the next dispatch. The webhook URL
// lives in the mutable global settings, so it is read per event.
type URLSource func() string

// Client posts JSON payloads of the shape {event, timestamp, property}.
// An empty URL disables dispatch entirely.
type Client struct {
	source URLSource
	http   *http.Client
	log    zerolog.Logger
}

func NewClient(source URLSource, log zerolog.Logger) *Client {
	return &Client{
		source: source,
		http:   &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

type payload struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Property  domain.Property `json:"property"`
}

// NotifyProperty fires one event. Callers already run this off the mutation
// path; the method itself blocks at most requestTimeout.
func (c *Client) NotifyProperty(event string, property domain.Property) {
	if c == nil || c.source == nil {
		return
	}
	url := c.source()
	if url == "" {
		return
	}

	body, err := json.Marshal(payload{Event: event, Timestamp: time.Now().UTC(), Property: property})
	if err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("webhook payload marshal failed")
		return
	}

	resp, err := c.http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Str("event", event).Msg("webhook rejected")
	}
}
