package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// EventType names a listing event the notification service can act on
type EventType string

const (
	EventUnitCreated      EventType = "unit.created"
	EventContainerRented  EventType = "container.rented_complete"
	EventModeChanged      EventType = "container.mode_changed"
	EventOccupancyChanged EventType = "unit.occupancy_changed"
	EventContainerDeleted EventType = "container.deleted"
)

// Event is posted to the notification service after a change is committed
type Event struct {
	Type        EventType `json:"type"`
	OwnerID     uint      `json:"owner_id"`
	ContainerID uint      `json:"container_id"`
	UnitID      uint      `json:"unit_id,omitempty"`
	IsRented    *bool     `json:"is_rented,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier delivers listing events
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// StatusError is a non-2xx answer from the notification service
type StatusError struct {
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("notification service returned %d: %s", e.StatusCode, e.Body)
}

// Client posts events to the notification service through a circuit breaker
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// New returns a Client, or a Nop notifier when no endpoint is configured
func New(cfg *config.NotifierConfig) Notifier {
	if cfg.BaseURL == "" {
		return Nop{}
	}
	return NewClient(cfg.BaseURL, cfg.Timeout)
}

// NewClient creates a notification client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		cb:         circuitBreaker("notificationService"),
	}
}

// Notify posts event. While the breaker is open it fails fast with gobreaker.ErrOpenState.
func (c *Client) Notify(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, event)
	})
	return err
}

func (c *Client) post(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}
	return nil
}

// circuitBreaker trips after three consecutive failures. 4xx answers are the
// caller's fault and do not count against the service.
func circuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.GetLogger().Warn("Circuit breaker changed state",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			statusErr, ok := err.(StatusError)
			return ok && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
		},
	})
}

// Nop drops every event
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, Event) error { return nil }
