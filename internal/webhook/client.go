package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Client posts announcement messages to a Discord-style webhook URL. Delivery
// runs through a circuit breaker so a dead endpoint cannot stall a poll cycle.
type Client struct {
	url            string
	http           *resty.Client
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *logrus.Logger
}

func NewClient(url string, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "webhook",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"from_state": from,
				"to_state":   to,
			}).Warn("Webhook circuit breaker state changed")
		},
	})

	http := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		url:            url,
		http:           http,
		circuitBreaker: cb,
		logger:         logger,
	}
}

// Send delivers one message. A non-2xx response is an error.
func (c *Client) Send(ctx context.Context, msg string) error {
	if c.url == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]string{"content": msg}).
			Post(c.url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode())
		}
		return nil, nil
	})
	if err != nil {
		c.logger.WithError(err).Debug("webhook send failed")
	}
	return err
}

// Healthy reports whether the breaker is accepting traffic.
func (c *Client) Healthy() bool {
	return c.circuitBreaker.State() == gobreaker.StateClosed
}
