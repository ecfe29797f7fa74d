// Package datadog sends ddlog events to the Datadog Events API.
package datadog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"

	"github.com/ustudio/datadog-logger/pkg/ddlog"
)

var ErrMissingAPIKey = errors.New("datadog: api key is required")

const (
	DefaultSite    = "datadoghq.com"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	APIKey string
	AppKey string
	Site   string

	// Timeout bounds one CreateEvent round trip.
	Timeout time.Duration

	// Endpoint replaces the site-derived server URL (proxies, tests).
	Endpoint string
}

// Client implements ddlog.EventCreator over datadogV1.EventsApi.
// It never retries and never logs: it may be running inside a log sink.
type Client struct {
	api    *datadogV1.EventsApi
	keys   map[string]datadog.APIKey
	server map[string]string
}

var _ ddlog.EventCreator = (*Client)(nil)

// New validates cfg and builds a client. Blank site and timeout take the defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	site := strings.TrimSpace(cfg.Site)
	if site == "" {
		site = DefaultSite
	}

	dc := datadog.NewConfiguration()
	dc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	dc.RetryConfiguration.EnableRetry = false
	if ep := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); ep != "" {
		dc.Servers = datadog.ServerConfigurations{{URL: ep}}
	}

	keys := map[string]datadog.APIKey{"apiKeyAuth": {Key: cfg.APIKey}}
	if cfg.AppKey != "" {
		keys["appKeyAuth"] = datadog.APIKey{Key: cfg.AppKey}
	}

	return &Client{
		api:    datadogV1.NewEventsApi(datadog.NewAPIClient(dc)),
		keys:   keys,
		server: map[string]string{"site": site},
	}, nil
}

// CreateEvent posts one event. Optional fields are sent only when present.
func (c *Client) CreateEvent(ctx context.Context, ev ddlog.Event) error {
	ctx = context.WithValue(ctx, datadog.ContextAPIKeys, c.keys)
	ctx = context.WithValue(ctx, datadog.ContextServerVariables, c.server)

	_, resp, err := c.api.CreateEvent(ctx, Request(ev))
	if err != nil {
		if resp != nil {
			return fmt.Errorf("datadog: create event: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("datadog: create event: %w", err)
	}
	return nil
}

// Request maps an event to the API request body.
func Request(ev ddlog.Event) datadogV1.EventCreateRequest {
	body := *datadogV1.NewEventCreateRequest(ev.Text, ev.Title)
	if ev.Tags != nil {
		body.Tags = append([]string{}, ev.Tags...)
	}
	if ev.AlertType != nil {
		at := datadogV1.EventAlertType(*ev.AlertType)
		body.AlertType = &at
	}
	return body
}
