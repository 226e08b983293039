package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/logger"
)

// Deliverer sends one alert somewhere. Failures are not retried.
type Deliverer interface {
	Deliver(ctx context.Context, a model.Alert) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, a model.Alert) error

// Deliver implements Deliverer.
func (f DelivererFunc) Deliver(ctx context.Context, a model.Alert) error { return f(ctx, a) }

// HTTPDeliverer POSTs each alert as JSON to an endpoint.
type HTTPDeliverer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPDeliverer builds a deliverer with a per-request timeout.
func NewHTTPDeliverer(endpoint string, timeout time.Duration) *HTTPDeliverer {
	return &HTTPDeliverer{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

// Deliver implements Deliverer. Any non-2xx status is an error.
func (d *HTTPDeliverer) Deliver(ctx context.Context, a model.Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// LogDeliverer writes alerts to the log only.
type LogDeliverer struct {
	Logger logger.Logger
}

// Deliver implements Deliverer.
func (d LogDeliverer) Deliver(ctx context.Context, a model.Alert) error {
	d.Logger.Info(ctx, "theme alert",
		logger.String("id", a.ID),
		logger.String("severity", string(a.Severity)),
		logger.String("message", a.Message),
	)
	return nil
}
