// Package formservice posts forms to the portfolio API and reports the
// outcome to the user through notifications.
package formservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/portfolio/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	maxReplyBytes  = 1 << 20

	// EndpointSubmit is the portfolio request endpoint.
	EndpointSubmit = "submit"

	titleConnectionError = "Connection Error"
)

// Notifier shows toasts. The UI store satisfies it.
type Notifier interface {
	ShowSuccess(title, message string) string
	ShowError(title, message string) string
}

// Messages are the toast texts of one form.
type Messages struct {
	SuccessTitle string
	Success      string
	ErrorTitle   string
	Error        string
}

// DefaultMessages are used by Submit when msgs is zero.
var DefaultMessages = Messages{
	SuccessTitle: "Success",
	Success:      "Form submitted successfully!",
	ErrorTitle:   "Error",
	Error:        "Submission failed. Please try again.",
}

// PortfolioMessages are the texts of the portfolio request form.
var PortfolioMessages = Messages{
	SuccessTitle: "Submission Successful",
	Success:      "Thank you for your interest! We will contact you soon.",
	ErrorTitle:   "Submission Failed",
	Error:        "Submission failed. Please try again.",
}

// Result is the outcome of a submission the server answered. Data holds
// the whole reply on success; Error the message to show on rejection.
type Result struct {
	Success bool
	Data    map[string]any
	Error   string
}

// PortfolioRequest is the body of a portfolio request.
type PortfolioRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	ResumeHeader string `json:"resumeHeader"`
	Skills       string `json:"skills"`
	Honeypot     string `json:"_gotcha,omitempty"`
}

// Client submits forms to baseURL.
type Client struct {
	baseURL  string
	http     *http.Client
	notifier Notifier
	logger   logger.Logger
}

// New creates a client. notifier may be nil.
func New(baseURL string, notifier Notifier, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		notifier: notifier,
		logger:   logger.NamedOrNop("form-service"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitPortfolioRequest posts req to the submit endpoint.
func (c *Client) SubmitPortfolioRequest(ctx context.Context, req PortfolioRequest) (Result, error) {
	return c.Submit(ctx, EndpointSubmit, req, PortfolioMessages)
}

// Submit posts payload as JSON to baseURL/endpoint.
//
// A reply with success true shows msgs.Success and returns the reply. A
// reply with success false shows the server error, or msgs.Error, and is
// returned with a nil error. Anything else, including a reply that is not
// JSON, shows a connection error and returns ErrNetwork.
func (c *Client) Submit(ctx context.Context, endpoint string, payload any, msgs Messages) (Result, error) {
	if msgs == (Messages{}) {
		msgs = DefaultMessages
	}
	reply, err := c.post(ctx, endpoint, payload)
	if err != nil {
		c.logger.Warn(ctx, "form submission failed", logger.String("endpoint", endpoint), logger.Error(err))
		c.notifyError(titleConnectionError, MsgNetwork)
		return Result{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if ok, _ := reply["success"].(bool); ok {
		c.notifySuccess(msgs.SuccessTitle, msgs.Success)
		return Result{Success: true, Data: reply}, nil
	}

	msg := msgs.Error
	if s, ok := reply["error"].(string); ok && s != "" {
		msg = s
	}
	c.logger.Info(ctx, "form submission rejected", logger.String("endpoint", endpoint), logger.String("error", msg))
	c.notifyError(msgs.ErrorTitle, msg)
	return Result{Success: false, Error: msg}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reply map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode reply (status %d): %w", resp.StatusCode, err)
	}
	if reply == nil {
		return nil, fmt.Errorf("empty reply (status %d)", resp.StatusCode)
	}
	return reply, nil
}

func (c *Client) notifySuccess(title, msg string) {
	if c.notifier != nil {
		c.notifier.ShowSuccess(title, msg)
	}
}

func (c *Client) notifyError(title, msg string) {
	if c.notifier != nil {
		c.notifier.ShowError(title, msg)
	}
}
