// Package suggest asks a remote text-suggestion service for invoice line
// item descriptions.
//
// Suggestions are a convenience: every failure yields an empty list and a
// warning in the log, never an error.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/lvillar/docsmith/internal/logger"
	"github.com/lvillar/docsmith/record"
)

// Defaults for New.
const (
	DefaultTimeout    = 20 * time.Second
	DefaultRetryCount = 1
)

// Suggester returns item descriptions for an invoice draft.
type Suggester interface {
	Suggest(ctx context.Context, draft string) []string
}

// Nop never suggests anything.
type Nop struct{}

func (Nop) Suggest(context.Context, string) []string { return nil }

type request struct {
	InvoiceDraft string `json:"invoiceDraft"`
}

type response struct {
	SuggestedItems string `json:"suggestedItems"`
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds a single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithHTTPClient uses rc instead of building a client. The endpoint is still
// resolved against rc's base URL.
func WithHTTPClient(rc *resty.Client) Option {
	return func(c *Client) { c.http = rc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// Client posts drafts to a suggestion endpoint.
type Client struct {
	endpoint string
	timeout  time.Duration
	retries  int
	http     *resty.Client
	owns     bool
	log      *zap.Logger
}

// New returns a Client for endpoint, the full URL of the suggestion service.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		timeout:  DefaultTimeout,
		retries:  DefaultRetryCount,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New().
			SetTimeout(c.timeout).
			SetRetryCount(c.retries).
			SetAllowNonIdempotentRetry(true).
			SetHeader("Accept", "application/json")
		c.owns = true
	}
	return c
}

// Close releases the HTTP client when the Client created it.
func (c *Client) Close() error {
	if c.owns {
		return c.http.Close()
	}
	return nil
}

// Suggest returns the suggested descriptions for draft, or nil.
func (c *Client) Suggest(ctx context.Context, draft string) []string {
	items, err := c.fetch(ctx, draft)
	if err != nil {
		c.log.Warn("suggestion failed", zap.Error(err))
		return nil
	}
	return items
}

func (c *Client) fetch(ctx context.Context, draft string) ([]string, error) {
	if strings.TrimSpace(draft) == "" {
		return nil, fmt.Errorf("suggest: empty draft")
	}
	if c.endpoint == "" {
		return nil, fmt.Errorf("suggest: no endpoint configured")
	}
	var out response
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request{InvoiceDraft: draft}).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("suggest: unexpected status %s", resp.Status())
	}
	return Lines(out.SuggestedItems), nil
}

// Lines splits a suggestion blob into items: one per line, trimmed, with a
// leading list dash removed and blank lines dropped.
func Lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimPrefix(strings.TrimSpace(l), "- ")
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Draft describes an invoice in the plain-text form the suggestion service
// expects.
func Draft(inv *record.Invoice) string {
	if inv == nil {
		return ""
	}
	var b strings.Builder
	if inv.CompanyName != "" {
		fmt.Fprintf(&b, "From: %s\n", inv.CompanyName)
	}
	if inv.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", inv.ClientName)
	}
	for _, it := range inv.Items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s (qty %g, %.2f)\n", it.Name, it.Quantity, it.Price)
	}
	if inv.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", inv.Notes)
	}
	return strings.TrimSpace(b.String())
}
