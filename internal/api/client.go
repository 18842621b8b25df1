// Package api is the single client the views use to talk to the backend.
// It attaches the tenant header, classifies and logs failures, and keeps a
// replace-on-fetch response cache.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tgienger/taskboard/internal/graphql"
)

const (
	// OrganizationHeader carries the tenant slug on every request
	OrganizationHeader = "X-Organization-Slug"
	// RequestIDHeader correlates a request with its log lines
	RequestIDHeader = "X-Request-ID"

	// DefaultEndpoint is used when no endpoint is configured
	DefaultEndpoint = "http://localhost:8000/graphql/"

	maxBodyBytes    = 8 << 20
	maxErrorExcerpt = 4096
)

// Options configures a Client. They are fixed for the client's lifetime.
type Options struct {
	Endpoint         string
	OrganizationSlug string
	HTTPClient       *http.Client
	Logger           *slog.Logger
}

// Client sends operations to the backend. Create one per process and share it.
type Client struct {
	endpoint string
	orgSlug  string
	http     *http.Client
	log      *slog.Logger
	cache    *Cache
}

// New creates a client. A nil HTTPClient gets one without a timeout, so a
// hung call blocks until its context ends.
func New(opts Options) (*Client, error) {
	if opts.OrganizationSlug == "" {
		return nil, errors.New("api: organization slug is required")
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		endpoint: endpoint,
		orgSlug:  opts.OrganizationSlug,
		http:     hc,
		log:      log.With(slog.String("component", "api")),
		cache:    NewCache(),
	}, nil
}

// OrganizationSlug returns the tenant this client is scoped to
func (c *Client) OrganizationSlug() string { return c.orgSlug }

// Endpoint returns the backend URL
func (c *Client) Endpoint() string { return c.endpoint }

// Cache exposes the response cache
func (c *Client) Cache() *Cache { return c.cache }

// Query runs a query cache-first: when the exact operation + arguments
// tuple has a cached response, it is decoded into out without touching the
// network. Otherwise the query is sent and a successful response replaces
// the cache entry.
func (c *Client) Query(ctx context.Context, op graphql.Operation, out any) error {
	if data, ok := c.cache.Get(op.Key()); ok {
		c.log.Debug("cache hit", slog.String("operation", op.Name))
		return decode(op, data, out)
	}
	return c.Refetch(ctx, op, out)
}

// Refetch runs a query network-only and replaces its cache entry on
// success. A failed fetch leaves the previous entry in place. out may be nil.
func (c *Client) Refetch(ctx context.Context, op graphql.Operation, out any) error {
	data, err := c.send(ctx, op)
	if err != nil {
		return err
	}
	if out != nil {
		if err := decode(op, data, out); err != nil {
			return err
		}
	}
	c.cache.Replace(op.Key(), data)
	return nil
}

// Mutate sends a mutation and then re-issues each dependent query in
// refetch, returning once all of them resolved. The cache is never patched
// from the mutation result itself.
//
// If the mutation succeeds but a refetch fails, out is still populated and
// the refetch failures are returned joined together.
func (c *Client) Mutate(ctx context.Context, op graphql.Operation, out any, refetch ...graphql.Operation) error {
	data, err := c.send(ctx, op)
	if err != nil {
		return err
	}
	if out != nil {
		if err := decode(op, data, out); err != nil {
			return err
		}
	}

	var errs []error
	for _, q := range refetch {
		if err := c.Refetch(ctx, q, nil); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("refetch after %s: %w", op.Name, errors.Join(errs...))
	}
	return nil
}

// send performs one round trip. Identical concurrent calls are not
// coalesced: each one reaches the transport.
func (c *Client) send(ctx context.Context, op graphql.Operation) (json.RawMessage, error) {
	reqID := uuid.NewString()
	log := c.log.With(slog.String("operation", op.Name), slog.String("request_id", reqID))

	body, err := json.Marshal(graphql.NewRequest(op))
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(OrganizationHeader, c.orgSlug)
	req.Header.Set(RequestIDHeader, reqID)

	log.Debug("sending operation", slog.Any("variables", op.Variables))

	resp, err := c.http.Do(req)
	if err != nil {
		te := &TransportError{Operation: op.Name, Err: err}
		log.Error("network error", slog.String("error", err.Error()))
		return nil, te
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Error("network error", slog.String("error", err.Error()))
		return nil, &TransportError{Operation: op.Name, StatusCode: resp.StatusCode, Err: err}
	}

	var gr graphql.Response
	decodeErr := json.Unmarshal(raw, &gr)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && len(gr.Errors) > 0 {
			return nil, c.operationError(log, op, gr.Errors)
		}
		te := &TransportError{Operation: op.Name, StatusCode: resp.StatusCode, Body: excerpt(raw)}
		log.Error("network error", slog.Int("status", resp.StatusCode), slog.String("body", te.Body))
		return nil, te
	}
	if decodeErr != nil {
		log.Error("network error", slog.String("error", decodeErr.Error()))
		return nil, &TransportError{Operation: op.Name, StatusCode: resp.StatusCode, Err: decodeErr}
	}
	if len(gr.Errors) > 0 {
		return nil, c.operationError(log, op, gr.Errors)
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		log.Error("network error", slog.String("error", "response has no data"))
		return nil, &TransportError{Operation: op.Name, StatusCode: resp.StatusCode, Err: errors.New("response has no data")}
	}

	log.Debug("operation completed", slog.Int("bytes", len(raw)))
	return gr.Data, nil
}

func (c *Client) operationError(log *slog.Logger, op graphql.Operation, errs []graphql.Error) error {
	for _, ge := range errs {
		log.Error("graphql error",
			slog.String("message", ge.Message),
			slog.String("locations", ge.LocationString()),
			slog.String("path", ge.PathString()),
		)
	}
	return &OperationError{Operation: op.Name, Errors: errs}
}

func decode(op graphql.Operation, data json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Operation: op.Name, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func excerpt(b []byte) string {
	if len(b) > maxErrorExcerpt {
		b = b[:maxErrorExcerpt]
	}
	return string(b)
}
