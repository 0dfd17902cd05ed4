package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
)

const requestIDHeader = "X-Request-ID"

// Transport sends every backend call: fixed base address, hard timeout,
// exactly one attempt. Status codes are returned to the caller untouched.
type Transport struct {
	client  *http.Client
	baseURL string
	creds   core.CredentialSource
}

func NewTransport(cfg core.ClientConfig, creds core.CredentialSource) *Transport {
	return &Transport{
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		baseURL: cfg.GetBaseURL(),
		creds:   creds,
	}
}

type sendOptions struct {
	query       url.Values
	headers     map[string]string
	contentType string
}

type SendOption func(*sendOptions)

func WithQuery(q url.Values) SendOption {
	return func(o *sendOptions) { o.query = q }
}

func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) { o.headers[key] = value }
}

func WithContentType(ct string) SendOption {
	return func(o *sendOptions) { o.contentType = ct }
}

// Send issues one request. body may be nil, an io.Reader sent as-is, or any
// other value encoded as JSON.
func (t *Transport) Send(ctx context.Context, method, path string, body any, opts ...SendOption) (*http.Response, error) {
	o := sendOptions{headers: make(map[string]string)}
	for _, opt := range opts {
		opt(&o)
	}

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		bodyReader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		if o.contentType == "" {
			o.contentType = "application/json"
		}
	}

	target := t.baseURL + path
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("User-Agent", core.AppUserAgent)
	req.Header.Set("Accept", "application/json")
	if o.contentType != "" {
		req.Header.Set("Content-Type", o.contentType)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}
	if t.creds != nil {
		if token := t.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := log.FromCtx(ctx).With().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Logger()

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		err = classify(err)
		logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("backend request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("backend request")
	return resp, nil
}

// classify maps a client error onto the transport taxonomy. Caller
// cancellation is left as context.Canceled.
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", core.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrNetwork, err)
}
