package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurobridge-docchat/internal/pkg/httpx"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second

	maxResponseBytes = 4 << 20
)

// Credentials supplies the bearer token for each request. An empty token
// sends no Authorization header.
type Credentials interface {
	Token() string
}

type Options struct {
	BaseURL string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	Headers     map[string]string
	Credentials Credentials

	// OnUnauthorized runs once per 401 response, before the error is returned.
	OnUnauthorized func()

	HTTPClient *http.Client
	Log        *logger.Logger
}

type Client struct {
	baseURL string

	timeout time.Duration
	retry   httpx.Policy

	headers        map[string]string
	creds          Credentials
	onUnauthorized func()

	httpClient *http.Client
	log        *logger.Logger
	tracer     trace.Tracer
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryDelay := opts.RetryDelay
	if retryDelay < 0 {
		retryDelay = 0
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range opts.Headers {
		if strings.TrimSpace(k) != "" {
			headers[k] = v
		}
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		retry: httpx.Policy{
			MaxRetries: maxRetries,
			Delay:      retryDelay,
			MaxDelay:   4*retryDelay + time.Second,
			Jitter:     0.2,
		},
		headers:        headers,
		creds:          opts.Credentials,
		onUnauthorized: opts.OnUnauthorized,
		httpClient:     hc,
		log:            log.With("component", "RequestClient"),
		tracer:         otel.Tracer("github.com/yungbote/neurobridge-docchat/internal/client"),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// request describes one logical call. route is the path template used for
// span names and logs; path is the concrete path.
type request struct {
	method      string
	route       string
	path        string
	query       url.Values
	contentType string
	body        []byte
}

func (c *Client) doJSON(ctx context.Context, method, route, path string, query url.Values, body any, out any) error {
	req := request{method: method, route: route, path: path, query: query}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", route, err)
		}
		req.body = raw
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "docchat.client "+r.method+" "+r.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("http.route", r.route),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apierr.KindOf(err)))
		}
		span.End()
	}()

	attempts := c.retry.Attempts(r.method)
	corr := correlationFor(ctx, span)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return apierr.Network(ctx.Err())
		}
		corr.Attempt = attempt
		status, raw, hdr, callErr := c.attempt(ctx, r, corr)
		span.SetAttributes(attribute.Int("http.request.resend_count", attempt-1))
		c.log.Debug("request finished", append([]interface{}{
			"method", r.method,
			"route", r.route,
			"status", status,
		}, corr.Fields()...)...)

		switch {
		case callErr != nil:
			if errors.Is(callErr, context.Canceled) && ctx.Err() != nil {
				return apierr.Network(callErr)
			}
			lastErr = apierr.Network(callErr)
		case status < 200 || status >= 300:
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			herr := parseHTTPError(status, raw)
			if status == http.StatusUnauthorized {
				if c.onUnauthorized != nil {
					c.onUnauthorized()
				}
				return herr
			}
			if !httpx.IsRetryableHTTPStatus(status) {
				return herr
			}
			lastErr = herr
			if attempt < attempts {
				if serr := httpx.Sleep(ctx, c.retry.Wait(hdr)); serr != nil {
					return apierr.Network(serr)
				}
				continue
			}
			return lastErr
		default:
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if out == nil || len(bytes.TrimSpace(raw)) == 0 {
				return nil
			}
			if derr := json.Unmarshal(raw, out); derr != nil {
				return &apierr.Error{Kind: apierr.KindServer, Status: status, Code: "decode_failed", Message: "malformed response body", Err: derr}
			}
			return nil
		}

		if attempt < attempts {
			if serr := httpx.Sleep(ctx, c.retry.Wait(nil)); serr != nil {
				return apierr.Network(serr)
			}
		}
	}
	if lastErr == nil {
		lastErr = apierr.Network(errors.New("request failed"))
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, r request, corr ctxutil.Correlation) (int, []byte, http.Header, error) {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(actx, r.method, target, body)
	if err != nil {
		return 0, nil, nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.body == nil {
		req.Header.Del("Content-Type")
	}
	if c.creds != nil {
		if tok := strings.TrimSpace(c.creds.Token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set(ctxutil.HeaderRequestID, corr.RequestID)
	if corr.SessionID != "" {
		req.Header.Set(ctxutil.HeaderSessionID, corr.SessionID)
	}
	if corr.TraceID != "" {
		req.Header.Set(ctxutil.HeaderTraceID, corr.TraceID)
	}
	if corr.Attempt > 1 {
		req.Header.Set(ctxutil.HeaderAttempt, strconv.Itoa(corr.Attempt))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, raw, resp.Header, nil
}

// correlationFor keeps the caller's session and request ids and fills the
// rest. All attempts of one logical request share a request id.
func correlationFor(ctx context.Context, span trace.Span) ctxutil.Correlation {
	corr, _ := ctxutil.CorrelationFrom(ctx)
	if strings.TrimSpace(corr.RequestID) == "" {
		corr.RequestID = uuid.NewString()
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		corr.TraceID = sc.TraceID().String()
	}
	return corr
}

func pagingQuery(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", fmt.Sprint(skip))
	} else {
		q.Set("skip", "0")
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	return q
}

func escape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
