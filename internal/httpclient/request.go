package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/tokenprice/internal/apperror"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Request builds and executes a single GET.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)

	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result interface{}) Request
}

// Response wraps http.Response with the already-read body.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// IsSuccess returns true for 2xx status codes.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type requestBuilder struct {
	client       *InstrumentedClient
	headers      http.Header
	query        url.Values
	result       interface{}
	errorHandler ResponseErrorHandler
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers.Set(key, value)
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

// SetResult sets the target the body is decoded into on success.
func (r *requestBuilder) SetResult(result interface{}) Request {
	r.result = result
	return r
}

// Get executes the request. Transport failures, timeouts, rejected
// responses and undecodable bodies are all returned as errors.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	fullURL := r.resolve(path)

	ctx, span := r.client.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", fullURL),
			attribute.String("provider", r.client.opts.providerName),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		span.SetStatus(codes.Error, "failed to create request")
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContext(fullURL))
	}
	for k, v := range r.headers {
		req.Header[k] = v
	}
	if r.result != nil && req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := r.client.client.Do(req)
	if err != nil {
		return nil, r.transportError(ctx, span, fullURL, err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
	if err != nil {
		return nil, r.transportError(ctx, span, fullURL, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if r.client.opts.traceBodies {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(body)),
		))
	}

	response := &Response{Response: resp, body: body}

	handler := r.errorHandler
	if handler == nil {
		handler = defaultErrorHandler
	}
	if handlerErr := handler(resp.StatusCode, body); handlerErr != nil {
		r.recordMetrics(ctx, false)
		span.SetStatus(codes.Error, handlerErr.Error())
		return response, handlerErr
	}

	if r.result != nil {
		if err := json.Unmarshal(body, r.result); err != nil {
			r.recordMetrics(ctx, false)
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to decode body")
			return response, apperror.New(apperror.CodeInvalidFormat,
				apperror.WithCause(err),
				apperror.WithContext(fullURL))
		}
	}

	r.recordMetrics(ctx, true)
	return response, nil
}

func (r *requestBuilder) resolve(path string) string {
	full := path
	if base := r.client.opts.baseURL; base != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + r.query.Encode()
	}
	return full
}

func defaultErrorHandler(statusCode int, _ []byte) error {
	if statusCode < 200 || statusCode >= 300 {
		return apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(fmt.Sprintf("unexpected status %d", statusCode)))
	}
	return nil
}

// transportError classifies a failed round trip.
func (r *requestBuilder) transportError(ctx context.Context, span trace.Span, fullURL string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.recordMetrics(ctx, false)

	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		span.SetAttributes(attribute.Bool("request.timeout", true))
		return apperror.New(apperror.CodeServiceTimeout,
			apperror.WithCause(err),
			apperror.WithContext(fullURL))
	}

	return apperror.New(apperror.CodeExternalServiceError,
		apperror.WithCause(err),
		apperror.WithContext(fullURL))
}

func (r *requestBuilder) recordMetrics(ctx context.Context, success bool) {
	r.client.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", r.client.opts.providerName),
		attribute.Bool("success", success),
	))
}
