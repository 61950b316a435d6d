// Package httpapi exposes price resolution over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/apm"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Resolver is the slice of the price service the handler needs.
type Resolver interface {
	Resolve(ctx context.Context, rawAddress string, quote domain.QuoteCurrency, opts ...app.ResolveOption) (domain.PriceQuote, error)
}

type Handler struct {
	resolver Resolver
	log      logger.LoggerInterface
}

func NewHandler(resolver Resolver, log logger.LoggerInterface) *Handler {
	return &Handler{resolver: resolver, log: log}
}

// Register mounts GET /v1/price/{address} on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /v1/price/{address}", otelhttp.NewHandler(http.HandlerFunc(h.price), "GET /v1/price"))
}

func (h *Handler) price(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quote := domain.QuoteNative
	if raw := r.URL.Query().Get("quote"); raw != "" {
		q, err := domain.ParseQuoteCurrency(raw)
		if err != nil {
			h.writeError(ctx, w, err)
			return
		}
		quote = q
	}

	var opts []app.ResolveOption
	if raw := r.URL.Query().Get("v3"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(ctx, w, apperror.Validation(apperror.CodeInvalidInput, "v3="+raw))
			return
		}
		if !enabled {
			opts = append(opts, app.WithoutV3())
		}
	}

	result, err := h.resolver.Resolve(ctx, r.PathValue("address"), quote, opts...)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(apperror.CodeInternalError, "price handler", err)
	}

	if id := apm.TraceID(ctx); id != "" {
		appErr = appErr.WithTraceID(id)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.log.Error(ctx, "price request failed", appErr.LogFields()...)
	}

	writeJSON(w, appErr.StatusCode, appErr.Response())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
