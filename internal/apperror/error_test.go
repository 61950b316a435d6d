package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew_DefaultMessageAndStatus(t *testing.T) {
	tests := []struct {
		code       Code
		wantStatus int
	}{
		{CodeInvalidAddress, http.StatusBadRequest},
		{CodePoolNotFound, http.StatusNotFound},
		{CodeNoLiquidPath, http.StatusNotFound},
		{CodeEthereumConnectionFailed, http.StatusServiceUnavailable},
		{CodeAggregatorRequestFailed, http.StatusBadGateway},
		{CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code)
			if err.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", err.StatusCode, tt.wantStatus)
			}
			if err.Message != messages[tt.code] {
				t.Errorf("message = %q, want %q", err.Message, messages[tt.code])
			}
		})
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("probe: %w", New(CodeNoLiquidPath, WithContext("all candidates reverted")))

	if !errors.Is(err, New(CodeNoLiquidPath)) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, New(CodePoolNotFound)) {
		t.Error("expected errors.Is not to match a different code")
	}
	if !HasCode(err, CodeNoLiquidPath) {
		t.Error("expected HasCode to see the wrapped code")
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, CodeEthereumConnectionFailed, "dial rpc")

	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if GetCode(err) != CodeEthereumConnectionFailed {
		t.Errorf("code = %s, want %s", GetCode(err), CodeEthereumConnectionFailed)
	}
	if Wrap(nil, CodeInternalError, "") != nil {
		t.Error("expected nil for nil error")
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if got := GetCode(errors.New("boom")); got != CodeUnknownError {
		t.Errorf("code = %s, want %s", got, CodeUnknownError)
	}
}

func TestResponse_HidesCause(t *testing.T) {
	err := Internal(CodeInternalError, "price handler", errors.New("secret dsn"))
	err.WithTraceID("abc123")

	body := err.Response()
	if body.Error.Code != CodeInternalError || body.Error.TraceID != "abc123" || body.Error.Context != "price handler" {
		t.Errorf("unexpected body %+v", body)
	}

	fields := err.LogFields()
	found := false
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i] == "cause" && fields[i+1] == "secret dsn" {
			found = true
		}
	}
	if !found {
		t.Errorf("cause missing from log fields: %v", fields)
	}
}
