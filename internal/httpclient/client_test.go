package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fd1az/tokenprice/internal/apperror"
)

type payload struct {
	Name string `json:"name"`
}

func TestRequest_Get(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		wantCode apperror.Code
		wantName string
	}{
		{
			name: "decodes_json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/items" || r.URL.Query().Get("q") != "a b" {
					http.Error(w, "bad request", http.StatusBadRequest)
					return
				}
				_, _ = w.Write([]byte(`{"name":"ok"}`))
			},
			wantName: "ok",
		},
		{
			name: "non_2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantCode: apperror.CodeExternalServiceError,
		},
		{
			name: "bad_body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			wantCode: apperror.CodeInvalidFormat,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			},
			timeout:  50 * time.Millisecond,
			wantCode: apperror.CodeServiceTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			opts := []ClientOption{WithBaseURL(srv.URL + "/v1"), WithProviderName("test")}
			if tt.timeout > 0 {
				opts = append(opts, WithRequestTimeout(tt.timeout))
			}
			client, err := NewInstrumentedClient(opts...)
			if err != nil {
				t.Fatalf("NewInstrumentedClient: %v", err)
			}

			var out payload
			_, err = client.NewRequest().
				SetQueryParam("q", "a b").
				SetResult(&out).
				Get(context.Background(), "/items")

			if tt.wantCode != "" {
				if !apperror.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Name != tt.wantName {
				t.Errorf("name = %q, want %q", out.Name, tt.wantName)
			}
		})
	}
}

func TestRequest_CustomErrorHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name":"missing"}`))
	}))
	defer srv.Close()

	client, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	// Accept 404 as a valid, decodable answer.
	accept404 := WithResponseErrorHandler(func(status int, _ []byte) error {
		if status == http.StatusNotFound || status == http.StatusOK {
			return nil
		}
		return apperror.New(apperror.CodeExternalServiceError)
	})

	var out payload
	resp, err := client.NewRequest(accept404).SetResult(&out).Get(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IsSuccess() {
		t.Error("404 must not report IsSuccess")
	}
	if out.Name != "missing" {
		t.Errorf("name = %q", out.Name)
	}
}
