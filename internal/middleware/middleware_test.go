package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/pkg/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
		wantMsg    string
	}{
		{"disabled without configured key", "", "", http.StatusNoContent, ""},
		{"disabled ignores header", "", "anything", http.StatusNoContent, ""},
		{"valid key", "s3cret", "s3cret", http.StatusNoContent, ""},
		{"missing key", "s3cret", "", http.StatusUnauthorized, "Missing API key"},
		{"wrong key", "s3cret", "nope", http.StatusUnauthorized, "Invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewAuthMiddleware(tt.configured, logger.Discard())
			req := httptest.NewRequest(http.MethodPost, "/consent/generate", nil)
			if tt.sent != "" {
				req.Header.Set(APIKeyHeader, tt.sent)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg == "" {
				return
			}
			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body.Error)
			assert.Equal(t, "ERR_UNAUTHORIZED", body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_KeepsCallerValue(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "caller-id", seen)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}

func TestAccessLog_LogsAndRecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "INFO")
	reg := metrics.New()

	r := chi.NewRouter()
	r.Use(RequestID, AccessLog(log, reg))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotSame(t, log, LoggerFrom(r.Context(), log))
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "HTTP request", line["msg"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "/items/42", line["path"])
	assert.EqualValues(t, http.StatusAccepted, line["status"])

	assert.Equal(t, 1.0, requestCount(t, reg, "/items/{id}", "202"))
}

func TestLoggerFrom_FallsBackToBase(t *testing.T) {
	base := logger.Discard()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, base, LoggerFrom(req.Context(), base))
}

func requestCount(t *testing.T, reg *metrics.Registry, route, status string) float64 {
	t.Helper()
	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != "aa_gateway_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == route && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
