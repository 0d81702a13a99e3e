package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aa-consent-gateway/internal/config"
	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/pkg/logger"
)

// capturedRequest is one request received by fakeAA
type capturedRequest struct {
	Path          string
	Authorization string
	Header        map[string]any
	Body          map[string]any
}

// fakeAA is an httptest AA network that records requests and replies with
// the configured body per path.
type fakeAA struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
	replies  map[string]fakeReply
}

type fakeReply struct {
	status int
	body   any
}

func newFakeAA(t *testing.T) *fakeAA {
	t.Helper()
	f := &fakeAA{
		t: t,
		replies: map[string]fakeReply{
			pathLogin:             {status: http.StatusOK, body: map[string]any{"token": "tok-123"}},
			pathConsentRequest:    {status: http.StatusOK, body: map[string]any{}},
			pathEncryptLspConsent: {status: http.StatusOK, body: map[string]any{}},
		},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAA) reply(path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[path] = fakeReply{status: status, body: body}
}

func (f *fakeAA) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var env struct {
		Header map[string]any `json:"header"`
		Body   map[string]any `json:"body"`
	}
	_ = json.Unmarshal(raw, &env)

	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Header:        env.Header,
		Body:          env.Body,
	})
	reply, ok := f.replies[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	json.NewEncoder(w).Encode(map[string]any{
		"header": map[string]any{"rid": "110000000000000", "ts": "2026-01-01T00:00:00.000Z", "channelId": "finsense"},
		"body":   reply.body,
	})
}

func (f *fakeAA) calls(path string) []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []capturedRequest
	for _, r := range f.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeAA) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// memStore is an in-memory SessionStore. When err is set every call fails.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
	gets int
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.data[key]
	return ok, nil
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

var errStoreDown = errors.New("connection refused")

func testFinvuConfig(baseURL string) *config.FinvuConfig {
	return &config.FinvuConfig{
		BaseURL:            baseURL,
		UserID:             "channel@fiu",
		Password:           "secret",
		Timeout:            5 * time.Second,
		DefaultTemplate:    "FINVUDEMO_PERIODIC",
		LSPID:              "loanseva",
		RedirectURL:        "https://sdkredirect.finvu.in/",
		ReturnURL:          "http://localhost:8000/buyer/post-aa-consent",
		AAID:               "cookiejar-aa@finvu.in",
		ConsentDescription: "Gold Loan Account Aggregator Consent",
	}
}

type testDeps struct {
	aa       *fakeAA
	store    *memStore
	metrics  *metrics.Registry
	client   *AAClient
	auth     *Authenticator
	sessions *SessionResolver
	consent  *ConsentService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	aa := newFakeAA(t)
	store := newMemStore()
	reg := metrics.New()
	log := logger.Discard()
	cfg := testFinvuConfig(aa.server.URL)

	client := NewAAClient(cfg.BaseURL, cfg.Timeout, NewEnvelopeBuilder(), reg, log)
	auth := NewAuthenticator(client, Credentials{UserID: cfg.UserID, Password: cfg.Password}, log)
	sessions := NewSessionResolver(store, reg, log)

	return &testDeps{
		aa:       aa,
		store:    store,
		metrics:  reg,
		client:   client,
		auth:     auth,
		sessions: sessions,
		consent:  NewConsentService(client, auth, sessions, cfg, log),
	}
}

func (d *testDeps) putSession(t *testing.T, key, raw string) {
	t.Helper()
	require.NoError(t, d.store.Set(context.Background(), key, raw, 0))
}
