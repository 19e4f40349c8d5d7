package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plainbot/internal/httpapi"
	"github.com/edgard/plainbot/internal/metrics"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func newTestServer(t *testing.T, pinger httpapi.Pinger, m *metrics.Metrics) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpapi.NewServer(":0", log, pinger, m).Handler()
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp httpapi.TextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Text
}

func TestTextEndpoints(t *testing.T) {
	m := metrics.New()
	h := newTestServer(t, stubPinger{}, m)

	tests := []struct {
		name string
		path string
		body httpapi.TextRequest
		want string
	}{
		{name: "convert", path: "/v1/convert", body: httpapi.TextRequest{Text: "# Title\n**bold**"}, want: "Title\nbold"},
		{name: "convert empty", path: "/v1/convert", body: httpapi.TextRequest{}, want: ""},
		{name: "format", path: "/v1/format", body: httpapi.TextRequest{Text: "a\nb"}, want: "a\n\nb"},
		{name: "list keeps numbers", path: "/v1/list", body: httpapi.TextRequest{Text: "3. x\n5. y"}, want: "3. x\n5. y"},
		{name: "list renumbers", path: "/v1/list", body: httpapi.TextRequest{Text: "3. x\n5. y", Renumber: true}, want: "1. x\n2. y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.path, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, decodeText(t, rec))
		})
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.NormalizationsTotal.WithLabelValues("plain")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.NormalizationsTotal.WithLabelValues("list")), 0)
}

func TestSplitEndpoint(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := post(t, h, "/v1/split", httpapi.SplitRequest{Text: "aaaa bbbb cccc", Limit: 9})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpapi.SplitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, resp.Chunks)

	rec = post(t, h, "/v1/split", httpapi.SplitRequest{Text: "  "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chunks":[]}`, rec.Body.String())

	rec = post(t, h, "/v1/split", `{"text":"x","limit":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	h := newTestServer(t, nil, nil)

	for _, path := range []string{"/v1/convert", "/v1/format", "/v1/list", "/v1/split"} {
		rec := post(t, h, path, `{"text": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "error", path)
	}
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		pinger httpapi.Pinger
		want   int
	}{
		{name: "no store", pinger: nil, want: http.StatusOK},
		{name: "store up", pinger: stubPinger{}, want: http.StatusOK},
		{name: "store down", pinger: stubPinger{err: errors.New("disk gone")}, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestServer(t, tt.pinger, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ObserveUpdate("message")

	rec := httptest.NewRecorder()
	newTestServer(t, nil, m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "plainbot_updates_total")

	rec = httptest.NewRecorder()
	newTestServer(t, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httpapi.NewServer("127.0.0.1:0", log, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
