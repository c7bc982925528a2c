package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/towerbench"
	httpadapter "github.com/aretw0/towerbench/pkg/adapters/http"
	"github.com/aretw0/towerbench/pkg/adapters/memory"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng, err := towerbench.New()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "towerbench_test_total", Help: "test"}))

	srv := httpadapter.NewServer(eng, session.NewManager(memory.NewStore()),
		httpadapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		httpadapter.WithIDGenerator(func() string { return "generated" }),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestServer_EpisodeLifecycle(t *testing.T) {
	ts := newServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/episodes", map[string]any{"size": 2, "id": "ep1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var view httpadapter.SessionView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "ep1", view.ID)
	assert.Equal(t, domain.StatusRunning, view.Status)
	assert.Equal(t, 6, view.TurnLimit)
	assert.Contains(t, view.Rendered, "Peg 0")

	resp, body = do(t, http.MethodGet, ts.URL+"/episodes/ep1/window", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var win httpadapter.WindowResponse
	require.NoError(t, json.Unmarshal(body, &win))
	require.Len(t, win.Messages, 2)
	assert.Equal(t, domain.RoleSystem, win.Messages[0].Role)

	resp, body = do(t, http.MethodPost, ts.URL+"/episodes/ep1/turns", map[string]any{"response": "I move [[2, 0, 1]]"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var turn httpadapter.TurnResponse
	require.NoError(t, json.Unmarshal(body, &turn))
	assert.Equal(t, domain.TurnInvalid, turn.Turn.Result)
	assert.Equal(t, 1, turn.Session.InvalidTurns)

	resp, body = do(t, http.MethodPost, ts.URL+"/episodes/ep1/turns", `{"moves": [[1,0,1],[2,0,2],[1,1,2]]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &turn))
	assert.Equal(t, domain.StatusSolved, turn.Session.Status)

	resp, body = do(t, http.MethodGet, ts.URL+"/episodes/ep1/result", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result domain.Result
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Solved)
	assert.Equal(t, 2, result.TurnsTaken)
	assert.Equal(t, 1.0, result.Efficiency)

	resp, body = do(t, http.MethodPost, ts.URL+"/episodes/ep1/turns", map[string]any{"response": "[]"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(body))

	resp, _ = do(t, http.MethodDelete, ts.URL+"/episodes/ep1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, ts.URL+"/episodes/ep1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Errors(t *testing.T) {
	ts := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"bad json", http.MethodPost, "/episodes", "{", http.StatusBadRequest},
		{"bad size", http.MethodPost, "/episodes", map[string]any{"size": 0}, http.StatusBadRequest},
		{"unknown episode", http.MethodGet, "/episodes/nope", nil, http.StatusNotFound},
		{"unknown window", http.MethodGet, "/episodes/nope/window", nil, http.StatusNotFound},
		{"unknown turn", http.MethodPost, "/episodes/nope/turns", map[string]any{"response": "[]"}, http.StatusNotFound},
		{"empty turn", http.MethodPost, "/episodes/nope/turns", map[string]any{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode, string(body))
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestServer_CreateConflictAndList(t *testing.T) {
	ts := newServer(t)

	resp, _ := do(t, http.MethodPost, ts.URL+"/episodes", map[string]any{"size": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/episodes", map[string]any{"size": 3})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "generated ID is reused")

	resp, body := do(t, http.MethodGet, ts.URL+"/episodes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"episodes": ["generated"]}`, string(body))
}

func TestServer_HealthInfoMetrics(t *testing.T) {
	ts := newServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status": "ok"}`, string(body))

	_, body = do(t, http.MethodGet, ts.URL+"/info", nil)
	assert.Contains(t, string(body), towerbench.Version)

	_, body = do(t, http.MethodGet, ts.URL+"/metrics", nil)
	assert.Contains(t, string(body), "towerbench_test_total")
}

func TestServer_SubscribeEvents(t *testing.T) {
	ts := newServer(t)
	resp, _ := do(t, http.MethodPost, ts.URL+"/episodes", map[string]any{"size": 3, "id": "live"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/episodes/live/events", nil)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	lines := bufio.NewScanner(stream.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	// The ping has been flushed, so the subscription is registered.
	resp, _ = do(t, http.MethodPost, ts.URL+"/episodes/live/turns", map[string]any{"response": "[[1, 0, 2]]"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var diff domain.SessionDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	assert.Equal(t, "live", diff.SessionID)
	assert.Equal(t, 1, diff.Turn)
	assert.NotNil(t, diff.State)
	assert.Nil(t, diff.Status)
	require.Len(t, diff.Appended, 1)
	assert.Equal(t, domain.TurnApplied, diff.Appended[0].Result)
}

func TestStreamManager(t *testing.T) {
	sm := httpadapter.NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Broadcast("s", "hello")
	assert.Equal(t, "hello", <-ch)

	cancel()
	cancel()
	assert.Zero(t, sm.Subscribers("s"))
	_, open := <-ch
	assert.False(t, open)
}
