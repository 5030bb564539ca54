package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandevgo/lumibot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrchestrator struct {
	reply core.Reply
	turns core.Transcript
	err   error
}

func (f *fakeOrchestrator) Generate(ctx context.Context, sessionID, input, model string) (core.Reply, error) {
	if f.err != nil {
		return core.Reply{}, f.err
	}
	return f.reply, nil
}

func (f *fakeOrchestrator) DumpSession(ctx context.Context, sessionID string) (core.Transcript, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return f.turns, f.err
}

type fakeGenerator struct {
	err error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (io.ReadCloser, error) {
	return nil, f.err
}

func (f *fakeGenerator) Models(ctx context.Context) ([]core.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []core.Model{{ID: "llama3.2", Name: "llama3.2"}}, nil
}

func newTestServer(t *testing.T, relay Orchestrator, gen core.Generator) *httptest.Server {
	t.Helper()
	srv := NewServer(":0", NewHandler(relay, gen, "llama3.2"))
	ts := httptest.NewServer(srv.httpSrv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHome(t *testing.T) {
	ts := newTestServer(t, &fakeOrchestrator{}, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "API LumiBot fonctionne !", string(body))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeOrchestrator{}, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, true, payload["backend_available"])
	assert.Equal(t, "llama3.2", payload["model"])
}

func TestHealthBackendDown(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w: refused", core.ErrBackendUnavailable)}
	ts := newTestServer(t, &fakeOrchestrator{}, gen)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, false, payload["backend_available"])
}

func TestGenerateSuccess(t *testing.T) {
	relay := &fakeOrchestrator{reply: core.Reply{
		Model:   "llama3.2",
		Message: "c'est fait",
		Command: core.Command{"nom": "lumiere salon", "action": "on"},
	}}
	ts := newTestServer(t, relay, &fakeGenerator{})

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"session_id":"s1","prompt":"allume le salon"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply core.Reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.Equal(t, "c'est fait", reply.Message)
	assert.Equal(t, core.Command{"nom": "lumiere salon", "action": "on"}, reply.Command)
}

func TestGenerateValidation(t *testing.T) {
	ts := newTestServer(t, &fakeOrchestrator{}, &fakeGenerator{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{broken`},
		{"missing session_id", `{"prompt":"hello"}`},
		{"missing prompt", `{"session_id":"s1"}`},
		{"blank session_id", `{"session_id":"  ","prompt":"hello"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/generate", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"backend down", fmt.Errorf("%w: refused", core.ErrBackendUnavailable), http.StatusBadGateway},
		{"storage down", fmt.Errorf("%w: db gone", core.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &fakeOrchestrator{err: tt.err}, &fakeGenerator{})

			resp, err := http.Post(ts.URL+"/generate", "application/json",
				strings.NewReader(`{"session_id":"s1","prompt":"hello"}`))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestDumpSession(t *testing.T) {
	relay := &fakeOrchestrator{turns: core.Transcript{
		{Timestamp: "2026-08-30T10:00:00Z", Author: core.AuthorSystem, Content: "instructions"},
		{Timestamp: "2026-08-30T10:00:05Z", Author: core.AuthorUser, Content: "allume"},
	}}
	ts := newTestServer(t, relay, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/session/s1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		SessionID string      `json:"session_id"`
		Turns     []core.Turn `json:"turns"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "s1", payload.SessionID)
	require.Len(t, payload.Turns, 2)
	assert.Equal(t, core.AuthorUser, payload.Turns[1].Author)
}

func TestDumpSessionEmptyIsArrayNotNull(t *testing.T) {
	ts := newTestServer(t, &fakeOrchestrator{}, &fakeGenerator{})

	resp, err := http.Get(ts.URL + "/session/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"turns":[]`)
}
