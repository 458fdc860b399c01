package bind

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/pulse/pkg/microtask"
	"github.com/vango-dev/pulse/pkg/reactive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func zapNop() *zap.Logger {
	return zap.NewNop()
}

type fixture struct {
	loop    *microtask.Loop
	server  *Server
	http    *httptest.Server
	counter *Counter
}

func newFixture(t *testing.T, opts ...reactive.Option) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := microtask.NewLoop(microtask.WithLogger(zaptest.NewLogger(t)))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	reg := NewRegistry()
	opts = append([]reactive.Option{reactive.WithScheduler(loop)}, opts...)

	var (
		counter    *Counter
		counterErr error
	)
	err := loop.Do(ctx, func() {
		counter, counterErr = NewCounter(reg, 2, opts...)
	})
	require.NoError(t, err)
	require.NoError(t, counterErr)

	srv := NewServer(loop, reg, DefaultServerConfig(), zapNop())
	hs := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		srv.Close()
		hs.Close()
		cancel()
		<-done
	})
	return &fixture{loop: loop, server: srv, http: hs, counter: counter}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// readValues reads n frames and returns them as cell=value.
func readValues(t *testing.T, conn *websocket.Conn, n int) map[string]string {
	t.Helper()
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		f := readFrame(t, conn)
		require.Equal(t, FrameValue, f.Type, "unexpected frame %+v", f)
		out[f.Cell] = string(f.Value)
	}
	return out
}

func TestWebSocketInitialValues(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	assert.Equal(t, map[string]string{"count": "2", "double": "4"}, readValues(t, conn, 2))
	assert.Eventually(t, func() bool { return f.server.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketSetPropagates(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readValues(t, conn, 2)

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameSet, Cell: "count", Value: json.RawMessage("5")}))
	assert.Equal(t, map[string]string{"count": "5", "double": "10"}, readValues(t, conn, 2))
}

func TestWebSocketBroadcastsToOtherClients(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t)
	b := f.dial(t)
	readValues(t, a, 2)
	readValues(t, b, 2)

	require.NoError(t, a.WriteJSON(Frame{Type: FrameSet, Cell: "count", Value: json.RawMessage("7")}))
	assert.Equal(t, map[string]string{"count": "7", "double": "14"}, readValues(t, b, 2))
}

func TestWebSocketBatchedUpdates(t *testing.T) {
	f := newFixture(t, reactive.AsyncUpdates())
	conn := f.dial(t)
	readValues(t, conn, 2)

	err := f.loop.Do(context.Background(), func() {
		f.counter.Count.Set(3)
		f.counter.Count.Set(4)
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"count": "4", "double": "8"}, readValues(t, conn, 2))
}

func TestWebSocketAction(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t)
	b := f.dial(t)
	readValues(t, a, 2)
	readValues(t, b, 2)

	require.NoError(t, a.WriteJSON(Frame{Type: FrameAction, Action: "increment"}))
	assert.Equal(t, map[string]string{"count": "3", "double": "6"}, readValues(t, a, 2))
	assert.Equal(t, map[string]string{"count": "3", "double": "6"}, readValues(t, b, 2))
}

func TestWebSocketErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		code  string
	}{
		{"malformed", `{"type":`, "E121"},
		{"unknown cell", `{"type":"set","cell":"nope","value":1}`, "E120"},
		{"read only", `{"type":"set","cell":"double","value":1}`, "E101"},
		{"bad value", `{"type":"set","cell":"count","value":"x"}`, "E121"},
		{"unknown action", `{"type":"action","action":"reset"}`, "E123"},
	}

	f := newFixture(t)
	conn := f.dial(t)
	readValues(t, conn, 2)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)))
			frame := readFrame(t, conn)
			assert.Equal(t, FrameError, frame.Type)
			assert.Equal(t, tt.code, frame.Code)
		})
	}
}

func TestWebSocketDisconnectDisposesListeners(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readValues(t, conn, 2)

	conn.Close()
	assert.Eventually(t, func() bool { return f.server.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	// A set after disconnect must not reach the closed client.
	err := f.loop.Do(context.Background(), func() { f.counter.Count.Set(9) })
	require.NoError(t, err)
}

func TestHTTPRoutes(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"list", http.MethodGet, "/cells", "", http.StatusOK,
			`[{"name":"count","type":"int","readOnly":false,"value":2},{"name":"double","type":"int","readOnly":true,"value":4}]`},
		{"get", http.MethodGet, "/cells/double", "", http.StatusOK,
			`{"name":"double","type":"int","readOnly":true,"value":4}`},
		{"get unknown", http.MethodGet, "/cells/nope", "", http.StatusNotFound, ""},
		{"set", http.MethodPut, "/cells/count", `{"value":6}`, http.StatusOK,
			`{"name":"count","type":"int","readOnly":false,"value":6}`},
		{"set computed", http.MethodPut, "/cells/double", `{"value":1}`, http.StatusConflict, ""},
		{"set bad body", http.MethodPut, "/cells/count", `{`, http.StatusBadRequest, ""},
		{"set bad value", http.MethodPut, "/cells/count", `{"value":true}`, http.StatusBadRequest, ""},
		{"derived updated", http.MethodGet, "/cells/double", "", http.StatusOK,
			`{"name":"double","type":"int","readOnly":true,"value":12}`},
		{"list actions", http.MethodGet, "/actions", "", http.StatusOK, `["increment"]`},
		{"run action", http.MethodPost, "/actions/increment", "", http.StatusOK,
			`[{"name":"count","type":"int","readOnly":false,"value":7},{"name":"double","type":"int","readOnly":true,"value":14}]`},
		{"unknown action", http.MethodPost, "/actions/reset", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, f.http.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body json.RawMessage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestErrorResponseCarriesCode(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.http.URL + "/cells/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Code     string `json:"code"`
		Category string `json:"category"`
		Message  string `json:"message"`
		Detail   string `json:"detail"`
		DocURL   string `json:"docUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "E120", body.Code)
	assert.Equal(t, "protocol", body.Category)
	assert.Equal(t, "Unknown cell", body.Message)
	assert.Contains(t, body.Detail, `"nope"`)
	assert.Contains(t, body.DocURL, "E120")
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		host    string
		want    bool
	}{
		{"no origin", nil, "", "example.com", true},
		{"same origin", nil, "http://example.com", "example.com", true},
		{"cross origin", nil, "http://evil.com", "example.com", false},
		{"allowed", []string{"http://app.com"}, "http://app.com", "example.com", true},
		{"wildcard", []string{"*"}, "http://any.com", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultServerConfig()
			config.AllowedOrigins = tt.allowed
			s := NewServer(nil, NewRegistry(), config, nil)

			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, s.checkOrigin(r))
		})
	}
}
