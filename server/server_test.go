package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/civicfaq/chatlog"
	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTurns struct {
	mu       sync.Mutex
	sessions []string
	messages []string
	result   core.TurnResult
	err      error
}

func (f *fakeTurns) HandleTurn(_ context.Context, sessionID, message string) (core.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	f.messages = append(f.messages, message)
	return f.result, f.err
}

type fakeLog struct {
	mu       sync.Mutex
	chats    []chatlog.ChatEntry
	feedback []chatlog.Feedback
}

func (f *fakeLog) LogChat(_ context.Context, e chatlog.ChatEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, e)
}

func (f *fakeLog) LogFeedback(_ context.Context, fb chatlog.Feedback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, fb)
}

type fakeHealth bool

func (h fakeHealth) Health(context.Context) bool { return bool(h) }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestNew_RequiresTurnHandler(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrTurnHandlerRequired)
}

func TestChat(t *testing.T) {
	turns := &fakeTurns{result: core.TurnResult{
		Reply:        "Visit the portal...",
		Topic:        "Council Tax",
		NextStepsURL: "https://example.org/pay",
		Score:        0.91,
	}}
	logs := &fakeLog{}
	s, err := New(turns, WithChatLogger(logs))
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodPost, "/api/chat", `{"sessionId":" abc ","message":"  how do I pay my council tax bill "}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Visit the portal...", body["reply"])
	assert.Equal(t, "Council Tax", body["service"])
	assert.Equal(t, "https://example.org/pay", body["nextStepsUrl"])

	assert.Equal(t, []string{"abc"}, turns.sessions)
	assert.Equal(t, []string{"how do I pay my council tax bill"}, turns.messages)

	require.Len(t, logs.chats, 1)
	assert.Equal(t, "Council Tax", logs.chats[0].MatchedService)
	assert.InDelta(t, 0.91, float64(logs.chats[0].Score), 1e-6)
}

func TestChat_DefaultSession(t *testing.T) {
	turns := &fakeTurns{result: core.TurnResult{Topic: core.UnknownTopic}}
	s, err := New(turns)
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodPost, "/api/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{DefaultSessionID}, turns.sessions)
}

func TestChat_EmptyMessage(t *testing.T) {
	for _, body := range []string{`{"message":"   "}`, `{}`, `not json`, ""} {
		t.Run(body, func(t *testing.T) {
			turns := &fakeTurns{}
			logs := &fakeLog{}
			s, err := New(turns, WithChatLogger(logs))
			require.NoError(t, err)

			w := do(t, s.Handler(), http.MethodPost, "/api/chat", body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode(t, w)
			assert.Equal(t, "Please type a question.", resp["reply"])
			assert.Equal(t, core.UnknownTopic, resp["service"])
			assert.Equal(t, "", resp["nextStepsUrl"])
			assert.Empty(t, turns.messages)
			assert.Empty(t, logs.chats)
		})
	}
}

func TestChat_TurnError(t *testing.T) {
	turns := &fakeTurns{err: context.Canceled}
	logs := &fakeLog{}
	s, err := New(turns, WithChatLogger(logs))
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodPost, "/api/chat", `{"message":"council tax"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, core.UnknownTopic, decode(t, w)["service"])
	assert.Empty(t, logs.chats)
}

func TestFeedback(t *testing.T) {
	logs := &fakeLog{}
	s, err := New(&fakeTurns{}, WithChatLogger(logs))
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodPost, "/api/feedback",
		`{"service":"Education","helpful":"Yes","comment":"thanks","sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved", decode(t, w)["status"])

	require.Len(t, logs.feedback, 1)
	assert.Equal(t, chatlog.Feedback{Service: "Education", Helpful: "Yes", Comment: "thanks", SessionID: "s1"}, logs.feedback[0])

	w = do(t, s.Handler(), http.MethodPost, "/api/feedback", `{"helpful": [}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, logs.feedback, 1)
}

func TestHealth(t *testing.T) {
	s, err := New(&fakeTurns{}, WithHealthChecker(fakeHealth(true)), WithIndexSizer(func() int { return 12 }))
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["provider"])
	assert.Equal(t, 12.0, body["indexEntries"])

	s, err = New(&fakeTurns{}, WithHealthChecker(fakeHealth(false)))
	require.NoError(t, err)
	body = decode(t, do(t, s.Handler(), http.MethodGet, "/api/health", ""))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, false, body["provider"])
}

func TestMetricsRoute(t *testing.T) {
	s, err := New(&fakeTurns{}, WithMetrics(metrics.New()))
	require.NoError(t, err)

	do(t, s.Handler(), http.MethodGet, "/api/health", "")
	w := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `civicfaq_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestStaticFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>Council help</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log(1)"), 0o644))

	s, err := New(&fakeTurns{}, WithWebRoot(root))
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Council help")

	w = do(t, s.Handler(), http.MethodGet, "/app.js", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "console.log"))

	w = do(t, s.Handler(), http.MethodGet, "/missing.css", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s.Handler(), http.MethodDelete, "/app.js", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s, err := New(&fakeTurns{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.ListenAndServe(ctx, "127.0.0.1:0"))
}
