package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/dialogue"
)

func TestTurnMonitor(t *testing.T) {
	m := New()

	m.TopicOverride("Education")
	m.AfterEmbedding(20*time.Millisecond, nil)
	m.AfterRetrieval(&core.FAQEntry{Service: "Education"}, 0.4, nil)
	m.AfterRetrieval(nil, 0, nil)
	m.Finish(core.TurnResult{Topic: "Education"}, dialogue.OutcomeClarify)
	m.Finish(core.TurnResult{Topic: core.UnknownTopic}, dialogue.OutcomeGeneric)
	m.Finish(core.TurnResult{Topic: "Education"}, dialogue.OutcomeClarify)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turns.WithLabelValues("clarify", "Education")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turns.WithLabelValues("generic", core.UnknownTopic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.topicOverrides.WithLabelValues("Education")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.similarity))
}

func TestProviderAttemptsAndIndexGauge(t *testing.T) {
	m := New()

	m.ObserveProviderAttempt("transient")
	m.ObserveProviderAttempt("transient")
	m.ObserveProviderAttempt("success")
	m.SetIndexEntries(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.providerAttempts.WithLabelValues("transient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerAttempts.WithLabelValues("success")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.indexEntries))
}

func TestHandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/health", "GET", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "civicfaq_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
