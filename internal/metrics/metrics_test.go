package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trailhaven/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAndHandler(t *testing.T) {
	reg := InitRegistry()

	ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.True(t, strings.Contains(string(body), "trailhaven_http_requests_total"))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/properties/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := counterValue(HTTPRequests.WithLabelValues("/api/properties/{slug}", "GET", "404"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/properties/hashtag-villa", nil))

	after := counterValue(HTTPRequests.WithLabelValues("/api/properties/{slug}", "GET", "404"))
	assert.Equal(t, before+1, after)
}

func TestCountAuthEvents(t *testing.T) {
	broker := session.NewBroker()
	unsubscribe := CountAuthEvents(broker)
	defer unsubscribe()

	counter := AuthEvents.WithLabelValues(string(session.SignedIn))
	before := counterValue(counter)

	broker.Publish(session.Event{Type: session.SignedIn, UserID: uuid.New()})

	assert.Equal(t, before+1, counterValue(counter))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}
