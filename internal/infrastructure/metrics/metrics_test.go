package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEvent(t *testing.T) {
	m := New()

	m.ObserveEvent("create", "ok")
	m.ObserveEvent("create", "ok")
	m.ObserveEvent("delete", "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventOps.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventOps.WithLabelValues("delete", "not_found")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveEvent("create", "ok")
		m.ObserveCatalog("recipe", true)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveCatalog("categories", false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `mealcal_catalog_lookups_total{cache="miss",kind="categories"} 1`)
}
