package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.RecordPlanGenerated("proportional", 0)
	m.RecordPlanGenerated("round_robin", 12.5)
	m.ObserveExport("csv", "direct", 5*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.PlansGenerated)
	assert.Equal(t, uint64(1), snap.InsufficientPlans)
	assert.Equal(t, uint64(1), snap.ExportsRendered)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 1e-9)
}

func TestMetricsServiceExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordPlanGenerated("proportional", 4)
	m.RecordExportJob("COMPLETED")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `study_plans_generated_total{policy="proportional"} 1`)
	assert.Contains(t, body, `export_jobs_total{status="COMPLETED"} 1`)
	assert.Contains(t, body, "study_plan_shortfall_hours")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordPlanGenerated("proportional", 1)
	m.ObserveExport("pdf", "job", time.Second)
	m.RecordExportJob("FAILED")
	assert.Zero(t, m.Snapshot().PlansGenerated)
}
