package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kakaka820/Titanic/pkg/analysis"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	assert.Same(t, m, NewMetrics())

	m.ObserveMetric(analysis.Metric{Model: "SVM", Accuracy: 0.8, CVScore: 0.75})
	assert.Equal(t, 0.8, testutil.ToFloat64(m.ModelAccuracy.WithLabelValues("SVM")))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.ModelCVScore.WithLabelValues("SVM")))

	before := testutil.ToFloat64(m.AnalysisRuns)
	m.ObserveRun(2 * time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(m.AnalysisRuns))

	m.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")))
}
