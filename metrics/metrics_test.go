package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/graphwalk/loom/metrics"
)

func TestObserveTraversalRecordsIntoHistogram(t *testing.T) {
	before := testutil.CollectAndCount(metrics.TraversalDuration)
	metrics.ObserveTraversal(50 * time.Millisecond)
	after := testutil.CollectAndCount(metrics.TraversalDuration)
	assert.Equal(t, before, after, "observing records into the existing histogram; the number of collected metrics stays the same")
}

func TestStepAppliedCounterIncrementsPerLabel(t *testing.T) {
	metrics.StepApplied.WithLabelValues("unit-test-step").Inc()
	metrics.StepApplied.WithLabelValues("unit-test-step").Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.StepApplied.WithLabelValues("unit-test-step")))
}

func TestGraphGaugesAreSettable(t *testing.T) {
	metrics.GraphNodes.Set(5)
	metrics.GraphEdges.Set(9)
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.GraphNodes))
	assert.Equal(t, float64(9), testutil.ToFloat64(metrics.GraphEdges))
}
