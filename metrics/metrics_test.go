package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordSuccess("modular", 250*time.Millisecond, RunStats{Modules: 3, Shapes: 12, Properties: 40})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.RunsTotal.WithLabelValues("modular", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.RunsTotal.WithLabelValues("modular", "failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Modules))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.Shapes))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.Properties))
	assert.Greater(t, testutil.ToFloat64(c.LastSuccess), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.RunDuration))
}

func TestCollector_RecordFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordFailure("", time.Second)
	c.RecordFailure("single", time.Second)
	c.RecordPublishError()
	c.RecordWatchEvent()
	c.RecordWatchEvent()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.RunsTotal.WithLabelValues("unknown", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RunsTotal.WithLabelValues("single", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PublishErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.WatchEvents))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.LastSuccess))
}

func TestCollector_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.RecordSuccess("single", time.Millisecond, RunStats{Modules: 1, Shapes: 1})

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"semshape_runs_total", "semshape_run_duration_seconds", "semshape_shapes", "semshape_modules"} {
		assert.True(t, names[want], "expected %s to be registered", want)
	}

	// Registering twice on the same registry panics.
	assert.Panics(t, func() { New(reg) })
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordSuccess("single", time.Second, RunStats{})
		c.RecordFailure("single", time.Second)
		c.RecordPublishError()
		c.RecordWatchEvent()
	})
}
