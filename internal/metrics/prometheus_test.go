package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewRecorder(reg)

	r.FocusChange()
	r.FocusChange()
	r.RecordWritten(90 * time.Second)
	r.IdleTransition(true)
	r.IdleTransition(false)
	r.StoreError()
	r.Reconnect()

	assert.Equal(t, float64(2), testutil.ToFloat64(r.focusChanges))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.records))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.storeErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.reconnects))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.idleTransitions.WithLabelValues("idle")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.idleTransitions.WithLabelValues("active")))
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder(prom.NewRegistry())
	require.NotNil(t, r.Handler())
}
