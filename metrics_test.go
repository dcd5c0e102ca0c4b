package gp2ffb

import (
	"bytes"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func stubMeterProvider(mp metric.MeterProvider) func() {
	origMeterProvider := meterProvider
	meterProvider = func() metric.MeterProvider {
		return mp
	}
	return func() {
		meterProvider = origMeterProvider
	}
}

// counterValues maps counter name, plus the paused attribute where present,
// to its cumulative value.
func counterValues(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	ret := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, m.Name)
			for _, dp := range sum.DataPoints {
				name := m.Name
				if v, ok := dp.Attributes.Value(attribute.Key("paused")); ok {
					name += "." + v.Emit()
				}
				ret[name] += dp.Value
			}
		}
	}
	return ret
}

func TestMetricsCountUpdates(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	defer stubMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))()

	cfg := testConfig()
	cfg.Limit = true
	a := &actuatorStub{}
	f := newTestFFB(t, cfg, &sourceStub{}, a)

	for i := 0; i < 41; i++ {
		require.NoError(t, f.Tick(active(40000, 20000)))
	}
	paused := active(40000, 20000)
	paused.Paused = true
	require.NoError(t, f.Tick(paused))
	require.NoError(t, f.Tick(paused))
	require.NoError(t, f.Tick(active(40000, 20000)))

	sent := int64(len(a.Forces()) - 1)
	require.Greater(t, sent, int64(0))

	values := counterValues(t, reader)
	assert.Equal(t, int64(44), values["ffb.ticks"])
	assert.Equal(t, sent, values["ffb.updates.sent"])
	assert.Equal(t, 40-sent, values["ffb.updates.suppressed"], "the priming tick is not an update")
	assert.Equal(t, int64(1), values["ffb.pause.transitions.true"])
	assert.Equal(t, int64(1), values["ffb.pause.transitions.false"])
}

func TestNewMeterProvider(t *testing.T) {
	buf := &bytes.Buffer{}
	mp, err := NewMeterProvider(buf, time.Hour)
	require.NoError(t, err)
	defer stubMeterProvider(mp)()

	m, err := newMetrics()
	require.NoError(t, err)
	m.update(true)

	assert.Empty(t, buf.String(), "nothing before the first interval")
	require.NoError(t, mp.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "ffb.updates.sent")
}
