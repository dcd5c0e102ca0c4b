package gp2ffb

import (
	"context"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"io"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "github.com/jd3nn1s/gp2ffb"

// to allow testing
var meterProvider = func() metric.MeterProvider {
	return otel.GetMeterProvider()
}

// NewMeterProvider exports the loop counters as JSON to w every interval and
// once more on Shutdown.
func NewMeterProvider(w io.Writer, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create metrics exporter")
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), nil
}

// metrics come from the global meter provider and stay no-ops unless one is
// registered, see NewMeterProvider.
type metrics struct {
	ticks       metric.Int64Counter
	sent        metric.Int64Counter
	suppressed  metric.Int64Counter
	transitions metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := meterProvider().Meter(instrumentationName)
	ret := &metrics{}

	var err error
	ret.ticks, err = m.Int64Counter("ffb.ticks",
		metric.WithDescription("Control loop ticks with telemetry"))
	if err != nil {
		return nil, errors.Wrap(err, "creating ticks counter")
	}
	ret.sent, err = m.Int64Counter("ffb.updates.sent",
		metric.WithDescription("Force updates sent to the actuator"))
	if err != nil {
		return nil, errors.Wrap(err, "creating sent counter")
	}
	ret.suppressed, err = m.Int64Counter("ffb.updates.suppressed",
		metric.WithDescription("Force updates held back by the rate limiter"))
	if err != nil {
		return nil, errors.Wrap(err, "creating suppressed counter")
	}
	ret.transitions, err = m.Int64Counter("ffb.pause.transitions",
		metric.WithDescription("Changes between active and paused"))
	if err != nil {
		return nil, errors.Wrap(err, "creating transitions counter")
	}
	return ret, nil
}

func (m *metrics) update(sent bool) {
	if sent {
		m.sent.Add(context.Background(), 1)
	} else {
		m.suppressed.Add(context.Background(), 1)
	}
}

func (m *metrics) transition(paused bool) {
	m.transitions.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("paused", paused)))
}
