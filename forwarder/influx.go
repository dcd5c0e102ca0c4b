package forwarder

import (
	"context"
	"github.com/jd3nn1s/gp2ffb"
	"github.com/jd3nn1s/gp2ffb/config"
	"github.com/jd3nn1s/gp2ffb/telemetry"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const influxMeasurement = "ffb"

type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
	Errors() <-chan error
}

// InfluxForwarder records every snapshot as a point so a session's force
// trace can be graphed afterwards. Writes are batched by the client.
type InfluxForwarder struct {
	client influxdb2.Client
	writer pointWriter
}

func NewInfluxForwarder(cfg config.InfluxConfig) (*InfluxForwarder, error) {
	if cfg.URL == "" || cfg.Bucket == "" {
		return nil, errors.New("influx url and bucket are required")
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(600).
			SetFlushInterval(1000))
	return &InfluxForwarder{
		client: client,
		writer: client.WriteAPI(cfg.Org, cfg.Bucket),
	}, nil
}

func (fwd *InfluxForwarder) Forward(cur *gp2ffb.Snapshot, prev *gp2ffb.Snapshot) error {
	fwd.writer.WritePoint(snapshotPoint(cur))
	return nil
}

// Start reports write errors until ctx is done, then flushes what is left and
// closes the client. Callers wait for it to return before exiting.
func (fwd *InfluxForwarder) Start(ctx context.Context) error {
	errs := fwd.writer.Errors()
	for {
		select {
		case err := <-errs:
			log.WithField("err", err).Warn("unable to write to influx")
		case <-ctx.Done():
			fwd.writer.Flush()
			if fwd.client != nil {
				fwd.client.Close()
			}
			return ctx.Err()
		}
	}
}

func snapshotPoint(s *gp2ffb.Snapshot) *write.Point {
	tags := map[string]string{
		"device": strconv.Itoa(int(s.DeviceID)),
	}
	fields := map[string]interface{}{
		"tick":   int64(s.Tick),
		"paused": s.Paused,
		"speed":  s.SpeedKmh,
	}
	if !s.Paused {
		fields["lateral_g"] = s.Estimate.LateralG
		fields["direction"] = s.Estimate.Direction
		fields["lat_fl"] = s.Estimate.LatFL
		fields["lat_fr"] = s.Estimate.LatFR
		fields["long_fl"] = s.Estimate.LongFL
		fields["long_fr"] = s.Estimate.LongFR
		fields["front_load"] = s.FrontLoad
		fields["force"] = s.Force
		fields["magnitude"] = s.Magnitude
		fields["sent"] = s.Sent
		fields["vibration"] = s.Vibration
	}
	for w := telemetry.RearLeft; w <= telemetry.FrontRight; w++ {
		fields["surface_"+w.String()] = s.Surface[w]
	}
	return influxdb2.NewPoint(influxMeasurement, tags, fields, s.Time)
}
