package config

import (
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/jd3nn1s/gp2ffb/conditioner"
	"github.com/jd3nn1s/gp2ffb/shaper"
	"github.com/pkg/errors"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

const DefaultFileName = "ffb.toml"

const (
	DeviceCAN = "can"
	DeviceLog = "log"
)

type CANConfig struct {
	Interface string `env:"GP2FFB_CAN_INTERFACE"`
}

type UDPConfig struct {
	Enabled bool   `env:"GP2FFB_UDP_ENABLED"`
	Server  string `env:"GP2FFB_UDP_SERVER"`
	Port    int    `env:"GP2FFB_UDP_PORT"`
}

type InfluxConfig struct {
	Enabled bool   `env:"GP2FFB_INFLUX_ENABLED"`
	URL     string `env:"GP2FFB_INFLUX_URL"`
	Token   string `env:"GP2FFB_INFLUX_TOKEN"`
	Org     string `env:"GP2FFB_INFLUX_ORG"`
	Bucket  string `env:"GP2FFB_INFLUX_BUCKET"`
}

// MetricsConfig writes the loop counters to File every Interval.
type MetricsConfig struct {
	Enabled  bool          `env:"GP2FFB_METRICS_ENABLED"`
	File     string        `env:"GP2FFB_METRICS_FILE"`
	Interval time.Duration `env:"GP2FFB_METRICS_INTERVAL"`
}

// Config is read from ffb.toml, environment variables win over the file.
// Percentages are 0 to 100.
type Config struct {
	Device string `env:"GP2FFB_DEVICE"`
	Game   string `env:"GP2FFB_GAME"`

	Force    float64 `env:"GP2FFB_FORCE"`
	Deadzone float64 `env:"GP2FFB_DEADZONE"`
	Invert   bool    `env:"GP2FFB_INVERT"`
	Limit    bool    `env:"GP2FFB_LIMIT"`

	Constant       bool    `env:"GP2FFB_CONSTANT"`
	ConstantScale  float64 `env:"GP2FFB_CONSTANT_SCALE"`
	BrakingScale   float64 `env:"GP2FFB_BRAKING_SCALE"`
	Vibration      bool    `env:"GP2FFB_VIBRATION"`
	VibrationScale float64 `env:"GP2FFB_VIBRATION_SCALE"`
	Weight         bool    `env:"GP2FFB_WEIGHT"`
	WeightScale    float64 `env:"GP2FFB_WEIGHT_SCALE"`

	CAN    CANConfig
	UDP    UDPConfig
	Influx  InfluxConfig
	Metrics MetricsConfig
}

func Default() Config {
	return Config{
		Game:           "x86GP2",
		Force:          100,
		Constant:       true,
		ConstantScale:  100,
		VibrationScale: 50,
		CAN: CANConfig{
			Interface: "can0",
		},
		UDP: UDPConfig{
			Server: "127.0.0.1",
			Port:   20777,
		},
		Metrics: MetricsConfig{
			File:     "metrics.json",
			Interval: 10 * time.Second,
		},
	}
}

func Load(fileName string) (*Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return LoadFromReader(file)
}

func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to load ffb configuration")
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to apply environment overrides")
	}
	if strings.TrimSpace(cfg.Device) == "" {
		return nil, errors.New("no device configured")
	}
	return &cfg, nil
}

// fraction clamps a percentage and converts it to [0, 1].
func fraction(pct float64) float64 {
	return math.Max(0, math.Min(1, pct/100))
}

func (c *Config) ShaperScales() shaper.Scales {
	return shaper.Scales{
		Master:   fraction(c.Force),
		Deadzone: fraction(c.Deadzone),
		Constant: c.constantScale(),
		Braking:  c.BrakingScale,
		Weight:   c.weightScale(),
	}
}

func (c *Config) ConditionerScales() conditioner.Scales {
	return conditioner.Scales{
		Master:   fraction(c.Force),
		Constant: c.constantScale(),
	}
}

// VibrationFraction is zero when kerb vibration is off.
func (c *Config) VibrationFraction() float64 {
	if !c.Vibration {
		return 0
	}
	return fraction(c.VibrationScale)
}

func (c *Config) constantScale() float64 {
	if !c.Constant {
		return 0
	}
	return fraction(c.ConstantScale)
}

func (c *Config) weightScale() float64 {
	if !c.Weight {
		return 0
	}
	return fraction(c.WeightScale)
}
