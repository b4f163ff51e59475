// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// Config holds the entire application configuration. Values come from the
// config file, WARDSIM_* environment variables and CLI flag overrides, in
// increasing order of precedence.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Network    NetworkConfig    `mapstructure:"network" yaml:"network"`
	Policy     PolicyConfig     `mapstructure:"policy" yaml:"policy"`
	Experiment ExperimentConfig `mapstructure:"experiment" yaml:"experiment"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LatencyDistribution selects how transit delay is sampled.
type LatencyDistribution string

const (
	DistUniform LatencyDistribution = "uniform"
	DistNormal  LatencyDistribution = "normal"
)

// NetworkConfig tunes the simulated channel between agents and controller.
type NetworkConfig struct {
	LossProbability float64             `mapstructure:"loss_probability" yaml:"loss_probability"`
	Distribution    LatencyDistribution `mapstructure:"distribution" yaml:"distribution"`
	LatencyMin      time.Duration       `mapstructure:"latency_min" yaml:"latency_min"`
	LatencyMax      time.Duration       `mapstructure:"latency_max" yaml:"latency_max"`
	LatencyMean     time.Duration       `mapstructure:"latency_mean" yaml:"latency_mean"`
	LatencyStddev   time.Duration       `mapstructure:"latency_stddev" yaml:"latency_stddev"`
}

// PolicyConfig tunes the access policy variants.
type PolicyConfig struct {
	// WeakLaxity is the probability that the weak policy accepts a message
	// from a sender that is not in the registry. The default is a fair coin.
	WeakLaxity float64 `mapstructure:"weak_laxity" yaml:"weak_laxity"`
	// SecurityOverhead models the credential and RBAC processing cost. It is
	// added to message latency in secure mode only.
	SecurityOverhead time.Duration `mapstructure:"security_overhead" yaml:"security_overhead"`
}

// ExperimentConfig shapes the traffic of a single run.
type ExperimentConfig struct {
	NumDevices        int    `mapstructure:"num_devices" yaml:"num_devices"`
	MessagesPerDevice int    `mapstructure:"messages_per_device" yaml:"messages_per_device"`
	RogueMessages     int    `mapstructure:"rogue_messages" yaml:"rogue_messages"`
	Seed              int64  `mapstructure:"seed" yaml:"seed"`
	ScenarioFile      string `mapstructure:"scenario_file" yaml:"scenario_file"`
	// PacePerSecond throttles message submission for live replays. Zero or
	// negative disables pacing; outcomes are identical either way.
	PacePerSecond float64 `mapstructure:"pace_per_second" yaml:"pace_per_second"`
}

// OutputConfig controls the per-message results artifact.
type OutputConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "wardsim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Network --
	v.SetDefault("network.loss_probability", 0.05)
	v.SetDefault("network.distribution", "uniform")
	v.SetDefault("network.latency_min", 10*time.Millisecond)
	v.SetDefault("network.latency_max", 100*time.Millisecond)
	v.SetDefault("network.latency_mean", 55*time.Millisecond)
	v.SetDefault("network.latency_stddev", 15*time.Millisecond)

	// -- Policy --
	v.SetDefault("policy.weak_laxity", 0.5)
	v.SetDefault("policy.security_overhead", 5*time.Millisecond)

	// -- Experiment --
	v.SetDefault("experiment.num_devices", 3)
	v.SetDefault("experiment.messages_per_device", 50)
	v.SetDefault("experiment.rogue_messages", 100)
	v.SetDefault("experiment.seed", 1)
	v.SetDefault("experiment.pace_per_second", 0.0)

	// -- Output --
	v.SetDefault("output.path", "")
	v.SetDefault("output.format", "csv")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static; failing to unmarshal them is a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values. A malformed
// configuration is the only true error condition in the simulator and is
// surfaced here, before any traffic is generated.
func (c *Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network configuration invalid: %w", err)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy configuration invalid: %w", err)
	}
	if err := c.Experiment.Validate(); err != nil {
		return fmt.Errorf("experiment configuration invalid: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the channel settings.
func (n *NetworkConfig) Validate() error {
	if n.LossProbability < 0.0 || n.LossProbability > 1.0 {
		return fmt.Errorf("loss_probability must be between 0.0 and 1.0")
	}
	switch n.Distribution {
	case DistUniform, DistNormal:
	default:
		return fmt.Errorf("distribution must be 'uniform' or 'normal', got %q", n.Distribution)
	}
	if n.LatencyMin < 0 {
		return fmt.Errorf("latency_min must be non-negative")
	}
	if n.LatencyMax < n.LatencyMin {
		return fmt.Errorf("latency_max must not be below latency_min")
	}
	if n.Distribution == DistNormal && n.LatencyStddev < 0 {
		return fmt.Errorf("latency_stddev must be non-negative")
	}
	return nil
}

// Validate checks the policy settings.
func (p *PolicyConfig) Validate() error {
	if p.WeakLaxity < 0.0 || p.WeakLaxity > 1.0 {
		return fmt.Errorf("weak_laxity must be between 0.0 and 1.0")
	}
	if p.SecurityOverhead < 0 {
		return fmt.Errorf("security_overhead must be non-negative")
	}
	return nil
}

// Validate checks the traffic shape.
func (e *ExperimentConfig) Validate() error {
	if e.NumDevices <= 0 {
		return fmt.Errorf("num_devices must be a positive integer")
	}
	if e.MessagesPerDevice < 0 {
		return fmt.Errorf("messages_per_device must be non-negative")
	}
	if e.RogueMessages < 0 {
		return fmt.Errorf("rogue_messages must be non-negative")
	}
	return nil
}

// Validate checks the output settings.
func (o *OutputConfig) Validate() error {
	switch o.Format {
	case "csv", "json":
		return nil
	default:
		return fmt.Errorf("output format must be 'csv' or 'json', got %q", o.Format)
	}
}

// DefaultPermissions returns the role/action table used when no scenario
// file overrides it.
func DefaultPermissions() map[schemas.Role][]schemas.Action {
	return map[schemas.Role][]schemas.Action{
		schemas.RoleSensor: {schemas.ActionSendStatus, schemas.ActionReadStatus},
		schemas.RoleRobot:  {schemas.ActionMove, schemas.ActionShutdown, schemas.ActionSendStatus},
		schemas.RoleViewer: {schemas.ActionReadStatus},
	}
}
