// Package config loads and validates the platform configuration from YAML,
// checked against a JSON schema before any typed parsing, so malformed
// files fail with precise paths instead of zero-valued surprises.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matteriben/hedera-services/errors"
	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/wiring"
)

// SchedulerConfig is the per-component scheduler configuration as written
// in YAML.
type SchedulerConfig struct {
	Type              string `yaml:"type"`
	UnhandledCapacity int64  `yaml:"unhandledCapacity"`
	Flushable         bool   `yaml:"flushable"`
	Squelchable       bool   `yaml:"squelchable"`
}

// ToWiring converts the YAML form into a wiring.SchedulerConfiguration.
func (c SchedulerConfig) ToWiring() (wiring.SchedulerConfiguration, error) {
	schedulerType, err := wiring.ParseSchedulerType(c.Type)
	if err != nil {
		return wiring.SchedulerConfiguration{}, errors.WrapInvalid(err, "config", "ToWiring", "parse scheduler type")
	}
	return wiring.SchedulerConfiguration{
		Type:                  schedulerType,
		UnhandledTaskCapacity: c.UnhandledCapacity,
		Flushable:             c.Flushable,
		Squelchable:           c.Squelchable,
	}, nil
}

// PoolConfig sizes the shared concurrent pool:
// max(1, defaultPoolMultiplier×cores + defaultPoolConstant).
type PoolConfig struct {
	DefaultPoolMultiplier float64 `yaml:"defaultPoolMultiplier"`
	DefaultPoolConstant   int     `yaml:"defaultPoolConstant"`
}

// IntakeConfig holds intake pipeline settings.
type IntakeConfig struct {
	// EventHasherUnhandledCapacity caps the counter shared by the event
	// hasher and the post-hash collector.
	EventHasherUnhandledCapacity int64 `yaml:"eventHasherUnhandledCapacity"`

	// ForceIgnorePcesSignatures disables the signature validator's check
	// for every event, live or replayed. Testing only.
	ForceIgnorePcesSignatures bool `yaml:"forceIgnorePcesSignatures"`

	// ValidateInitialState verifies the loaded state's hash at startup.
	ValidateInitialState bool `yaml:"validateInitialState"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "250ms" or "1s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library form.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// HeartbeatConfig holds the period of every heartbeat-driven component.
type HeartbeatConfig struct {
	EventCreationPeriod         Duration `yaml:"eventCreationPeriod"`
	StatusStateMachinePeriod    Duration `yaml:"statusStateMachinePeriod"`
	RoundDurabilityBufferPeriod Duration `yaml:"roundDurabilityBufferPeriod"`
	StateGarbageCollectorPeriod Duration `yaml:"stateGarbageCollectorPeriod"`
}

// NodeConfig identifies this node and sizes the reference components.
type NodeConfig struct {
	ID                 int64    `yaml:"id"`
	SignatureThreshold int      `yaml:"signatureThreshold"`
	EventsPerRound     int      `yaml:"eventsPerRound"`
	AncientWindowSize  int64    `yaml:"ancientWindowSize"`
	CreationRate       float64  `yaml:"creationRate"`
	ObservationPeriod  Duration `yaml:"observationPeriod"`
}

// DiagnosticsConfig configures the observability HTTP server.
type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Config is the root platform configuration.
type Config struct {
	Pool        PoolConfig                 `yaml:"pool"`
	Intake      IntakeConfig               `yaml:"intake"`
	Heartbeats  HeartbeatConfig            `yaml:"heartbeats"`
	Node        NodeConfig                 `yaml:"node"`
	Diagnostics DiagnosticsConfig          `yaml:"diagnostics"`
	AncientMode string                     `yaml:"ancientMode"`
	Schedulers  map[string]SchedulerConfig `yaml:"schedulers"`
}

// Default returns the configuration used when a section is omitted.
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			DefaultPoolMultiplier: 1.0,
			DefaultPoolConstant:   0,
		},
		Intake: IntakeConfig{
			EventHasherUnhandledCapacity: 500,
			ValidateInitialState:         true,
		},
		Heartbeats: HeartbeatConfig{
			EventCreationPeriod:         Duration(10 * time.Millisecond),
			StatusStateMachinePeriod:    Duration(100 * time.Millisecond),
			RoundDurabilityBufferPeriod: Duration(time.Second),
			StateGarbageCollectorPeriod: Duration(200 * time.Millisecond),
		},
		Node: NodeConfig{
			ID:                 0,
			SignatureThreshold: 1,
			EventsPerRound:     8,
			AncientWindowSize:  26,
			CreationRate:       100,
			ObservationPeriod:  Duration(time.Second),
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: true,
			Address: ":9090",
		},
		AncientMode: event.GenerationThreshold.String(),
		Schedulers:  DefaultSchedulers(),
	}
}

// DefaultSchedulers returns the scheduler table used when the schedulers
// section is omitted. The shapes mirror the platform wiring: stateful
// stages are sequential and flushable, cycle participants squelchable,
// CPU-heavy stages concurrent, registries direct.
func DefaultSchedulers() map[string]SchedulerConfig {
	return map[string]SchedulerConfig{
		"eventHasher":             {Type: "concurrent"},
		"postHashCollector":       {Type: "sequential"},
		"internalEventValidator":  {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"eventDeduplicator":       {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"eventSignatureValidator": {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"orphanBuffer":            {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"consensusEngine":         {Type: "sequential", UnhandledCapacity: 500, Flushable: true, Squelchable: true},
		"eventCreationManager":    {Type: "sequential", UnhandledCapacity: 500, Flushable: true, Squelchable: true},
		"selfEventSigner":         {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"pcesSequencer":           {Type: "direct"},
		"pcesWriter":              {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"roundDurabilityBuffer":   {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"consensusRoundHandler":   {Type: "sequential", UnhandledCapacity: 500, Flushable: true, Squelchable: true},
		"transactionPrehandler":   {Type: "concurrent", UnhandledCapacity: 500, Flushable: true},
		"stateSignatureCollector": {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"stateHasher":             {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"stateGarbageCollector":   {Type: "sequential"},
		"issDetector":             {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"gossip":                  {Type: "sequential", UnhandledCapacity: 500, Flushable: true},
		"statusStateMachine":      {Type: "sequential", UnhandledCapacity: 100, Flushable: true},
		"pcesReplayer":            {Type: "sequential"},
	}
}

// Load reads, validates, and parses a configuration file. Omitted
// sections keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "read file")
	}
	return Parse(data)
}

// Parse validates and parses configuration bytes.
func Parse(data []byte) (*Config, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "config", "Parse", "unmarshal yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies checks the schema cannot express.
func (c *Config) Validate() error {
	if _, err := event.ParseAncientMode(c.AncientMode); err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "ancient mode")
	}
	for name, sc := range c.Schedulers {
		if _, err := wiring.ParseSchedulerType(sc.Type); err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("scheduler %s: %w", name, err),
				"config", "Validate", "scheduler type")
		}
		if sc.UnhandledCapacity < 0 {
			return errors.WrapInvalid(
				fmt.Errorf("scheduler %s: negative capacity", name),
				"config", "Validate", "scheduler capacity")
		}
	}
	if c.Node.SignatureThreshold < 1 {
		return errors.WrapInvalid(
			fmt.Errorf("signatureThreshold %d", c.Node.SignatureThreshold),
			"config", "Validate", "signature threshold")
	}
	return nil
}

// SchedulerFor returns the wiring configuration for a component,
// defaulting to a flushable sequential scheduler for unknown names.
func (c *Config) SchedulerFor(name string) wiring.SchedulerConfiguration {
	if sc, ok := c.Schedulers[name]; ok {
		converted, err := sc.ToWiring()
		if err == nil {
			return converted
		}
	}
	return wiring.SchedulerConfiguration{
		Type:                  wiring.Sequential,
		UnhandledTaskCapacity: 500,
		Flushable:             true,
	}
}

// Mode returns the parsed ancient mode.
func (c *Config) Mode() event.AncientMode {
	mode, err := event.ParseAncientMode(c.AncientMode)
	if err != nil {
		return event.GenerationThreshold
	}
	return mode
}
