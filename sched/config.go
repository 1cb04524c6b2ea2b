// Configuration loading and validation. The YAML layout mirrors the
// simulator's configuration tree (scheduler/open, scheduler/pinned,
// traceinput).

package sched

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OpenConfig holds the scheduler/open section.
type OpenConfig struct {
	// CoreMask marks which cores the scheduler may use. Empty means all
	// cores are allowed; otherwise it must have one entry per core.
	CoreMask []bool `yaml:"core_mask"`
	// Epoch is the mapping epoch in nanoseconds: the period at which the
	// periodic loop drains the admission queue.
	Epoch int64 `yaml:"epoch"`
	// QueuePolicy names the admission order policy. Only "FIFO" is supported.
	QueuePolicy string `yaml:"queue_policy"`
	// Distribution selects the arrival process: uniform, explicit or poisson.
	Distribution string `yaml:"distribution"`
	// ArrivalRate is the number of tasks per arrival batch.
	ArrivalRate int `yaml:"arrival_rate"`
	// ArrivalInterval is the (expected) inter-batch time in nanoseconds.
	ArrivalInterval int64 `yaml:"arrival_interval"`
	// ExplicitArrivalTimes lists per-task arrival times for the explicit
	// distribution, in nanoseconds.
	ExplicitArrivalTimes []int64 `yaml:"explicit_arrival_times"`
	// DistributionSeed seeds the poisson generator; 0 draws a seed from the
	// system entropy source.
	DistributionSeed int64 `yaml:"distribution_seed"`
	// Logic names the mapping policy. Only "first_unused" is supported.
	Logic string `yaml:"logic"`
	// PreferredCores is the ordered core preference list for first_unused.
	// A -1 entry terminates the list; empty defaults to identity order.
	PreferredCores []int `yaml:"preferred_cores"`
}

// PinnedConfig holds the scheduler/pinned section shared with the pinned
// base scheduler: per-core quantum bookkeeping.
type PinnedConfig struct {
	// Quantum is the per-core time budget in nanoseconds.
	Quantum int64 `yaml:"quantum"`
	// Interleaving is the stride of the free-core search.
	Interleaving int `yaml:"interleaving"`
}

// SchedulerConfig groups the scheduler sections.
type SchedulerConfig struct {
	Open   OpenConfig   `yaml:"open"`
	Pinned PinnedConfig `yaml:"pinned"`
}

// TraceInputConfig holds the traceinput section describing the workload.
type TraceInputConfig struct {
	// NumApps is the number of tasks N.
	NumApps int `yaml:"num_apps"`
	// Benchmarks is the +-delimited list of task descriptors.
	Benchmarks string `yaml:"benchmarks"`
}

// Config is the full configuration consumed by NewScheduler.
type Config struct {
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	TraceInput TraceInputConfig `yaml:"traceinput"`
}

// LoadConfig reads and parses a YAML configuration file with strict field
// checking, so a typo in a key is an error rather than a silent default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Validate performs the structural checks that do not need the core count.
// Policy and distribution names are validated by NewScheduler, which also
// knows the grid.
func (c *Config) Validate() error {
	if c.TraceInput.NumApps < 1 {
		return fmt.Errorf("traceinput/num_apps must be >= 1, got %d", c.TraceInput.NumApps)
	}
	if c.Scheduler.Open.Epoch <= 0 {
		return fmt.Errorf("scheduler/open/epoch must be > 0, got %d", c.Scheduler.Open.Epoch)
	}
	if c.Scheduler.Pinned.Quantum <= 0 {
		return fmt.Errorf("scheduler/pinned/quantum must be > 0, got %d", c.Scheduler.Pinned.Quantum)
	}
	if c.Scheduler.Pinned.Interleaving < 1 {
		return fmt.Errorf("scheduler/pinned/interleaving must be >= 1, got %d", c.Scheduler.Pinned.Interleaving)
	}
	if _, err := c.TaskNames(); err != nil {
		return err
	}
	return nil
}

// TaskNames splits the benchmarks string into the first NumApps descriptors.
func (c *Config) TaskNames() ([]string, error) {
	names := strings.Split(c.TraceInput.Benchmarks, "+")
	if len(names) < c.TraceInput.NumApps {
		return nil, fmt.Errorf("traceinput/benchmarks lists %d tasks, num_apps is %d",
			len(names), c.TraceInput.NumApps)
	}
	out := make([]string, c.TraceInput.NumApps)
	for i := range out {
		name := strings.TrimSpace(names[i])
		if name == "" {
			return nil, fmt.Errorf("traceinput/benchmarks entry %d is empty", i)
		}
		out[i] = name
	}
	return out, nil
}

// preferredCoreOrder cuts the configured preference list at the -1
// terminator, matching the fixed-size array layout of the original
// configuration format.
func preferredCoreOrder(configured []int) []int {
	out := make([]int, 0, len(configured))
	for _, core := range configured {
		if core == -1 {
			break
		}
		out = append(out, core)
	}
	return out
}
