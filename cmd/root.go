package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/manycore-sim/manycore-sim/sched"
	"github.com/manycore-sim/manycore-sim/sched/trace"
)

var (
	// CLI flags for the simulated run
	configPath  string // Path to the YAML configuration file
	logLevel    string // Log verbosity level
	numCores    int    // Number of application cores in the simulated system
	tick        int64  // Periodic invocation interval (ns)
	serviceTime int64  // Per-task service time in the driver host (ns)
	horizon     int64  // Hard stop for the driver event loop (ns)
	traceLevel  string // Decision trace level (none | decisions)
	seed        int64  // Override for scheduler/open/distribution_seed (0 = keep config)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "manycore-sim",
	Short: "Open-system workload scheduler for a tiled many-core simulator",
}

// runCmd executes a scheduler run against the in-process driver host.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler against the built-in driver host",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if configPath == "" {
			logrus.Fatalf("Configuration file not provided. Exiting simulation.")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		cfg, err := sched.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Unable to load configuration: %v", err)
		}
		if seed != 0 {
			cfg.Scheduler.Open.DistributionSeed = seed
		}

		startTime := time.Now()

		driver := sched.NewDriver(numCores, tick, serviceTime, horizon)
		scheduler, err := sched.NewScheduler(cfg, driver)
		if err != nil {
			logrus.Fatalf("Unable to construct scheduler: %v", err)
		}
		if trace.TraceLevel(traceLevel) == trace.TraceLevelDecisions {
			scheduler.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
		}
		driver.Attach(scheduler)

		scheduler.Start()
		if err := driver.Run(); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if summary := trace.Summarize(scheduler.Trace); scheduler.Trace != nil {
			logrus.Infof("Trace summary: %d admission attempts (%d admitted, %d rejected), %d time jumps (%d ns total)",
				summary.TotalAttempts, summary.AdmittedCount, summary.RejectedCount,
				summary.TimeJumpCount, summary.TotalJumpNS)
		}

		logrus.Infof("Simulation complete in %v (wall clock), average response time %d ns.",
			time.Since(startTime), scheduler.Metrics().AverageResponseTime())
	},
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to the YAML configuration file")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	runCmd.Flags().IntVar(&numCores, "num-cores", 16, "Number of application cores in the simulated system")
	runCmd.Flags().Int64Var(&tick, "tick", 100, "Periodic invocation interval in ns")
	runCmd.Flags().Int64Var(&serviceTime, "service-time", 5_000_000, "Per-task service time in the driver host, ns")
	runCmd.Flags().Int64Var(&horizon, "horizon", 10_000_000_000, "Simulation horizon in ns")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Override the configured distribution seed (0 keeps the config value)")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
