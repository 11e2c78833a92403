package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/sentinel_sim/policy"
)

// version is set by ldflags at build time.
var version = "dev"

func main() {
	var (
		flagConfig   string
		flagCycles   int
		flagSeed     int64
		flagHeadless bool
		flagAddr     string
		flagPolicy   string
		flagWatch    bool
		flagPlugins  []string
		flagVerbose  bool
	)

	rootCmd := &cobra.Command{
		Use:   "sentinelsim",
		Short: "cycle-accurate model of a transaction risk filter",
		Long: `Simulates a single-stage transaction risk filter: a combinational
amount-versus-limit check on a flow-controlled record stream, with a
shadow/active limit pair for hitless reprogramming, a forensic capture of
rejected records, and a register bus for control. A reference scoreboard
checks every decision the filter makes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				GetLogger().SetLevel(LogLevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation scenario",
		Long: `Runs a predefined scenario, optionally overridden by flags. Without
--headless a web server exposes the live state at the configured address.

Examples:
  sentinelsim run --config smoke
  sentinelsim run --config backpressure --headless
  sentinelsim run --config hitless --policy policy.yaml --watch
  sentinelsim run --cycles 5000 --seed 7 --headless`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveRunConfig(flagConfig)
			if cfg == nil {
				return fmt.Errorf("unknown config %q", flagConfig)
			}
			if flagCycles > 0 {
				cfg.TotalCycles = flagCycles
			}
			if flagSeed != 0 {
				cfg.Seed = flagSeed
			}
			if flagAddr != "" {
				cfg.WebAddr = flagAddr
			}
			if cfg.WebAddr == "" {
				cfg.WebAddr = DefaultWebAddr
			}
			cfg.Headless = flagHeadless
			if flagHeadless {
				cfg.VisualMode = "none"
			}
			if flagPolicy != "" {
				cfg.PolicyPath = flagPolicy
			}
			if len(flagPlugins) > 0 {
				cfg.Plugins = flagPlugins
			}

			sim := NewSimulator(cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if flagWatch && cfg.PolicyPath != "" {
				rel, err := policy.NewReloader(cfg.PolicyPath, sim.ApplyPolicy)
				if err != nil {
					return fmt.Errorf("watch policy: %w", err)
				}
				go rel.Run(ctx)
			}

			if cfg.Headless {
				sim.Run()
				PrintStats(sim.CollectStats())
				if sim.Mismatches() > 0 {
					return fmt.Errorf("%d scoreboard mismatches", sim.Mismatches())
				}
				return nil
			}

			go sim.Run()
			<-ctx.Done()
			GetLogger().Infof("Shutting down")
			return nil
		},
	}
	runCmd.Flags().StringVar(&flagConfig, "config", "", "predefined scenario name (see 'sentinelsim list')")
	runCmd.Flags().IntVar(&flagCycles, "cycles", 0, "override total cycles")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "override random seed (0 = time-based)")
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run without the web server")
	runCmd.Flags().StringVar(&flagAddr, "addr", "", "web server listen address")
	runCmd.Flags().StringVar(&flagPolicy, "policy", "", "YAML policy file applied through the register bus")
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "hot-reload the policy file on change")
	runCmd.Flags().StringSliceVar(&flagPlugins, "plugins", nil, "plugin names to activate")

	var fuzzCycles int
	var fuzzSeed int64
	fuzzCmd := &cobra.Command{
		Use:   "fuzz",
		Short: "run a randomized scoreboard-checked simulation",
		Long: `Runs the fuzz scenario headless: random traffic mix, random downstream
ready, scattered limit and enable rewrites. Exits nonzero if the filter
ever disagrees with the reference scoreboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfigByName("fuzz")
			if fuzzCycles > 0 {
				cfg.TotalCycles = fuzzCycles
			}
			if fuzzSeed != 0 {
				cfg.Seed = fuzzSeed
			}

			sim := NewSimulator(cfg)
			sim.RunHeadless()
			PrintStats(sim.CollectStats())
			if n := sim.Mismatches(); n > 0 {
				return fmt.Errorf("%d scoreboard mismatches over %d cycles", n, sim.Cycle())
			}
			GetLogger().Infof("Fuzz passed: %d cycles, 0 mismatches", sim.Cycle())
			return nil
		},
	}
	fuzzCmd.Flags().IntVar(&fuzzCycles, "cycles", 0, "override total cycles")
	fuzzCmd.Flags().Int64Var(&fuzzSeed, "seed", 0, "random seed (0 = time-based)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run the performance benchmark suite",
		Run: func(cmd *cobra.Command, args []string) {
			RunBenchmarkSuite()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list predefined scenarios",
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range GetPredefinedConfigs() {
				fmt.Printf("%-14s %s\n", c.Name, c.Description)
			}
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print sentinelsim version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sentinelsim %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, fuzzCmd, benchCmd, listCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sentinelsim: %s\n", err)
		os.Exit(1)
	}
}

// resolveRunConfig picks the named scenario, or the first one when no name
// is given.
func resolveRunConfig(name string) *Config {
	if name == "" {
		configs := GetPredefinedConfigs()
		if len(configs) == 0 {
			return nil
		}
		name = configs[0].Name
	}
	return GetConfigByName(name)
}
