package main

import (
	"io"
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/parallelbench/ep/ep"
	"github.com/parallelbench/ep/pkg/log"
	"github.com/parallelbench/ep/pkg/metrics"
	"github.com/parallelbench/ep/pkg/stop"
)

// Set with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   = "dev"
	buildDate = "unknown"
)

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig(cmd *cobra.Command) (Config, error) {
	var cfg Config

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if configFilePath != "" {
		configFile, err := ParseConfigFile(configFilePath)
		if err != nil {
			return cfg, errors.Wrap(err, "failed to read config")
		}
		cfg = configFile.EP
	}

	flags := cmd.Flags()
	if flags.Changed("class") {
		cfg.Class, _ = flags.GetString("class")
		cfg.Exponent = 0
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timers") {
		cfg.Timers, _ = flags.GetBool("timers")
	}
	if flags.Changed("format") || cfg.Format == "" {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("json-logs") {
		cfg.JSONLogs, _ = flags.GetBool("json-logs")
	}

	if cfg.Format != "text" && cfg.Format != "yaml" {
		return cfg, errors.Errorf("unknown report format %q", cfg.Format)
	}

	return cfg, nil
}

// RootRunCmdFunc implements a Cobra command that runs one benchmark and
// prints its report.
func RootRunCmdFunc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.SetDebug(cfg.Debug)
	log.SetJSON(cfg.JSONLogs)

	cpuProfilePath, _ := cmd.Flags().GetString("cpuprofile")
	if cpuProfilePath != "" {
		f, err := os.Create(cpuProfilePath)
		if err != nil {
			return err
		}
		defer f.Close()
		log.Info("enabled CPU profiling", log.Fields{"path": cpuProfilePath})
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	stopGroup := stop.NewGroup()
	if cfg.MetricsAddr != "" {
		log.Info("starting metrics server", log.Fields{"addr": cfg.MetricsAddr})
		stopGroup.Add(metrics.NewServer(cfg.MetricsAddr))
	}
	defer func() {
		for _, err := range stopGroup.Stop().Wait() {
			log.Error("failed while shutting down", log.Err(err))
		}
	}()

	return runBenchmark(cmd.OutOrStdout(), cfg, buildInfo{Version: version, BuildDate: buildDate})
}

func runBenchmark(w io.Writer, cfg Config, info buildInfo) error {
	b, err := ep.New(cfg.Config)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	log.Debug("loaded config", b.Config())

	r, err := b.Run()
	if err != nil {
		return err
	}
	log.Debug("benchmark finished", r)

	if cfg.Format == "yaml" {
		return writeYAML(w, r, info)
	}
	return writeText(w, r, info)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ep",
		Short:         "EP benchmark",
		Long:          "The NAS \"embarrassingly parallel\" Gaussian-pair benchmark",
		Version:       version,
		RunE:          RootRunCmdFunc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().String("config", "", "location of configuration file")
	rootCmd.Flags().String("class", ep.DefaultClass, "problem class (S, W, A, B, C, D or E)")
	rootCmd.Flags().Int("workers", 0, "number of parallel workers (0 uses GOMAXPROCS)")
	rootCmd.Flags().BoolP("timers", "t", false, "collect per-phase timings")
	rootCmd.Flags().String("format", "text", "report format (text or yaml)")
	rootCmd.Flags().String("metrics-addr", "", "address to serve Prometheus metrics and pprof on")
	rootCmd.Flags().String("cpuprofile", "", "location to save a CPU profile")
	rootCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.Flags().Bool("json-logs", false, "enable JSON logging")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal("failed when executing root cobra command", log.Err(err))
	}
}
