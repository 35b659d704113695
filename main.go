package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "mrbench",
	Short: "Generate deterministic datasets and benchmark MongoDB queries with host resource sampling",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		log.SetReportTimestamp(true)
		return nil
	},
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write bulk datasets (10, 100, ... records) and record pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newConfig(cmd.Flags(), cfgFile)
		if err != nil {
			return err
		}
		config, err := generateConfigFrom(v)
		if err != nil {
			return err
		}
		return Generate(cmd.Context(), config)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the query battery against every dataset of a kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newConfig(cmd.Flags(), cfgFile)
		if err != nil {
			return err
		}
		config, err := runConfigFrom(v)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer client.Disconnect(context.Background())

		collector := NewCollector(HostMetrics{}, config.CPUWindow, config.DiskPath)
		log.Info("Host configuration\n" + strings.TrimRight(collector.SystemReport(ctx), "\n"))

		db := &MongoDatabase{client.Database(config.Database)}
		return NewRunner(db, collector, config).Run(ctx)
	},
}

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print the host resource configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newConfig(cmd.Flags(), cfgFile)
		if err != nil {
			return err
		}
		collector := NewCollector(HostMetrics{}, DefaultCPUWindow, v.GetString("disk-path"))
		fmt.Print(collector.SystemReport(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file; flags and MRBENCH_* variables override it")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	addGenerateFlags(generateCmd.Flags())
	addRunFlags(runCmd.Flags())
	sysinfoCmd.Flags().String("disk-path", "/", "Path whose filesystem usage is reported")

	rootCmd.AddCommand(generateCmd, runCmd, sysinfoCmd)
}

func addGenerateFlags(gf *pflag.FlagSet) {
	gf.String("out", ".", "Output directory")
	gf.StringSlice("kinds", []string{string(StructuredKind), string(UnstructuredKind)}, "Dataset kinds: structured, contact, unstructured, keyed")
	gf.Int64("limit", 1_000_000, "Largest dataset size; sizes grow by a factor of 10 starting at 10")
	gf.Int64("pool-size", 1_000_000, "Records in the data pool (0 disables it)")
	gf.Int64("seed", 0, "Seed for the randomized fields")
	gf.Bool("gzip", false, "Gzip the dataset files")
}

func addRunFlags(rf *pflag.FlagSet) {
	rf.String("uri", "mongodb://localhost:27017", "MongoDB URI")
	rf.String("db", "", "Database name (defaults to the dataset kind)")
	rf.String("kind", string(StructuredKind), "Dataset kind: structured, contact, unstructured, keyed")
	rf.String("data", ".", "Directory holding the generated datasets")
	rf.String("logs", "logs", "Directory for the result files")
	rf.Int("reps", 5, "Repetitions of every query per dataset")
	rf.Duration("interval", 100*time.Millisecond, "Pause between resource samples")
	rf.Duration("cpu-window", DefaultCPUWindow, "CPU utilization window of each sample")
	rf.String("disk-path", "/", "Path whose filesystem usage is sampled")
	rf.Int64("pool-size", 1_000_000, "Records in the data pool when no pool file exists")
	rf.Int64("seed", 0, "Seed for the randomized fields and random reads")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error("mrbench failed", "err", err)
		stop()
		os.Exit(1)
	}
}
