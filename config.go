package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix prefixes environment overrides, e.g. MRBENCH_URI or MRBENCH_POOL_SIZE.
const envPrefix = "MRBENCH"

type GenerateConfig struct {
	OutDir   string
	Kinds    []DatasetKind
	Limit    int64
	PoolSize int64
	Seed     int64
	Gzip     bool
}

type RunConfig struct {
	URI         string
	Database    string
	Kind        DatasetKind
	DataDir     string
	LogDir      string
	Repetitions int
	Interval    time.Duration
	CPUWindow   time.Duration
	DiskPath    string
	PoolSize    int64
	Seed        int64
}

// newConfig layers flags over environment over an optional config file.
func newConfig(flags *pflag.FlagSet, cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}
	return v, nil
}

func generateConfigFrom(v *viper.Viper) (GenerateConfig, error) {
	config := GenerateConfig{
		OutDir:   v.GetString("out"),
		Limit:    v.GetInt64("limit"),
		PoolSize: v.GetInt64("pool-size"),
		Seed:     v.GetInt64("seed"),
		Gzip:     v.GetBool("gzip"),
	}
	// flags arrive split already; MRBENCH_KINDS is only split on whitespace
	for _, item := range v.GetStringSlice("kinds") {
		for _, name := range strings.Split(item, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			kind, err := ParseDatasetKind(name)
			if err != nil {
				return GenerateConfig{}, err
			}
			config.Kinds = append(config.Kinds, kind)
		}
	}
	if config.Limit < 10 {
		return GenerateConfig{}, fmt.Errorf("limit must be at least 10, got %d", config.Limit)
	}
	if config.PoolSize < 0 {
		return GenerateConfig{}, fmt.Errorf("pool size must not be negative, got %d", config.PoolSize)
	}
	return config, nil
}

func runConfigFrom(v *viper.Viper) (RunConfig, error) {
	kind, err := ParseDatasetKind(v.GetString("kind"))
	if err != nil {
		return RunConfig{}, err
	}
	config := RunConfig{
		URI:         v.GetString("uri"),
		Database:    v.GetString("db"),
		Kind:        kind,
		DataDir:     v.GetString("data"),
		LogDir:      v.GetString("logs"),
		Repetitions: v.GetInt("reps"),
		Interval:    v.GetDuration("interval"),
		CPUWindow:   v.GetDuration("cpu-window"),
		DiskPath:    v.GetString("disk-path"),
		PoolSize:    v.GetInt64("pool-size"),
		Seed:        v.GetInt64("seed"),
	}
	if config.Database == "" {
		config.Database = string(kind)
	}
	if config.Repetitions < 1 {
		return RunConfig{}, fmt.Errorf("reps must be at least 1, got %d", config.Repetitions)
	}
	return config, nil
}
