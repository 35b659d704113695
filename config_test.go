package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfigDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	addGenerateFlags(flags)

	v, err := newConfig(flags, "")
	require.NoError(t, err)
	config, err := generateConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, GenerateConfig{
		OutDir:   ".",
		Kinds:    []DatasetKind{StructuredKind, UnstructuredKind},
		Limit:    1_000_000,
		PoolSize: 1_000_000,
	}, config)
}

func TestGenerateConfigFlagsAndEnv(t *testing.T) {
	t.Setenv("MRBENCH_POOL_SIZE", "42")
	t.Setenv("MRBENCH_SEED", "7")

	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	addGenerateFlags(flags)
	require.NoError(t, flags.Parse([]string{"--kinds", "keyed,contact", "--limit", "1000", "--seed", "9", "--gzip"}))

	v, err := newConfig(flags, "")
	require.NoError(t, err)
	config, err := generateConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, []DatasetKind{KeyedKind, ContactKind}, config.Kinds)
	assert.Equal(t, int64(1000), config.Limit)
	assert.Equal(t, int64(42), config.PoolSize)
	// an explicit flag wins over the environment
	assert.Equal(t, int64(9), config.Seed)
	assert.True(t, config.Gzip)
}

func TestGenerateConfigKindsFromEnv(t *testing.T) {
	for _, value := range []string{"keyed,contact", "keyed, contact", "keyed contact"} {
		t.Setenv("MRBENCH_KINDS", value)

		flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
		addGenerateFlags(flags)
		v, err := newConfig(flags, "")
		require.NoError(t, err)
		config, err := generateConfigFrom(v)
		require.NoError(t, err, value)

		assert.Equal(t, []DatasetKind{KeyedKind, ContactKind}, config.Kinds, value)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	for _, args := range [][]string{
		{"--limit", "9"},
		{"--pool-size", "-1"},
		{"--kinds", "graph"},
	} {
		flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
		addGenerateFlags(flags)
		require.NoError(t, flags.Parse(args))

		v, err := newConfig(flags, "")
		require.NoError(t, err)
		_, err = generateConfigFrom(v)
		assert.Error(t, err, "%v", args)
	}
}

func TestRunConfigFromFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "mrbench.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("kind: unstructured\nreps: 3\ninterval: 250ms\n"), 0644))

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	addRunFlags(flags)
	require.NoError(t, flags.Parse([]string{"--reps", "2"}))

	v, err := newConfig(flags, cfgFile)
	require.NoError(t, err)
	config, err := runConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, UnstructuredKind, config.Kind)
	assert.Equal(t, "unstructured", config.Database)
	assert.Equal(t, 2, config.Repetitions)
	assert.Equal(t, 250*time.Millisecond, config.Interval)
	assert.Equal(t, DefaultCPUWindow, config.CPUWindow)
	assert.Equal(t, "mongodb://localhost:27017", config.URI)
}

func TestRunConfigValidation(t *testing.T) {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	addRunFlags(flags)
	require.NoError(t, flags.Parse([]string{"--reps", "0"}))
	v, err := newConfig(flags, "")
	require.NoError(t, err)
	_, err = runConfigFrom(v)
	assert.Error(t, err)

	_, err = newConfig(flags, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
