package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertex-lab/flockbench/pkg/properties"
)

func TestLoadSystemConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := LoadSystemConfig()
		require.NoError(t, err)
		assert.Equal(t, SystemConfig{TraceSampleRatio: 1}, config)
	})

	t.Run("valid", func(t *testing.T) {
		t.Setenv("FLOCKBENCH_LOGS", "bench.log")
		t.Setenv("FLOCKBENCH_METRICS_ADDR", ":9090")
		t.Setenv("FLOCKBENCH_TRACE", "true")
		t.Setenv("FLOCKBENCH_TRACE_SAMPLE_RATIO", "0.25")
		t.Setenv("FLOCKBENCH_DISPLAY_CONFIG", "true")

		expected := SystemConfig{
			Logs:             "bench.log",
			MetricsAddr:      ":9090",
			Trace:            true,
			TraceSampleRatio: 0.25,
			DisplayConfig:    true,
		}

		config, err := LoadSystemConfig()
		require.NoError(t, err)
		assert.Equal(t, expected, config)
	})

	t.Run("invalid", func(t *testing.T) {
		testCases := []struct {
			name string
			key  string
			val  string
		}{
			{name: "trace not a bool", key: "FLOCKBENCH_TRACE", val: "sometimes"},
			{name: "ratio not a number", key: "FLOCKBENCH_TRACE_SAMPLE_RATIO", val: "half"},
			{name: "ratio out of range", key: "FLOCKBENCH_TRACE_SAMPLE_RATIO", val: "2"},
		}

		for _, test := range testCases {
			t.Run(test.name, func(t *testing.T) {
				t.Setenv(test.key, test.val)
				_, err := LoadSystemConfig()
				assert.Error(t, err)
			})
		}
	})
}

func TestSystemConfigPrint(t *testing.T) {
	config := SystemConfig{Logs: "bench.log", TraceSampleRatio: 0.5, DisplayConfig: true}
	out := captureStdout(t, config.Print)

	for _, line := range []string{
		`Logs: "bench.log"`,
		`MetricsAddr: ""`,
		"Trace: false",
		"TraceSampleRatio: 0.5",
		"DisplayConfig: true",
	} {
		assert.Contains(t, out, line)
	}
}

// captureStdout() returns what f prints to stdout.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	f()
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestFlagsProperties(t *testing.T) {
	dir := t.TempDir()
	workloadA := filepath.Join(dir, "workloada")
	custom := filepath.Join(dir, "custom.properties")

	require.NoError(t, os.WriteFile(workloadA, []byte("recordcount=1000\noperationcount=1000\nreadproportion=0.5\n"), 0644))
	require.NoError(t, os.WriteFile(custom, []byte("# flock\nflock.hosts=redis-1,redis-2\nrecordcount=2000\n"), 0644))

	t.Run("files and overrides", func(t *testing.T) {
		flags := &Flags{
			PropertyFiles: []string{workloadA, custom},
			Overrides:     []string{"operationcount=10", "flock.port = 6379"},
			Threads:       8,
		}

		expected := properties.Properties{
			"recordcount":    "2000",
			"operationcount": "10",
			"readproportion": "0.5",
			"flock.hosts":    "redis-1,redis-2",
			"flock.port":     "6379",
			"threadcount":    "8",
		}

		props, err := flags.Properties()
		require.NoError(t, err)
		assert.Equal(t, expected, props)
	})

	t.Run("missing file", func(t *testing.T) {
		flags := &Flags{PropertyFiles: []string{filepath.Join(dir, "missing")}}
		_, err := flags.Properties()
		assert.Error(t, err)
	})

	t.Run("invalid override", func(t *testing.T) {
		flags := &Flags{Overrides: []string{"recordcount"}}
		_, err := flags.Properties()
		assert.ErrorIs(t, err, properties.ErrInvalidOverride)
	})
}

func TestRootCmd(t *testing.T) {
	root := NewRootCmd()

	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"load", "run"}, names)

	for _, flag := range []string{"property-file", "property", "threads"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}
