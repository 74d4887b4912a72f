package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by SystemConfig.
const EnvPrefix string = "FLOCKBENCH"

// SystemConfig holds the process-level parameters, read from the environment
// (e.g. FLOCKBENCH_LOGS=bench.log).
type SystemConfig struct {
	// log file; logs go to stdout unless it ends in ".log"
	Logs string `envconfig:"LOGS"`

	// address of the /metrics endpoint; empty disables it
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// export a span per operation to stdout
	Trace            bool    `envconfig:"TRACE" default:"false"`
	TraceSampleRatio float64 `envconfig:"TRACE_SAMPLE_RATIO" default:"1"`

	DisplayConfig bool `envconfig:"DISPLAY_CONFIG" default:"false"`
}

// LoadSystemConfig() reads the variables from the environment and parses them into a config struct.
func LoadSystemConfig() (SystemConfig, error) {
	var config SystemConfig
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return SystemConfig{}, fmt.Errorf("error parsing the environment: %w", err)
	}

	if config.TraceSampleRatio < 0 || config.TraceSampleRatio > 1 {
		return SystemConfig{}, fmt.Errorf("%s_TRACE_SAMPLE_RATIO must be in [0, 1]: %v", EnvPrefix, config.TraceSampleRatio)
	}
	return config, nil
}

func (c SystemConfig) Print() {
	fmt.Println("System:")
	fmt.Printf("  Logs: %q\n", c.Logs)
	fmt.Printf("  MetricsAddr: %q\n", c.MetricsAddr)
	fmt.Printf("  Trace: %t\n", c.Trace)
	fmt.Printf("  TraceSampleRatio: %v\n", c.TraceSampleRatio)
	fmt.Printf("  DisplayConfig: %t\n", c.DisplayConfig)
}
