package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertex-lab/flockbench/pkg/properties"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := LoadConfig(properties.Properties{})
		require.NoError(t, err)
		assert.Equal(t, NewConfig(), config)
		assert.Equal(t, "usertable", config.Table)
		assert.Equal(t, 10*time.Second, config.StatusInterval)
	})

	t.Run("insertcount defaults to the remaining records", func(t *testing.T) {
		config, err := LoadConfig(properties.Properties{"recordcount": "1000", "insertstart": "250"})
		require.NoError(t, err)
		assert.Equal(t, int64(750), config.InsertCount)
	})

	t.Run("all set", func(t *testing.T) {
		props := properties.Properties{
			"threadcount":      "8",
			"recordcount":      "1000",
			"insertstart":      "10",
			"insertcount":      "20",
			"operationcount":   "5000",
			"target":           "250.5",
			"table":            "follows",
			"maxscanlength":    "50",
			"status.interval":  "0",
			"readproportion":   "0.5",
			"updateproportion": "0.2",
			"insertproportion": "0.1",
			"scanproportion":   "0.1",
			"deleteproportion": "0.1",
			"flock.hosts":      "ignored",
		}

		expected := Config{
			Threads:        8,
			RecordCount:    1000,
			InsertStart:    10,
			InsertCount:    20,
			OperationCount: 5000,
			Proportions:    Proportions{Read: 0.5, Update: 0.2, Insert: 0.1, Scan: 0.1, Delete: 0.1},
			Target:         250.5,
			Table:          "follows",
			MaxScanLength:  50,
			StatusInterval: 0,
		}

		config, err := LoadConfig(props)
		require.NoError(t, err)
		assert.Equal(t, expected, config)
	})

	t.Run("errors", func(t *testing.T) {
		testCases := []struct {
			name          string
			props         properties.Properties
			expectedError error
		}{
			{name: "zero threads", props: properties.Properties{"threadcount": "0"}, expectedError: ErrInvalidConfig},
			{name: "negative records", props: properties.Properties{"recordcount": "-1"}, expectedError: ErrInvalidConfig},
			{name: "insertstart after records", props: properties.Properties{"recordcount": "10", "insertstart": "20"}, expectedError: ErrInvalidConfig},
			{name: "negative operations", props: properties.Properties{"operationcount": "-5"}, expectedError: ErrInvalidConfig},
			{name: "negative target", props: properties.Properties{"target": "-1"}, expectedError: ErrInvalidConfig},
			{name: "zero scan length", props: properties.Properties{"maxscanlength": "0"}, expectedError: ErrInvalidConfig},
			{name: "negative proportion", props: properties.Properties{"readproportion": "-0.1"}, expectedError: ErrInvalidProportions},
			{name: "no operations", props: properties.Properties{"readproportion": "0", "updateproportion": "0"}, expectedError: ErrInvalidProportions},
		}

		for _, test := range testCases {
			t.Run(test.name, func(t *testing.T) {
				_, err := LoadConfig(test.props)
				assert.ErrorIs(t, err, test.expectedError)
			})
		}
	})

	t.Run("parse errors", func(t *testing.T) {
		for _, key := range []string{"threadcount", "recordcount", "operationcount", "target", "readproportion", "status.interval"} {
			_, err := LoadConfig(properties.Properties{key: "lots"})
			assert.Error(t, err, key)
		}
	})
}
