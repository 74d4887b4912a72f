package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/vertex-lab/flockbench/pkg/properties"
)

const (
	ThreadsProperty        string = "threadcount"
	OperationCountProperty string = "operationcount"
	InsertStartProperty    string = "insertstart"
	InsertCountProperty    string = "insertcount"
	TargetProperty         string = "target"
	TableProperty          string = "table"
	MaxScanLengthProperty  string = "maxscanlength"
	StatusIntervalProperty string = "status.interval"

	ReadProportionProperty   string = "readproportion"
	UpdateProportionProperty string = "updateproportion"
	InsertProportionProperty string = "insertproportion"
	ScanProportionProperty   string = "scanproportion"
	DeleteProportionProperty string = "deleteproportion"

	DefaultThreads        int     = 1
	DefaultRecordCount    int64   = 0
	DefaultOperationCount int64   = 0
	DefaultTable          string  = "usertable"
	DefaultMaxScanLength  int     = 1000
	DefaultStatusInterval int     = 10 // seconds
	DefaultTarget         float64 = 0
)

// Config holds the parameters of a load or run phase.
type Config struct {
	Threads int

	// the keys of the loaded records are user<InsertStart> ... user<InsertStart+InsertCount-1>
	RecordCount int64
	InsertStart int64
	InsertCount int64

	OperationCount int64
	Proportions    Proportions

	// the target throughput in operations per second; 0 means unthrottled
	Target float64

	Table          string
	MaxScanLength  int
	StatusInterval time.Duration
}

// NewConfig() returns a config with default parameters.
func NewConfig() Config {
	return Config{
		Threads:        DefaultThreads,
		RecordCount:    DefaultRecordCount,
		OperationCount: DefaultOperationCount,
		Proportions:    NewProportions(),
		Target:         DefaultTarget,
		Table:          DefaultTable,
		MaxScanLength:  DefaultMaxScanLength,
		StatusInterval: time.Duration(DefaultStatusInterval) * time.Second,
	}
}

// LoadConfig() parses the driver properties, falling back to the defaults for
// the missing ones.
func LoadConfig(props properties.Properties) (Config, error) {
	config := NewConfig()
	var err error

	if config.Threads, err = props.Int(ThreadsProperty, DefaultThreads); err != nil {
		return Config{}, err
	}

	if config.RecordCount, err = props.Int64(properties.RecordCountProperty, DefaultRecordCount); err != nil {
		return Config{}, err
	}

	if config.InsertStart, err = props.Int64(InsertStartProperty, 0); err != nil {
		return Config{}, err
	}

	if config.InsertCount, err = props.Int64(InsertCountProperty, config.RecordCount-config.InsertStart); err != nil {
		return Config{}, err
	}

	if config.OperationCount, err = props.Int64(OperationCountProperty, DefaultOperationCount); err != nil {
		return Config{}, err
	}

	if config.Proportions, err = LoadProportions(props); err != nil {
		return Config{}, err
	}

	if config.Target, err = props.Float64(TargetProperty, DefaultTarget); err != nil {
		return Config{}, err
	}

	config.Table = props.String(TableProperty, DefaultTable)

	if config.MaxScanLength, err = props.Int(MaxScanLengthProperty, DefaultMaxScanLength); err != nil {
		return Config{}, err
	}

	interval, err := props.Int(StatusIntervalProperty, DefaultStatusInterval)
	if err != nil {
		return Config{}, err
	}
	config.StatusInterval = time.Duration(interval) * time.Second

	return config, config.Validate()
}

// Validate() returns an error describing the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case c.Threads < 1:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, ThreadsProperty, c.Threads)

	case c.RecordCount < 0:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, properties.RecordCountProperty, c.RecordCount)

	case c.InsertStart < 0:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, InsertStartProperty, c.InsertStart)

	case c.InsertCount < 0:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, InsertCountProperty, c.InsertCount)

	case c.OperationCount < 0:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, OperationCountProperty, c.OperationCount)

	case c.Target < 0:
		return fmt.Errorf("%w: %s=%v", ErrInvalidConfig, TargetProperty, c.Target)

	case c.MaxScanLength < 1:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, MaxScanLengthProperty, c.MaxScanLength)

	case c.StatusInterval < 0:
		return fmt.Errorf("%w: %s=%v", ErrInvalidConfig, StatusIntervalProperty, c.StatusInterval)
	}
	return nil
}

func (c Config) Print() {
	fmt.Println("Driver:")
	fmt.Printf("  Threads: %d\n", c.Threads)
	fmt.Printf("  RecordCount: %d\n", c.RecordCount)
	fmt.Printf("  InsertStart: %d\n", c.InsertStart)
	fmt.Printf("  InsertCount: %d\n", c.InsertCount)
	fmt.Printf("  OperationCount: %d\n", c.OperationCount)
	fmt.Printf("  Proportions: %+v\n", c.Proportions)
	fmt.Printf("  Target: %v ops/sec\n", c.Target)
	fmt.Printf("  Table: %s\n", c.Table)
	fmt.Printf("  MaxScanLength: %d\n", c.MaxScanLength)
	fmt.Printf("  StatusInterval: %v\n", c.StatusInterval)
}

//--------------------------ERROR-CODES--------------------------

var ErrInvalidConfig = errors.New("invalid driver configuration")
var ErrInvalidProportions = errors.New("invalid operation proportions")
var ErrNoRecords = errors.New("the run phase needs a positive recordcount")
