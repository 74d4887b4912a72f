package workload

import (
	"errors"
	"fmt"

	"github.com/vertex-lab/flockbench/pkg/models"
	"github.com/vertex-lab/flockbench/pkg/properties"
)

const (
	PortProperty                  string = "flock.port"
	HostsProperty                 string = "flock.hosts"
	MaxConnectionsPerHostProperty string = "flock.max_connections_per_host"
	FollowsPerUserProperty        string = "flock.follows_per_user"
	InitialFollowsPerUserProperty string = "flock.initial_follows_per_user"
	EdgeChecksPerReadProperty     string = "flock.edge_checks_per_read"
	PriorityProperty              string = "flock.priority"
	SeedProperty                  string = "flock.seed"

	DefaultPort                  int    = 7915
	DefaultHosts                 string = "localhost"
	DefaultMaxConnectionsPerHost int    = 5
	DefaultFollowsPerUser        int    = 100
	DefaultInitialFollowsPerUser int    = 25
	DefaultEdgeChecksPerRead     int    = 5
	DefaultNumUsers              int64  = 1
)

// Config holds the parameters of the flock binding.
type Config struct {
	Port                  int
	Hosts                 string // comma-separated
	MaxConnectionsPerHost int

	// the follow slots of a user are [0, FollowsPerUser-1]
	FollowsPerUser        int
	InitialFollowsPerUser int
	EdgeChecksPerRead     int

	// the number of users in the graph, taken from the record count of the workload
	NumUsers int64

	// the priority of the batch written by an insert
	Priority models.Priority

	// when HasSeed is false the follow slots are drawn from a time-seeded source
	Seed    int64
	HasSeed bool
}

// NewConfig() returns a config with default parameters.
func NewConfig() Config {
	return Config{
		Port:                  DefaultPort,
		Hosts:                 DefaultHosts,
		MaxConnectionsPerHost: DefaultMaxConnectionsPerHost,
		FollowsPerUser:        DefaultFollowsPerUser,
		InitialFollowsPerUser: DefaultInitialFollowsPerUser,
		EdgeChecksPerRead:     DefaultEdgeChecksPerRead,
		NumUsers:              DefaultNumUsers,
		Priority:              models.PriorityHigh,
	}
}

// LoadConfig() parses the flock properties, falling back to the defaults for
// the missing ones.
func LoadConfig(props properties.Properties) (Config, error) {
	config := NewConfig()
	var err error

	if config.Port, err = props.Int(PortProperty, DefaultPort); err != nil {
		return Config{}, err
	}

	config.Hosts = props.String(HostsProperty, DefaultHosts)

	if config.MaxConnectionsPerHost, err = props.Int(MaxConnectionsPerHostProperty, DefaultMaxConnectionsPerHost); err != nil {
		return Config{}, err
	}

	if config.FollowsPerUser, err = props.Int(FollowsPerUserProperty, DefaultFollowsPerUser); err != nil {
		return Config{}, err
	}

	if config.InitialFollowsPerUser, err = props.Int(InitialFollowsPerUserProperty, DefaultInitialFollowsPerUser); err != nil {
		return Config{}, err
	}

	if config.EdgeChecksPerRead, err = props.Int(EdgeChecksPerReadProperty, DefaultEdgeChecksPerRead); err != nil {
		return Config{}, err
	}

	if config.NumUsers, err = props.Int64(properties.RecordCountProperty, DefaultNumUsers); err != nil {
		return Config{}, err
	}

	if config.Priority, err = models.ParsePriority(props.String(PriorityProperty, models.PriorityHigh.String())); err != nil {
		return Config{}, fmt.Errorf("error parsing %s: %w", PriorityProperty, err)
	}

	if _, ok := props[SeedProperty]; ok {
		if config.Seed, err = props.Int64(SeedProperty, 0); err != nil {
			return Config{}, err
		}
		config.HasSeed = true
	}

	return config, config.Validate()
}

// Validate() returns an error describing the first invalid parameter.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, PortProperty, c.Port)

	case c.MaxConnectionsPerHost < 1:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, MaxConnectionsPerHostProperty, c.MaxConnectionsPerHost)

	case c.FollowsPerUser < 1:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, FollowsPerUserProperty, c.FollowsPerUser)

	case c.InitialFollowsPerUser < 0:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, InitialFollowsPerUserProperty, c.InitialFollowsPerUser)

	case c.EdgeChecksPerRead < 0:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, EdgeChecksPerReadProperty, c.EdgeChecksPerRead)

	case c.NumUsers < 1:
		return fmt.Errorf("%w: %s=%d", ErrInvalidConfig, properties.RecordCountProperty, c.NumUsers)
	}
	return nil
}

func (c Config) Print() {
	fmt.Println("Flock:")
	fmt.Printf("  Hosts: %s\n", c.Hosts)
	fmt.Printf("  Port: %d\n", c.Port)
	fmt.Printf("  MaxConnectionsPerHost: %d\n", c.MaxConnectionsPerHost)
	fmt.Printf("  FollowsPerUser: %d\n", c.FollowsPerUser)
	fmt.Printf("  InitialFollowsPerUser: %d\n", c.InitialFollowsPerUser)
	fmt.Printf("  EdgeChecksPerRead: %d\n", c.EdgeChecksPerRead)
	fmt.Printf("  NumUsers: %d\n", c.NumUsers)
	fmt.Printf("  Priority: %v\n", c.Priority)
	if c.HasSeed {
		fmt.Printf("  Seed: %d\n", c.Seed)
	}
}

//--------------------------ERROR-CODES--------------------------

var ErrInvalidConfig = errors.New("invalid flock configuration")
