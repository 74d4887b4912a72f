// The properties package reads the key=value workload files shared by the
// driver and the DB bindings (e.g. "recordcount=1000", "flock.port=7915").
package properties

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// RecordCountProperty is the number of records (entities) in the workload.
const RecordCountProperty string = "recordcount"

// Properties maps a property name to its raw value.
type Properties map[string]string

// Load() reads the property files in order; later files override earlier ones.
func Load(paths ...string) (Properties, error) {
	props := Properties{}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("error reading properties %q: %w", path, err)
		}
		props.Merge(values)
	}
	return props, nil
}

// Parse() reads properties from r.
func Parse(r io.Reader) (Properties, error) {
	values, err := godotenv.Parse(r)
	if err != nil {
		return nil, err
	}
	return Properties(values), nil
}

// ParseOverride() parses a "key=value" pair as given on the command line.
func ParseOverride(pair string) (string, string, error) {
	key, val, found := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidOverride, pair)
	}
	return key, strings.TrimSpace(val), nil
}

// Merge() copies every value of other into p.
func (p Properties) Merge(other map[string]string) Properties {
	for key, val := range other {
		p[key] = val
	}
	return p
}

// String() returns the value of key, or def when the key is not set.
func (p Properties) String(key, def string) string {
	if val, ok := p[key]; ok {
		return val
	}
	return def
}

// Int() returns the value of key parsed as an int, or def when the key is not set.
func (p Properties) Int(key string, def int) (int, error) {
	val, ok := p[key]
	if !ok {
		return def, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("error parsing %s=%q: %w", key, val, err)
	}
	return parsed, nil
}

// Int64() returns the value of key parsed as an int64, or def when the key is not set.
func (p Properties) Int64(key string, def int64) (int64, error) {
	val, ok := p[key]
	if !ok {
		return def, nil
	}

	parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s=%q: %w", key, val, err)
	}
	return parsed, nil
}

// Float64() returns the value of key parsed as a float64, or def when the key is not set.
func (p Properties) Float64(key string, def float64) (float64, error) {
	val, ok := p[key]
	if !ok {
		return def, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s=%q: %w", key, val, err)
	}
	return parsed, nil
}

//--------------------------ERROR-CODES--------------------------

var ErrInvalidOverride = errors.New("property override must be key=value")
