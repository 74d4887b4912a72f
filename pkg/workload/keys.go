package workload

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyPrefix is the prefix of the record keys generated by the workload ("user42").
const KeyPrefix string = "user"

// ParseUserID() returns the userID encoded in a record key.
func ParseUserID(key string) (int64, error) {
	strID, found := strings.CutPrefix(key, KeyPrefix)
	if !found {
		return 0, fmt.Errorf("%w: %q does not start with %q", ErrInvalidKey, key, KeyPrefix)
	}

	userID, err := strconv.ParseInt(strID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidKey, key, err)
	}
	return userID, nil
}

// FormatKey() returns the record key of userID.
func FormatKey(userID int64) string {
	return KeyPrefix + strconv.FormatInt(userID, 10)
}

// mustParseUserID() panics when the key was not generated by the workload,
// which means the workload and the binding are misconfigured.
func mustParseUserID(key string) int64 {
	userID, err := ParseUserID(key)
	if err != nil {
		panic(err)
	}
	return userID
}
