package redisutils

import (
	"strconv"
)

// FormatID() formats an entityID (int64) into a string
func FormatID(ID int64) string {
	return strconv.FormatInt(ID, 10)
}

// ParseID() parses an entityID (int64) from the specified string
func ParseID(strVal string) (int64, error) {
	return strconv.ParseInt(strVal, 10, 64)
}

// FormatIDs() formats a slice of entityIDs into a slice of strings, ready
// to be passed as members of a Redis set command.
func FormatIDs(IDs []int64) []interface{} {
	strIDs := make([]interface{}, len(IDs))
	for i, ID := range IDs {
		strIDs[i] = FormatID(ID)
	}
	return strIDs
}

// ParseIDs() parses a slice of strings into a slice of entityIDs.
func ParseIDs(strIDs []string) ([]int64, error) {
	IDs := make([]int64, 0, len(strIDs))
	for _, strID := range strIDs {
		ID, err := ParseID(strID)
		if err != nil {
			return nil, err
		}
		IDs = append(IDs, ID)
	}
	return IDs, nil
}
