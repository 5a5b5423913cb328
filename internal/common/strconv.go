package common

import (
	"fmt"
	"strconv"
	"strings"
)

// PositiveIntDefault parses a positive integer, falling back to def when value is
// empty, malformed or not above zero.
func PositiveIntDefault(value string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return def
	}
	return parsed
}

// IntInRange parses an optional query parameter. Empty yields def; anything outside
// [min, max] is a BAD_REQUEST for field.
func IntInRange(field, value string, def, min, max int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < min || parsed > max {
		return 0, BadRequest(field, fmt.Sprintf("must be between %d and %d", min, max), err)
	}
	return parsed, nil
}
