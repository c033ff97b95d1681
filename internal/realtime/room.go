package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

const roomPrefix = "dm"

// Canonical returns the room key for the conversation between a and b. The
// smaller id always comes first, so both participants derive the same key.
func Canonical(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%d:%d", roomPrefix, a, b)
}

// ParseRoomKey returns the two participants of a canonical room key.
func ParseRoomKey(key string) (uint, uint, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != roomPrefix {
		return 0, 0, fmt.Errorf("malformed room key %q", key)
	}
	a, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || a == 0 {
		return 0, 0, fmt.Errorf("malformed room key %q", key)
	}
	b, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || b == 0 {
		return 0, 0, fmt.Errorf("malformed room key %q", key)
	}
	if a > b || Canonical(uint(a), uint(b)) != key {
		return 0, 0, fmt.Errorf("room key %q is not canonical", key)
	}
	return uint(a), uint(b), nil
}

// IsParticipant reports whether actorID is one of the two ends of key.
func IsParticipant(key string, actorID uint) bool {
	a, b, err := ParseRoomKey(key)
	if err != nil {
		return false
	}
	return actorID == a || actorID == b
}
