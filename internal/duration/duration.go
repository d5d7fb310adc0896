package duration

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalid is returned for tokens that cannot be parsed.
var ErrInvalid = errors.New("invalid duration")

var units = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// Parse converts a compact duration token such as "10m" or "2d" into a
// time.Duration. A token is a non-negative integer followed by a single
// unit letter from s, m, h, d, w. An absent duration is a caller-side
// concern; Parse rejects the empty string.
func Parse(token string) (time.Duration, error) {
	if len(token) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, token)
	}
	unit := token[len(token)-1]
	if unit >= 'A' && unit <= 'Z' {
		unit += 'a' - 'A'
	}
	scale, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, token)
	}
	count, err := strconv.Atoi(token[:len(token)-1])
	if err != nil || count < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, token)
	}
	return time.Duration(count) * scale, nil
}
