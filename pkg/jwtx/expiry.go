package jwtx

import (
	"strconv"
	"time"
)

const fallbackExpiry = 7 * 24 * time.Hour

// ParseExpirySpec parses a lifetime spec of the form <integer><unit> where
// unit is one of s, m, h or d ("30m", "24h", "7d"). Anything unrecognized
// falls back to 7 days. The fallback is deliberate: a typo in a lifetime
// env var degrades to the stock refresh lifetime instead of refusing to
// issue tokens.
func ParseExpirySpec(spec string) time.Duration {
	if len(spec) < 2 {
		return fallbackExpiry
	}

	value, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil {
		return fallbackExpiry
	}

	switch spec[len(spec)-1] {
	case 's':
		return time.Duration(value) * time.Second
	case 'm':
		return time.Duration(value) * time.Minute
	case 'h':
		return time.Duration(value) * time.Hour
	case 'd':
		return time.Duration(value) * 24 * time.Hour
	default:
		return fallbackExpiry
	}
}

// ExpiryFromSpec returns now plus the parsed lifetime. Session rows persist
// the result so the store can reject and sweep stale tokens.
func ExpiryFromSpec(spec string, now time.Time) time.Time {
	return now.Add(ParseExpirySpec(spec))
}
