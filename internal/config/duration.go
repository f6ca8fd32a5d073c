package config

import (
    "math"
    "strconv"
    "strings"
    "time"
)

// ParseDuration converts token lifetimes such as "30s", "15m", "1h" or "7d"
// into a time.Duration.  The value must be an integer followed by a single
// unit letter.  Anything else (no unit, an unknown unit, a non-numeric
// value, a value too large for time.Duration) yields zero rather than an
// error; configuration validation decides whether zero is acceptable.
func ParseDuration(s string) time.Duration {
    s = strings.TrimSpace(s)
    if len(s) < 2 {
        return 0
    }
    n, err := strconv.Atoi(s[:len(s)-1])
    if err != nil {
        return 0
    }
    var unit time.Duration
    switch s[len(s)-1] {
    case 's':
        unit = time.Second
    case 'm':
        unit = time.Minute
    case 'h':
        unit = time.Hour
    case 'd':
        unit = 24 * time.Hour
    default:
        return 0
    }
    if int64(n) > math.MaxInt64/int64(unit) || int64(n) < math.MinInt64/int64(unit) {
        return 0 // would overflow
    }
    return time.Duration(n) * unit
}
