package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDuration safely parses duration string like "15s". Bare integers are
// read as seconds; anything unparsable yields the fallback.
func ParseDuration(d string, fallback time.Duration) time.Duration {
	d = strings.TrimSpace(d)
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err == nil {
		return duration
	}
	if secs, err := strconv.Atoi(d); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// FormatValue renders a cell value the way it is shown in flat exports.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 {
			return val.Format("02/01/2006")
		}
		return val.Format("02/01/2006 15:04:05")
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// SplitIndexes parses a list like "0,2, 5" into integers.
func SplitIndexes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
