package media

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRational parses a "num/den" string like ffprobe's time_base and
// avg_frame_rate fields. A bare number parses with denominator 1.
func ParseRational(value string) (num, den float64, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, fmt.Errorf("empty rational")
	}
	parts := strings.SplitN(value, "/", 2)
	num, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("rational %q: %w", value, err)
	}
	if len(parts) == 1 {
		return num, 1, nil
	}
	den, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("rational %q: %w", value, err)
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("rational %q: zero denominator", value)
	}
	return num, den, nil
}
