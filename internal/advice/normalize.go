package advice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrNotNumeric is returned when a value cannot be coerced to a number.
var ErrNotNumeric = errors.New("not a numeric value")

// Normalize converts currency or percentage formatted text ("₹6,000", "12%", "Rs. 500", "-3.5 %")
// to a number. Only a prefix and suffix without digits may surround the number.
func Normalize(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	runes := []rune(clean)

	start := -1
	for i, r := range runes {
		if unicode.IsDigit(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	// ".5" but not the dot of "Rs.5"
	if start > 0 && runes[start-1] == '.' && (start == 1 || !unicode.IsLetter(runes[start-2])) {
		start--
	}

	end := start
	for end < len(runes) && (unicode.IsDigit(runes[end]) || runes[end] == '.') {
		end++
	}
	for _, r := range runes[end:] {
		if unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
		}
	}

	v, err := strconv.ParseFloat(string(runes[start:end]), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	prefix := string(runes[:start])
	if strings.ContainsAny(prefix, "-−") {
		v = -v
	}
	return v, nil
}
