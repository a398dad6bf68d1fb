// Package timestamp parses loosely formatted timestamped text produced by
// generative models (and by humans in video descriptions) into ordered,
// time-bounded groups and items.
package timestamp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadToken indicates a string is not a recognizable timestamp token.
var ErrBadToken = errors.New("malformed timestamp token")

// ParseToken converts a timestamp token to whole seconds.
// Accepted shapes: "H:MM:SS", "HH:MM:SS", "MM:SS", "M:SS", each with
// optional fractional seconds (discarded) and optional surrounding
// brackets or parentheses. Tokens with fewer than two or more than three
// colon-delimited components, or any non-numeric component, are rejected.
func ParseToken(tok string) (int, error) {
	clean := strings.TrimSpace(strings.Map(dropBrackets, tok))
	parts := strings.Split(clean, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%q: %w", tok, ErrBadToken)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if dot := strings.IndexByte(p, '.'); dot >= 0 {
			p = p[:dot]
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q: %w", tok, ErrBadToken)
		}
		nums[i] = n
	}

	if len(nums) == 3 {
		return nums[0]*3600 + nums[1]*60 + nums[2], nil
	}
	return nums[0]*60 + nums[1], nil
}

// FormatSeconds renders whole seconds as a normalized token: "H:MM:SS"
// when an hour component is present, "M:SS" otherwise. Negative input is
// clamped to zero. FormatSeconds(ParseToken(s)) is the normalized form
// of any valid s.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func dropBrackets(r rune) rune {
	switch r {
	case '[', ']', '(', ')':
		return -1
	}
	return r
}
