package main

import "fmt"

// EncodeBase26 converts n to a string of uppercase letters using bijective base 26.
// Digits are emitted least significant first and never reversed: 0 is "A", 25 is "Z",
// 26 is "AA" and 27 is "BA". Negative values yield an empty string.
func EncodeBase26(n int64) string {
	if n < 0 {
		return ""
	}

	chars := make([]byte, 0, 8)
	for {
		q, r := n/26, n%26
		chars = append(chars, byte('A'+r))
		if q == 0 {
			break
		}
		// 1-indexed positional system
		n = q - 1
	}
	return string(chars)
}

// DecodeBase26 is the inverse of EncodeBase26.
func DecodeBase26(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidBase26)
	}

	var value, weight int64 = 0, 1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidBase26, c, i)
		}
		value += int64(c-'A'+1) * weight
		weight *= 26
	}
	return value - 1, nil
}
