package params

import (
	"strconv"
	"strings"
)

// ParseFloat returns the decimal number at the start of s, ignoring leading
// whitespace and any trailing garbage. It returns 0 when s does not start
// with a number.
func ParseFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\r\n")
	n := floatPrefix(s)
	if n == 0 {
		return 0
	}
	// out of range literals come back as ±Inf, which is kept
	v, _ := strconv.ParseFloat(s[:n], 64)
	return v
}

// ParseInt returns the integer at the start of s, like atoi.
func ParseInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	n := intPrefix(s)
	if n == 0 {
		return 0
	}
	v, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0
	}
	return v
}

// ParseInts reads up to n whitespace separated integers from s. Parsing stops
// at the first field that is not an integer; missing values are zero.
func ParseInts(s string, n int) []int {
	out := make([]int, n)
	for i, f := range strings.Fields(s) {
		if i >= n {
			break
		}
		if intPrefix(f) != len(f) {
			// a partial number still counts, but ends the scan
			out[i] = ParseInt(f)
			break
		}
		out[i] = ParseInt(f)
	}
	return out
}

// floatPrefix returns the length of the longest prefix of s that forms a
// decimal floating point literal.
func floatPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func intPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
