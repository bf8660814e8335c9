// Package composer maps a numeric song code and an option set to a
// deterministic composition plan.
package composer

import (
	"math/rand"
	"strconv"
	"strings"
)

const (
	// CodeDigits is the width of a song code
	CodeDigits = 7
	// MaxInstruments bounds the number of code-driven voices
	MaxInstruments = 14
)

// ParsedCode is the decomposition of a song code
type ParsedCode struct {
	InstrumentCount int    // 1..MaxInstruments
	WaveType        int    // 0..3
	LengthSeconds   int    // >= 1
	Digits          string // always CodeDigits wide
}

// Digits returns abs(code) as a zero padded decimal string of exactly
// CodeDigits characters. Longer values keep their rightmost digits.
func Digits(code int) string {
	var u uint64
	if code < 0 {
		u = uint64(-(code + 1)) + 1
	} else {
		u = uint64(code)
	}
	s := strconv.FormatUint(u, 10)
	if len(s) > CodeDigits {
		return s[len(s)-CodeDigits:]
	}
	return strings.Repeat("0", CodeDigits-len(s)) + s
}

// digitsValue parses a run of decimal digits
func digitsValue(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// ParseCode decomposes a code into instrument count, wave type and length.
// Every integer is accepted; out-of-range digit groups are clamped.
func ParseCode(code int) ParsedCode {
	d := Digits(code)
	return ParsedCode{
		InstrumentCount: clamp(digitsValue(d[0:2]), 1, MaxInstruments),
		WaveType:        digitsValue(d[2:4]) % 4,
		LengthSeconds:   max(digitsValue(d[4:7]), 1),
		Digits:          d,
	}
}

// Value returns the integer the digits represent
func (p ParsedCode) Value() int {
	return digitsValue(p.Digits)
}

// SeedRNG returns a generator seeded with the normalized code value.
// Every stochastic choice in a plan draws from it.
func SeedRNG(code int) *rand.Rand {
	return rand.New(rand.NewSource(int64(digitsValue(Digits(code)))))
}

// Complexity is the digit sum scaled into [0, 1]
func Complexity(code int) float64 {
	sum := 0
	for _, c := range Digits(code) {
		sum += int(c - '0')
	}
	return clampFloat(float64(sum)/63.0, 0, 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
