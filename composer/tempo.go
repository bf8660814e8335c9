package composer

// Tempo bounds
const (
	MinTempo = 20
	MaxTempo = 300

	derivedTempoBase = 60
	derivedTempoSpan = 61 // derived tempos land in [60, 120]
)

// DeriveTempo returns the tempo for code. A non-zero override is clamped to
// [MinTempo, MaxTempo]; otherwise the tempo comes from digits 2-3 of the code.
func DeriveTempo(code int, override int) int {
	if override != 0 {
		return clamp(override, MinTempo, MaxTempo)
	}
	d := Digits(code)
	return derivedTempoBase + digitsValue(d[1:3])%derivedTempoSpan
}
