package numeric

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// parseRealLiteral parses a non-complex-suffixed numeric lexeme (hex,
// decimal integer, or decimal with fraction/exponent) as a float64,
// reporting false for a complex-suffixed lexeme.
func parseRealLiteral(lexeme string) (float64, bool) {
	if strings.HasSuffix(lexeme, "i") || strings.HasSuffix(lexeme, "I") {
		return 0, false
	}
	if len(lexeme) > 2 && lexeme[0] == '0' && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		v, err := strconv.ParseInt(lexeme, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	}
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseComplexLiteral parses a lexeme that may carry a trailing i/I complex
// suffix, returning (magnitude, isImaginary, ok).
func parseComplexLiteral(lexeme string) (float64, bool, bool) {
	if strings.HasSuffix(lexeme, "i") || strings.HasSuffix(lexeme, "I") {
		mag, ok := parseRealLiteralAllowingSuffixStripped(lexeme[:len(lexeme)-1])
		return mag, true, ok
	}
	mag, ok := parseRealLiteral(lexeme)
	return mag, false, ok
}

func parseRealLiteralAllowingSuffixStripped(lexeme string) (float64, bool) {
	if lexeme == "" {
		return 1, true // bare "i"
	}
	if len(lexeme) > 2 && lexeme[0] == '0' && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		v, err := strconv.ParseInt(lexeme, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	}
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// roundHalfAwayFromZero implements the "int()" opcode semantics shared by
// every real floating backend: round half away from zero, equivalent to
// ceil(x-0.5) for negative x and floor(x+0.5) for positive x.
func roundHalfAwayFromZero[F constraints.Float](x F) F {
	if x >= 0 {
		return F(int64(x + 0.5))
	}
	return F(int64(x - 0.5))
}

func epsilonEqual[F constraints.Float](a, b, eps F) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
