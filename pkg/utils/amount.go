// Package utils holds exact UI <-> raw amount conversion. Everything is
// digit-string and big.Int based; floats never touch money here.
package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// ToRaw converts a UI decimal string to the token's smallest unit:
// ToRaw("1.5", 9) == 1_500_000_000. Fractional digits beyond the mint's
// precision are rounded half-up on the first dropped digit.
func ToRaw(ui string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(ui)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", ui)
	}
	s = strings.TrimPrefix(s, "+")

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, fmt.Errorf("malformed amount %q", ui)
		}
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("malformed amount %q", ui)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("malformed amount %q", ui)
	}

	roundUp := false
	if len(fracPart) > int(decimals) {
		roundUp = fracPart[decimals] >= '5'
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", int(decimals)-len(fracPart))

	raw, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", ui)
	}
	if roundUp {
		raw.Add(raw, big.NewInt(1))
	}
	return raw, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ToUI renders a raw amount as a decimal string, trimming trailing zero
// fractional digits but always keeping one: ToUI(5_000_000, 6) == "5.0".
func ToUI(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	neg := raw.Sign() < 0
	digits := new(big.Int).Abs(raw).String()

	if decimals == 0 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	intPart := digits[:len(digits)-int(decimals)]
	fracPart := strings.TrimRight(digits[len(digits)-int(decimals):], "0")
	if fracPart == "" {
		fracPart = "0"
	}

	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
