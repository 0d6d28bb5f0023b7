package leaderboard

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims, NFC-normalizes, and truncates name to MaxNameLength
// runes. The result is trimmed again so it never ends in whitespace.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if r := []rune(name); len(r) > MaxNameLength {
		name = strings.TrimRightFunc(string(r[:MaxNameLength]), unicode.IsSpace)
	}
	if name == "" {
		return "", ErrNameRequired
	}
	return name, nil
}

// NormalizeScore floors score and checks it is a non-negative int64.
func NormalizeScore(score float64) (int64, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, ErrInvalidScore
	}
	score = math.Floor(score)
	if score < 0 || score >= math.MaxInt64 {
		return 0, ErrInvalidScore
	}
	return int64(score), nil
}
