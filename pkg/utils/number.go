package utils

import (
	"strconv"
	"strings"
)

// ParseFloat converts numeric text from a filing into a float64. Thousands
// separators and surrounding whitespace are stripped first; anything that
// still fails to parse yields 0.
func ParseFloat(text string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
