package service

import (
	"regexp"
	"strings"
)

// The free tier promises prose with no numbers or measurements. The prompt
// asks the model to comply, but this pipeline is the authoritative
// enforcement: each step is a pure transform applied in order.

var (
	listNumberingRe = regexp.MustCompile(`(?m)^\s*(?:\d+\s*[.):\-]|[-*•])\s*`)
	digitsRe        = regexp.MustCompile(`\d+(?:[.,/]\d+)*`)
	unitWordsRe     = regexp.MustCompile(`(?i)\b(?:cups?|tablespoons?|tbsps?|teaspoons?|tsps?|grams?|kilograms?|kg|mg|g|milliliters?|millilitres?|ml|liters?|litres?|l|ounces?|oz|pounds?|lbs?|quarts?|qt|pints?|pt|gallons?|gal|pinch(?:es)?|dash(?:es)?|inch(?:es)?|cm|mm|minutes?|mins?|hours?|hrs?|seconds?|secs?|degrees?|fahrenheit|celsius)\b|°\s*[CcFf]?`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

type textTransform func(string) string

var freeProsePipeline = []textTransform{
	stripListNumbering,
	stripDigits,
	stripUnitWords,
	collapseWhitespace,
}

// SanitizeFreeText runs the free-tier prose through the transform pipeline.
func SanitizeFreeText(s string) string {
	for _, step := range freeProsePipeline {
		s = step(s)
	}
	return s
}

// stripListNumbering removes leading list markers line by line ("2)", "3.",
// "-", "*").
func stripListNumbering(s string) string {
	return listNumberingRe.ReplaceAllString(s, "")
}

// stripDigits removes digit sequences including decimals and fractions
// ("350", "1.5", "1/2").
func stripDigits(s string) string {
	return digitsRe.ReplaceAllString(s, "")
}

// stripUnitWords removes whole-word units of measure and temperature units.
func stripUnitWords(s string) string {
	return unitWordsRe.ReplaceAllString(s, "")
}

// collapseWhitespace squeezes runs of whitespace left behind by the earlier
// steps into single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
